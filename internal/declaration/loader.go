package declaration

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// declFile mirrors the YAML layout of the declaration document.
type declFile struct {
	ApplicationName    string          `yaml:"applicationName"`
	ApplicationVersion string          `yaml:"applicationVersion"`
	Components         []componentDecl `yaml:"components"`
}

type componentDecl struct {
	Name      string           `yaml:"name"`
	MimeType  string           `yaml:"mimeType"`
	Reference string           `yaml:"reference"`
	DependsOn []dependencyDecl `yaml:"dependsOn"`
}

type dependencyDecl struct {
	Name             string  `yaml:"name"`
	MimeType         string  `yaml:"mimeType"`
	ValuesPathPrefix *string `yaml:"valuesPathPrefix"`
}

// Load reads and validates a declaration YAML file. Any structural problem
// (unreadable file, unknown field, unknown kind, missing required field,
// duplicate identity) is fatal: assembly must not start from a half-parsed
// declaration.
func Load(path string) (*Declaration, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read declaration: %w", err)
	}
	return Parse(content)
}

// Parse decodes and validates declaration YAML.
func Parse(content []byte) (*Declaration, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var file declFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse declaration: %w", err)
	}

	if file.ApplicationName == "" {
		return nil, ErrMissingAppName
	}
	if file.ApplicationVersion == "" {
		return nil, ErrMissingAppVersion
	}

	decl := &Declaration{
		ApplicationName:    file.ApplicationName,
		ApplicationVersion: file.ApplicationVersion,
	}

	seen := make(map[Identity]bool, len(file.Components))
	for i, cd := range file.Components {
		comp, err := buildComponent(cd)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		if seen[comp.Identity()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateComponent, comp.Identity())
		}
		seen[comp.Identity()] = true
		decl.Components = append(decl.Components, comp)
	}

	return decl, nil
}

func buildComponent(cd componentDecl) (Component, error) {
	if cd.Name == "" {
		return Component{}, ErrMissingName
	}
	if cd.MimeType == "" {
		return Component{}, ErrMissingMimeType
	}
	kind, err := ParseMimeType(cd.MimeType)
	if err != nil {
		return Component{}, err
	}

	comp := Component{
		Name:     cd.Name,
		MimeType: cd.MimeType,
		Kind:     kind,
		Locator:  cd.Reference,
	}
	for j, dd := range cd.DependsOn {
		if dd.Name == "" {
			return Component{}, fmt.Errorf("dependsOn %d: %w", j, ErrMissingName)
		}
		if dd.MimeType == "" {
			return Component{}, fmt.Errorf("dependsOn %d: %w", j, ErrMissingMimeType)
		}
		depKind, err := ParseMimeType(dd.MimeType)
		if err != nil {
			return Component{}, fmt.Errorf("dependsOn %d: %w", j, err)
		}
		comp.DependsOn = append(comp.DependsOn, Dependency{
			Name:             dd.Name,
			MimeType:         dd.MimeType,
			Kind:             depKind,
			ValuesPathPrefix: dd.ValuesPathPrefix,
		})
	}
	return comp, nil
}
