// Package component turns a CI metadata file for a single built artifact
// into a mini-manifest: a CycloneDX document describing exactly one
// component, ready to be indexed by the assembly step.
package component

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/appmanifest/ambuild/internal/bom"
)

// Metadata validation errors.
var (
	ErrMissingName     = errors.New("metadata name is required")
	ErrMissingType     = errors.New("metadata type is required")
	ErrMissingMimeType = errors.New("metadata mime-type is required")
)

// NestedComponent is a data component prepared by CI (a values schema, a set
// of resource profiles). It is carried into the mini-manifest nearly
// unchanged.
type NestedComponent struct {
	Type     string          `json:"type"`
	MimeType string          `json:"mime-type"`
	Name     string          `json:"name"`
	Data     []bom.DataEntry `json:"data"`
}

// Metadata is the per-artifact description produced by a CI build job.
type Metadata struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	MimeType   string            `json:"mime-type"`
	Group      string            `json:"group,omitempty"`
	Version    string            `json:"version,omitempty"`
	AppVersion string            `json:"appVersion,omitempty"`
	Hashes     []bom.Hash        `json:"hashes,omitempty"`
	Reference  string            `json:"reference,omitempty"`
	Components []NestedComponent `json:"components,omitempty"`
}

// Load reads and validates a CI metadata JSON file. Malformed metadata is
// fatal; no mini-manifest is produced from a partial description.
func Load(path string) (*Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(content, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}

	if meta.Name == "" {
		return nil, ErrMissingName
	}
	if meta.Type == "" {
		return nil, ErrMissingType
	}
	if meta.MimeType == "" {
		return nil, ErrMissingMimeType
	}
	return &meta, nil
}
