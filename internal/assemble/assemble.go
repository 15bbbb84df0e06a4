package assemble

import (
	"time"

	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
	"github.com/appmanifest/ambuild/internal/descriptor"
)

// AppMimeType is the mime type of the application root in the metadata
// block.
const AppMimeType = "application/vnd.nc.application"

// Options tune one assembly run. Zero values select production defaults.
type Options struct {
	// NameOverride replaces the declared application name.
	NameOverride string

	// VersionOverride replaces the declared application version.
	VersionOverride string

	// Tool identifies the producing tool in the metadata block.
	Tool bom.Tool

	// Refs supplies the random portion of local references and the serial
	// number. Defaults to bom.DefaultSource.
	Refs bom.RefSource

	// Now supplies the metadata timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Result is an assembled document plus the non-fatal conditions collected
// along the way. Warnings do not affect the run's success.
type Result struct {
	Document bom.Document
	Warnings []string
}

// Assemble builds the final application manifest from a declaration and an
// index of described components. All entities live for this one call; no
// reference or identifier survives into a later run.
func Assemble(decl *declaration.Declaration, idx *descriptor.Index, opts Options) (*Result, error) {
	src := opts.Refs
	if src == nil {
		src = bom.DefaultSource
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tool := opts.Tool
	if tool.Name == "" {
		tool = bom.Tool{Type: "application", Name: "ambuild", Version: "dev"}
	}

	appName := decl.ApplicationName
	if opts.NameOverride != "" {
		appName = opts.NameOverride
	}
	appVersion := decl.ApplicationVersion
	if opts.VersionOverride != "" {
		appVersion = opts.VersionOverride
	}

	cls, err := Classify(decl)
	if err != nil {
		return nil, err
	}
	refs := AllocateRefs(decl, appName, src)

	b := &builder{
		decl:       decl,
		idx:        idx,
		cls:        cls,
		refs:       refs,
		src:        src,
		appVersion: appVersion,
	}

	components := []bom.Component{}
	var warnings []string
	for _, c := range cls.TopLevel {
		body, warning := b.build(c)
		if warning != "" {
			warnings = append(warnings, warning)
		}
		if body != nil {
			components = append(components, *body)
		}
	}

	dependencies := buildDependencies(decl, cls, refs)

	doc := bom.NewDocument(src)
	doc.Metadata = bom.Metadata{
		Timestamp: bom.Timestamp(now()),
		Component: bom.MetadataComponent{
			BOMRef:   refs.Root(),
			Type:     "application",
			MimeType: AppMimeType,
			Name:     appName,
			Version:  appVersion,
		},
		Tools: bom.Tools{Components: []bom.Tool{tool}},
	}
	doc.Components = components
	doc.Dependencies = dependencies

	return &Result{Document: doc, Warnings: warnings}, nil
}
