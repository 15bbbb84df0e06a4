// Package bom defines the CycloneDX 1.6 document model emitted by ambuild.
//
// The same types are used for the final application manifest and for the
// per-artifact mini-manifests, and they round-trip through encoding/json:
// mini-manifests are parsed back into Component when the final document is
// assembled.
//
// Optional fields carry `omitempty`; slice fields carry `omitzero` so that a
// nil slice disappears from the output while an explicitly empty slice is
// serialized as []. The entry-point component and synthesized sub-components
// rely on that distinction.
package bom

import "time"

// SchemaURL is the $schema reference written into every document.
const SchemaURL = "../schemas/application-manifest.schema.json"

// Document format markers.
const (
	Format      = "CycloneDX"
	SpecVersion = "1.6"
)

// Hash is a content hash of an artifact, e.g. {"alg": "SHA-256", "content": "a1b2..."}.
type Hash struct {
	Alg     string `json:"alg"`
	Content string `json:"content"`
}

// Property is a named component property. Value may be a string, a bool, or
// an object (the artifact mappings property), hence any.
type Property struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Attachment holds base64-encoded file content with its declared media type.
type Attachment struct {
	ContentType string `json:"contentType"`
	Encoding    string `json:"encoding"`
	Content     string `json:"content"`
}

// DataContents wraps an attachment.
type DataContents struct {
	Attachment Attachment `json:"attachment"`
}

// DataEntry is one embedded data file, e.g. values.schema.json or a
// resource-profile YAML.
type DataEntry struct {
	Type     string       `json:"type"`
	Name     string       `json:"name"`
	Contents DataContents `json:"contents"`
}

// Component is a single component of a manifest: an entry point, a container
// image, a packaged chart, or a nested data component.
type Component struct {
	BOMRef     string      `json:"bom-ref"`
	Type       string      `json:"type"`
	MimeType   string      `json:"mime-type"`
	Name       string      `json:"name"`
	Version    string      `json:"version,omitempty"`
	Group      string      `json:"group,omitempty"`
	PURL       string      `json:"purl,omitempty"`
	Properties []Property  `json:"properties,omitzero"`
	Hashes     []Hash      `json:"hashes,omitzero"`
	Components []Component `json:"components,omitzero"`
	Data       []DataEntry `json:"data,omitzero"`
}

// Dependency is one adjacency-list entry: ref depends on every entry of
// DependsOn.
type Dependency struct {
	Ref       string   `json:"ref"`
	DependsOn []string `json:"dependsOn"`
}

// Tool identifies the producing tool in the metadata section.
type Tool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Tools wraps the tool list the way CycloneDX 1.5+ expects it.
type Tools struct {
	Components []Tool `json:"components"`
}

// MetadataComponent describes the application itself.
type MetadataComponent struct {
	BOMRef   string `json:"bom-ref"`
	Type     string `json:"type"`
	MimeType string `json:"mime-type"`
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
}

// Metadata is the document metadata block.
type Metadata struct {
	Timestamp string            `json:"timestamp"`
	Component MetadataComponent `json:"component"`
	Tools     Tools             `json:"tools"`
}

// Document is the root of a manifest, final or mini.
type Document struct {
	SchemaURL    string       `json:"$schema"`
	BOMFormat    string       `json:"bomFormat"`
	SpecVersion  string       `json:"specVersion"`
	SerialNumber string       `json:"serialNumber"`
	Version      int          `json:"version"`
	Metadata     Metadata     `json:"metadata"`
	Components   []Component  `json:"components"`
	Dependencies []Dependency `json:"dependencies"`
}

// TimestampFormat is the second-resolution UTC layout used in metadata.
const TimestampFormat = "2006-01-02T15:04:05Z"

// Timestamp formats t for the metadata block.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// NewDocument creates a document shell with the format markers and a fresh
// serial number drawn from src.
func NewDocument(src RefSource) Document {
	return Document{
		SchemaURL:    SchemaURL,
		BOMFormat:    Format,
		SpecVersion:  SpecVersion,
		SerialNumber: NewSerialNumber(src),
		Version:      1,
	}
}

// NewMini wraps a single described component into a mini-manifest envelope.
// The metadata component identifies the producing tool rather than an
// application.
func NewMini(c Component, tool Tool, src RefSource, now time.Time) Document {
	doc := NewDocument(src)
	doc.Metadata = Metadata{
		Timestamp: Timestamp(now),
		Component: MetadataComponent{
			BOMRef:   NewRef(src, tool.Name),
			Type:     "application",
			MimeType: "application/vnd.nc.application",
			Name:     tool.Name,
			Version:  tool.Version,
		},
		Tools: Tools{Components: []Tool{tool}},
	}
	doc.Components = []Component{c}
	doc.Dependencies = []Dependency{}
	return doc
}
