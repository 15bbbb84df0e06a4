// Package testutil provides fluent builders for declarations and described
// components used across the test suites.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
	"github.com/appmanifest/ambuild/internal/descriptor"
)

// DeclBuilder accumulates declared components and produces a Declaration.
type DeclBuilder struct {
	t    *testing.T
	decl declaration.Declaration
}

// NewDecl creates a builder for a declaration with the given application identity.
func NewDecl(t *testing.T, name, version string) *DeclBuilder {
	t.Helper()
	return &DeclBuilder{
		t: t,
		decl: declaration.Declaration{
			ApplicationName:    name,
			ApplicationVersion: version,
		},
	}
}

// WithComponent adds a declared component with optional configuration.
func (b *DeclBuilder) WithComponent(name, mimeType string, opts ...ComponentOption) *DeclBuilder {
	b.t.Helper()
	kind, err := declaration.ParseMimeType(mimeType)
	require.NoError(b.t, err)
	c := declaration.Component{Name: name, MimeType: mimeType, Kind: kind}
	for _, opt := range opts {
		opt(b.t, &c)
	}
	b.decl.Components = append(b.decl.Components, c)
	return b
}

// Build returns the accumulated declaration.
func (b *DeclBuilder) Build() *declaration.Declaration {
	d := b.decl
	return &d
}

// ComponentOption configures a declared component during builder setup.
type ComponentOption func(*testing.T, *declaration.Component)

// Locator sets the component's artifact locator.
func Locator(ref string) ComponentOption {
	return func(_ *testing.T, c *declaration.Component) { c.Locator = ref }
}

// DependsOn adds a dependency on (name, mimeType).
func DependsOn(name, mimeType string, opts ...DepOption) ComponentOption {
	return func(t *testing.T, c *declaration.Component) {
		t.Helper()
		kind, err := declaration.ParseMimeType(mimeType)
		require.NoError(t, err)
		d := declaration.Dependency{Name: name, MimeType: mimeType, Kind: kind}
		for _, opt := range opts {
			opt(&d)
		}
		c.DependsOn = append(c.DependsOn, d)
	}
}

// DepOption configures a dependency entry.
type DepOption func(*declaration.Dependency)

// ValuesPrefix sets the dependency's valuesPathPrefix.
func ValuesPrefix(prefix string) DepOption {
	return func(d *declaration.Dependency) { d.ValuesPathPrefix = &prefix }
}

// IndexBuilder accumulates described components and produces a descriptor
// index. Components are added in call order, so last-write-wins semantics
// can be exercised directly.
type IndexBuilder struct {
	t   *testing.T
	idx *descriptor.Index
}

// NewIndex creates a builder for a descriptor index.
func NewIndex(t *testing.T) *IndexBuilder {
	t.Helper()
	return &IndexBuilder{t: t, idx: descriptor.NewIndex()}
}

// WithDescribed adds a described component with optional body configuration.
func (b *IndexBuilder) WithDescribed(name, mimeType string, opts ...BodyOption) *IndexBuilder {
	b.t.Helper()
	kind, err := declaration.ParseMimeType(mimeType)
	require.NoError(b.t, err)
	body := bom.Component{
		BOMRef:   name + ":descriptor-ref",
		Type:     "application",
		MimeType: mimeType,
		Name:     name,
	}
	for _, opt := range opts {
		opt(&body)
	}
	b.idx.Add(&descriptor.Component{Body: body, Kind: kind})
	return b
}

// Build returns the accumulated index.
func (b *IndexBuilder) Build() *descriptor.Index {
	return b.idx
}

// BodyOption configures a described component body.
type BodyOption func(*bom.Component)

// Version sets the body version.
func Version(v string) BodyOption {
	return func(c *bom.Component) { c.Version = v }
}

// ComponentType sets the body type, e.g. "container".
func ComponentType(t string) BodyOption {
	return func(c *bom.Component) { c.Type = t }
}

// PURL sets the body package URL.
func PURL(purl string) BodyOption {
	return func(c *bom.Component) { c.PURL = purl }
}

// Property appends a named property to the body.
func Property(name string, value any) BodyOption {
	return func(c *bom.Component) {
		c.Properties = append(c.Properties, bom.Property{Name: name, Value: value})
	}
}

// Hash appends a content hash to the body.
func Hash(alg, content string) BodyOption {
	return func(c *bom.Component) {
		c.Hashes = append(c.Hashes, bom.Hash{Alg: alg, Content: content})
	}
}

// Nested appends a nested component to the body.
func Nested(nested bom.Component) BodyOption {
	return func(c *bom.Component) {
		c.Components = append(c.Components, nested)
	}
}
