// Package descriptor loads per-artifact mini-manifests and indexes their
// described components by structural identity for the assembly step.
//
// A mini-manifest is a CycloneDX document whose components list carries
// exactly one described component. The component body is kept verbatim: the
// assembler copies it into the final document and only regenerates local
// references.
package descriptor

import (
	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
)

// Component is one described component parsed from a mini-manifest. Body is
// the untouched CycloneDX component; Kind is the canonical kind folded from
// Body.MimeType.
type Component struct {
	Body bom.Component
	Kind declaration.Kind
}

// Identity returns the structural identity used for matching against the
// declaration.
func (c *Component) Identity() declaration.Identity {
	return declaration.Identity{Name: c.Body.Name, Kind: c.Kind}
}
