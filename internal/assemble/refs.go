package assemble

import (
	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
)

// RefTable holds the pre-allocated local references for one assembly run:
// one per declared component identity plus one for the application root.
// Allocation happens before any component body is built, so dependency edges
// and derived properties always resolve to the same reference as the
// component definition, including for components later skipped for lack of a
// description.
type RefTable struct {
	root string
	refs map[declaration.Identity]string
}

// AllocateRefs draws references from src for every declared component in
// declared order, then for the application root. It depends only on the
// declaration shape, never on the descriptions: absorbed components have no
// description of their own at this point.
func AllocateRefs(decl *declaration.Declaration, appName string, src bom.RefSource) *RefTable {
	refs := make(map[declaration.Identity]string, len(decl.Components))
	for _, c := range decl.Components {
		refs[c.Identity()] = bom.NewRef(src, c.Name)
	}
	return &RefTable{
		root: bom.NewRef(src, appName),
		refs: refs,
	}
}

// Root returns the application root reference.
func (t *RefTable) Root() string {
	return t.root
}

// Ref returns the reference allocated for a declared identity.
func (t *RefTable) Ref(id declaration.Identity) (string, bool) {
	ref, ok := t.refs[id]
	return ref, ok
}
