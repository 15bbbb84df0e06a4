package descriptor

import "github.com/appmanifest/ambuild/internal/declaration"

// Index maps structural identities to described components. Adding a
// component whose identity is already present silently replaces the earlier
// entry; override workflows rely on that, so load order must be
// deterministic and caller-controlled.
type Index struct {
	entries map[declaration.Identity]*Component
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[declaration.Identity]*Component)}
}

// Add inserts a component, replacing any earlier component with the same
// identity. Last write wins.
func (ix *Index) Add(c *Component) {
	ix.entries[c.Identity()] = c
}

// Lookup returns the described component for (name, kind), if any.
func (ix *Index) Lookup(name string, kind declaration.Kind) (*Component, bool) {
	c, ok := ix.entries[declaration.Identity{Name: name, Kind: kind}]
	return c, ok
}

// Len reports the number of distinct identities in the index.
func (ix *Index) Len() int {
	return len(ix.entries)
}
