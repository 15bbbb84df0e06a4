package assemble

import (
	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
)

// buildDependencies derives the document's adjacency list from the declared
// graph:
//
//  1. The application root depends on every top-level component in declared
//     order; absorbed charts are excluded from this edge.
//  2. Every non-absorbed component with declared dependencies gets its own
//     entry, targets in declared order. Targets keep their references even
//     when the target component was skipped for lack of a description.
//  3. Absorbed charts get their own entries too, in declared order, so the
//     graph stays fully connected.
//  4. A component with no declared dependencies produces no entry at all.
func buildDependencies(decl *declaration.Declaration, cls *Classification, refs *RefTable) []bom.Dependency {
	topRefs := make([]string, 0, len(cls.TopLevel))
	for _, c := range cls.TopLevel {
		if ref, ok := refs.Ref(c.Identity()); ok {
			topRefs = append(topRefs, ref)
		}
	}
	deps := []bom.Dependency{{Ref: refs.Root(), DependsOn: topRefs}}

	for _, c := range decl.Components {
		if cls.Absorbed[c.Identity()] {
			continue
		}
		if entry, ok := dependencyEntry(c, refs); ok {
			deps = append(deps, entry)
		}
	}

	for _, c := range decl.Components {
		if !cls.Absorbed[c.Identity()] {
			continue
		}
		if entry, ok := dependencyEntry(c, refs); ok {
			deps = append(deps, entry)
		}
	}

	return deps
}

// dependencyEntry builds one adjacency entry. Dependency targets not present
// in the declaration have no reference and are dropped; an entry with no
// resolvable targets is omitted entirely.
func dependencyEntry(c declaration.Component, refs *RefTable) (bom.Dependency, bool) {
	ref, ok := refs.Ref(c.Identity())
	if !ok {
		return bom.Dependency{}, false
	}

	var targets []string
	for _, dep := range c.DependsOn {
		if target, ok := refs.Ref(dep.Identity()); ok {
			targets = append(targets, target)
		}
	}
	if len(targets) == 0 {
		return bom.Dependency{}, false
	}
	return bom.Dependency{Ref: ref, DependsOn: targets}, true
}
