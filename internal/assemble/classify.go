package assemble

import (
	"errors"
	"fmt"

	"github.com/appmanifest/ambuild/internal/declaration"
)

// Classification errors.
var (
	ErrMultipleEntryPoints = errors.New("declaration has more than one standalone-runnable component")
	ErrNestedAbsorption    = errors.New("absorbed chart declares its own chart dependency")
)

// Classification is the result of the single role-classification pass over a
// declaration.
type Classification struct {
	// EntryPoint is the application's standalone-runnable component, nil
	// when the declaration has none. It is always top-level.
	EntryPoint *declaration.Component

	// Absorbed holds the identities of charts that are nested inside a
	// parent chart instead of being emitted at the top level.
	Absorbed map[declaration.Identity]bool

	// TopLevel lists the non-absorbed components in declared order, entry
	// point included.
	TopLevel []declaration.Component
}

// Classify walks the declaration once and assigns a role to every component.
//
// A chart B is absorbed iff some other chart A lists B in its dependsOn.
// Absorption is strictly one level deep: an absorbed chart that itself
// declares a chart dependency makes the declaration invalid and
// classification fails fast rather than guessing a nesting order.
func Classify(decl *declaration.Declaration) (*Classification, error) {
	cls := &Classification{
		Absorbed: make(map[declaration.Identity]bool),
	}

	for _, c := range decl.Components {
		if c.Kind != declaration.KindHelmChart {
			continue
		}
		for _, dep := range c.DependsOn {
			if dep.Kind != declaration.KindHelmChart {
				continue
			}
			if dep.Identity() == c.Identity() {
				continue
			}
			cls.Absorbed[dep.Identity()] = true
		}
	}

	for id := range cls.Absorbed {
		child, ok := decl.Find(id)
		if !ok {
			continue
		}
		for _, dep := range child.DependsOn {
			if dep.Kind == declaration.KindHelmChart {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrNestedAbsorption, child.Name, dep.Name)
			}
		}
	}

	for i, c := range decl.Components {
		if c.Kind == declaration.KindStandaloneRunnable {
			if cls.EntryPoint != nil {
				return nil, fmt.Errorf("%w: %s and %s", ErrMultipleEntryPoints, cls.EntryPoint.Name, c.Name)
			}
			cls.EntryPoint = &decl.Components[i]
		}
		if cls.Absorbed[c.Identity()] {
			continue
		}
		cls.TopLevel = append(cls.TopLevel, c)
	}

	return cls, nil
}
