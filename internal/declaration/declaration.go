// Package declaration models the human-written component declaration that
// drives manifest assembly: application identity plus an ordered component
// list with a declared dependency graph.
package declaration

import "errors"

// Loader and validation errors.
var (
	ErrMissingName        = errors.New("component name is required")
	ErrMissingMimeType    = errors.New("component mimeType is required")
	ErrMissingAppName     = errors.New("applicationName is required")
	ErrMissingAppVersion  = errors.New("applicationVersion is required")
	ErrDuplicateComponent = errors.New("duplicate component identity")
)

// Dependency is one dependsOn entry of a declared component. ValuesPathPrefix
// is meaningful only for non-chart dependencies of a chart and is nil when
// the declaration does not set it.
type Dependency struct {
	Name             string
	MimeType         string
	Kind             Kind
	ValuesPathPrefix *string
}

// Identity returns the target's structural identity.
func (d Dependency) Identity() Identity {
	return Identity{Name: d.Name, Kind: d.Kind}
}

// Component is one declared component. MimeType keeps the as-written
// spelling for components whose output bodies are built from the declaration
// alone; Kind is the folded canonical kind used for all matching.
type Component struct {
	Name      string
	MimeType  string
	Kind      Kind
	Locator   string
	DependsOn []Dependency
}

// Identity returns the component's structural identity.
func (c Component) Identity() Identity {
	return Identity{Name: c.Name, Kind: c.Kind}
}

// Declaration is the parsed declaration document.
type Declaration struct {
	ApplicationName    string
	ApplicationVersion string
	Components         []Component
}

// Find returns the declared component with the given identity.
func (d *Declaration) Find(id Identity) (Component, bool) {
	for _, c := range d.Components {
		if c.Identity() == id {
			return c, true
		}
	}
	return Component{}, false
}
