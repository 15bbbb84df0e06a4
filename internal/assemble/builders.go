package assemble

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
	"github.com/appmanifest/ambuild/internal/descriptor"
)

// Property names attached to chart components.
const (
	propIsLibrary        = "isLibrary"
	propArtifactMappings = "qubership:helm.values.artifactMappings"
)

// builder produces final component bodies for one assembly run.
type builder struct {
	decl       *declaration.Declaration
	idx        *descriptor.Index
	cls        *Classification
	refs       *RefTable
	src        bom.RefSource
	appVersion string
}

// build returns the final body for a declared component, or nil plus a
// warning when the component has no description and must be skipped.
func (b *builder) build(c declaration.Component) (*bom.Component, string) {
	ref, _ := b.refs.Ref(c.Identity())

	// The entry point is built from declaration data alone.
	if c.Kind == declaration.KindStandaloneRunnable {
		return b.buildEntryPoint(c, ref), ""
	}

	desc, ok := b.idx.Lookup(c.Name, c.Kind)
	if !ok {
		warning := fmt.Sprintf("WARNING: component '%s' (%s) not found in mini-manifests, skipped",
			c.Name, c.MimeType)
		return nil, warning
	}

	if c.Kind == declaration.KindHelmChart {
		return b.buildChart(c, desc, ref), ""
	}

	return b.buildLeaf(desc, ref), ""
}

// buildEntryPoint produces the standalone-runnable body. The schema requires
// properties and components to be present as empty arrays, not absent.
func (b *builder) buildEntryPoint(c declaration.Component, ref string) *bom.Component {
	return &bom.Component{
		BOMRef:     ref,
		Type:       "application",
		MimeType:   c.MimeType,
		Name:       c.Name,
		Version:    b.appVersion,
		Properties: []bom.Property{},
		Components: []bom.Component{},
	}
}

// buildLeaf copies the described component verbatim, substituting only the
// pre-allocated reference.
func (b *builder) buildLeaf(desc *descriptor.Component, ref string) *bom.Component {
	body := desc.Body
	body.BOMRef = ref
	return &body
}

// buildChart copies the described chart and layers on the derived
// properties, the re-parented nested data components, and the synthesized
// sub-components for absorbed children.
func (b *builder) buildChart(c declaration.Component, desc *descriptor.Component, ref string) *bom.Component {
	props := []bom.Property{{Name: propIsLibrary, Value: false}}
	if m := b.mappings(c); len(m) > 0 {
		props = append(props, bom.Property{Name: propArtifactMappings, Value: m})
	}

	// Nested data components keep their bodies but get regenerated
	// references; they are not cross-referenced anywhere, so fresh values
	// are fine.
	nested := make([]bom.Component, 0, len(desc.Body.Components))
	for _, n := range desc.Body.Components {
		n.BOMRef = bom.NewRef(b.src, n.Name)
		nested = append(nested, n)
	}

	// Absorbed children come after the described nested components, in the
	// parent's declared dependsOn order.
	for _, dep := range c.DependsOn {
		if !b.cls.Absorbed[dep.Identity()] {
			continue
		}
		child, ok := b.decl.Find(dep.Identity())
		if !ok {
			continue
		}
		nested = append(nested, b.buildSubChart(child))
	}

	body := desc.Body
	body.BOMRef = ref
	body.Version = desc.Body.Version
	if body.Version == "" {
		body.Version = b.appVersion
	}
	body.Properties = props
	body.Components = nested
	return &body
}

// buildSubChart synthesizes the nested body for an absorbed chart. It
// carries only the name, the pre-allocated reference, and the derived
// properties; version, hashes, and package identifiers stay with the
// parent's description.
func (b *builder) buildSubChart(child declaration.Component) bom.Component {
	ref, _ := b.refs.Ref(child.Identity())

	props := []bom.Property{{Name: propIsLibrary, Value: false}}
	if m := b.mappings(child); len(m) > 0 {
		props = append(props, bom.Property{Name: propArtifactMappings, Value: m})
	}

	return bom.Component{
		BOMRef:     ref,
		Type:       "application",
		MimeType:   child.MimeType,
		Name:       child.Name,
		Properties: props,
		Components: []bom.Component{},
	}
}

// mappings collects the artifact mappings for a chart: one entry per
// declared non-chart dependency with a values path prefix, in declared
// order.
func (b *builder) mappings(c declaration.Component) artifactMappings {
	var m artifactMappings
	for _, dep := range c.DependsOn {
		if dep.Kind == declaration.KindHelmChart || dep.ValuesPathPrefix == nil {
			continue
		}
		ref, ok := b.refs.Ref(dep.Identity())
		if !ok {
			continue
		}
		m = append(m, mappingEntry{ref: ref, prefix: *dep.ValuesPathPrefix})
	}
	return m
}

// mappingEntry maps a dependency's local reference to its values path
// prefix.
type mappingEntry struct {
	ref    string
	prefix string
}

// artifactMappings is an insertion-ordered JSON object. A plain map would
// serialize with sorted keys, losing the declared dependency order that is
// observable in the output.
type artifactMappings []mappingEntry

// MarshalJSON renders {"<ref>": {"valuesPathPrefix": "<prefix>"}, ...} in
// entry order.
func (m artifactMappings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.ref)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(map[string]string{"valuesPathPrefix": e.prefix})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
