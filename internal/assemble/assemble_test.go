package assemble

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
	"github.com/appmanifest/ambuild/internal/descriptor"
	"github.com/appmanifest/ambuild/internal/testutil"
)

func fixedNow() time.Time {
	return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
}

// fullDecl builds the canonical scenario: an entry point, a chart absorbing
// a sub-chart, and two images mapped into chart values.
func fullDecl(t *testing.T) *declaration.Declaration {
	return testutil.NewDecl(t, "shop", "2.0.0").
		WithComponent("shop", "application/vnd.nc.standalone-runnable").
		WithComponent("backend", "application/vnd.nc.helm.chart",
			testutil.DependsOn("backend-image", "application/vnd.docker.image",
				testutil.ValuesPrefix("backend.image")),
			testutil.DependsOn("sub", "application/vnd.nc.helm.chart")).
		WithComponent("sub", "application/vnd.nc.helm.chart",
			testutil.DependsOn("sub-image", "application/vnd.docker.image",
				testutil.ValuesPrefix("sub.image"))).
		WithComponent("backend-image", "application/vnd.docker.image").
		WithComponent("sub-image", "application/vnd.docker.image").
		Build()
}

func fullIndex(t *testing.T) *descriptor.Index {
	return testutil.NewIndex(t).
		WithDescribed("backend", "application/vnd.nc.helm.chart",
			testutil.Version("1.2.3"),
			testutil.Hash("SHA-256", "chartdigest"),
			testutil.Nested(bom.Component{
				BOMRef:   "values.schema.json:old-ref",
				Type:     "data",
				MimeType: "application/vnd.nc.helm.values.schema",
				Name:     "values.schema.json",
			})).
		WithDescribed("backend-image", "application/vnd.docker.image",
			testutil.ComponentType("container"),
			testutil.Version("1.2.3"),
			testutil.PURL("pkg:docker/shop/backend@1.2.3")).
		WithDescribed("sub-image", "application/vnd.docker.image",
			testutil.ComponentType("container"),
			testutil.Version("0.5.0")).
		Build()
}

func TestAssemble(t *testing.T) {
	result, err := Assemble(fullDecl(t), fullIndex(t), Options{
		Refs: testutil.SeqRefs(),
		Now:  fixedNow,
		Tool: bom.Tool{Type: "application", Name: "ambuild", Version: "1.0.0"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	doc := result.Document

	// References are drawn in declared order, then the root, then the
	// re-parented nested data component, then the serial number.
	require.Equal(t, "urn:uuid:uuid-8", doc.SerialNumber)
	require.Equal(t, "CycloneDX", doc.BOMFormat)
	require.Equal(t, "1.6", doc.SpecVersion)
	require.Equal(t, "2026-05-01T10:00:00Z", doc.Metadata.Timestamp)
	require.Equal(t, "shop:uuid-6", doc.Metadata.Component.BOMRef)
	require.Equal(t, "shop", doc.Metadata.Component.Name)
	require.Equal(t, "2.0.0", doc.Metadata.Component.Version)
	require.Equal(t, AppMimeType, doc.Metadata.Component.MimeType)

	// Absorbed sub is not at the top level.
	require.Len(t, doc.Components, 4)
	require.Equal(t, "shop", doc.Components[0].Name)
	require.Equal(t, "backend", doc.Components[1].Name)
	require.Equal(t, "backend-image", doc.Components[2].Name)
	require.Equal(t, "sub-image", doc.Components[3].Name)

	entry := doc.Components[0]
	require.Equal(t, "shop:uuid-1", entry.BOMRef)
	require.Equal(t, "2.0.0", entry.Version)
	require.NotNil(t, entry.Properties)
	require.Empty(t, entry.Properties)
	require.NotNil(t, entry.Components)
	require.Empty(t, entry.Components)

	chart := doc.Components[1]
	require.Equal(t, "backend:uuid-2", chart.BOMRef)
	require.Equal(t, "1.2.3", chart.Version)
	require.Equal(t, []bom.Hash{{Alg: "SHA-256", Content: "chartdigest"}}, chart.Hashes)

	require.Len(t, chart.Properties, 2)
	require.Equal(t, "isLibrary", chart.Properties[0].Name)
	require.Equal(t, false, chart.Properties[0].Value)
	require.Equal(t, "qubership:helm.values.artifactMappings", chart.Properties[1].Name)

	// Described nested component keeps its body but gets a fresh reference;
	// the absorbed sub-chart follows it.
	require.Len(t, chart.Components, 2)
	require.Equal(t, "values.schema.json:uuid-7", chart.Components[0].BOMRef)
	require.Equal(t, "data", chart.Components[0].Type)

	sub := chart.Components[1]
	require.Equal(t, "sub:uuid-3", sub.BOMRef)
	require.Equal(t, "sub", sub.Name)
	require.Equal(t, "application/vnd.nc.helm.chart", sub.MimeType)
	require.Empty(t, sub.Version)
	require.Empty(t, sub.Hashes)
	require.NotNil(t, sub.Components)
	require.Empty(t, sub.Components)
	require.Len(t, sub.Properties, 2)
	require.Equal(t, "isLibrary", sub.Properties[0].Name)

	leaf := doc.Components[2]
	require.Equal(t, "backend-image:uuid-4", leaf.BOMRef)
	require.Equal(t, "container", leaf.Type)
	require.Equal(t, "pkg:docker/shop/backend@1.2.3", leaf.PURL)

	// Root edge first with top-level targets in declared order, then
	// non-absorbed entries, then absorbed entries.
	require.Len(t, doc.Dependencies, 3)
	require.Equal(t, "shop:uuid-6", doc.Dependencies[0].Ref)
	require.Equal(t, []string{"shop:uuid-1", "backend:uuid-2", "backend-image:uuid-4", "sub-image:uuid-5"},
		doc.Dependencies[0].DependsOn)
	require.Equal(t, "backend:uuid-2", doc.Dependencies[1].Ref)
	require.Equal(t, []string{"backend-image:uuid-4", "sub:uuid-3"}, doc.Dependencies[1].DependsOn)
	require.Equal(t, "sub:uuid-3", doc.Dependencies[2].Ref)
	require.Equal(t, []string{"sub-image:uuid-5"}, doc.Dependencies[2].DependsOn)
}

func TestAssembleMappingsSerializedInDeclaredOrder(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("backend", "application/vnd.nc.helm.chart",
			testutil.DependsOn("zeta", "application/vnd.docker.image", testutil.ValuesPrefix("zeta.image")),
			testutil.DependsOn("alpha", "application/vnd.docker.image", testutil.ValuesPrefix("alpha.image"))).
		WithComponent("zeta", "application/vnd.docker.image").
		WithComponent("alpha", "application/vnd.docker.image").
		Build()
	idx := testutil.NewIndex(t).
		WithDescribed("backend", "application/vnd.nc.helm.chart").
		WithDescribed("zeta", "application/vnd.docker.image", testutil.ComponentType("container")).
		WithDescribed("alpha", "application/vnd.docker.image", testutil.ComponentType("container")).
		Build()

	result, err := Assemble(decl, idx, Options{Refs: testutil.SeqRefs(), Now: fixedNow})
	require.NoError(t, err)

	data, err := json.Marshal(result.Document.Components[0].Properties[1].Value)
	require.NoError(t, err)

	// zeta is declared before alpha; a sorted map would flip them.
	require.JSONEq(t, `{"zeta:uuid-2":{"valuesPathPrefix":"zeta.image"},"alpha:uuid-3":{"valuesPathPrefix":"alpha.image"}}`,
		string(data))
	require.Equal(t, `{"zeta:uuid-2":{"valuesPathPrefix":"zeta.image"},"alpha:uuid-3":{"valuesPathPrefix":"alpha.image"}}`,
		string(data))
}

func TestAssembleMappingsSkipRules(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("backend", "application/vnd.nc.helm.chart",
			// No prefix: no mapping entry.
			testutil.DependsOn("db", "application/vnd.docker.image"),
			// Chart dependency: never mapped even with a prefix.
			testutil.DependsOn("sub", "application/vnd.nc.helm.chart", testutil.ValuesPrefix("sub")),
			// Undeclared target: dropped.
			testutil.DependsOn("ghost", "application/vnd.docker.image", testutil.ValuesPrefix("ghost.image"))).
		WithComponent("sub", "application/vnd.nc.helm.chart").
		WithComponent("db", "application/vnd.docker.image").
		Build()
	idx := testutil.NewIndex(t).
		WithDescribed("backend", "application/vnd.nc.helm.chart").
		WithDescribed("db", "application/vnd.docker.image", testutil.ComponentType("container")).
		Build()

	result, err := Assemble(decl, idx, Options{Refs: testutil.SeqRefs(), Now: fixedNow})
	require.NoError(t, err)

	chart := result.Document.Components[0]
	require.Len(t, chart.Properties, 1)
	require.Equal(t, "isLibrary", chart.Properties[0].Name)
}

func TestAssembleMissingComponentSkippedWithWarning(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("backend", "application/vnd.nc.helm.chart",
			testutil.DependsOn("backend-image", "application/vnd.docker.image",
				testutil.ValuesPrefix("backend.image"))).
		WithComponent("backend-image", "application/vnd.docker.image").
		Build()
	idx := testutil.NewIndex(t).
		WithDescribed("backend", "application/vnd.nc.helm.chart").
		Build()

	result, err := Assemble(decl, idx, Options{Refs: testutil.SeqRefs(), Now: fixedNow})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "backend-image")
	require.Contains(t, result.Warnings[0], "application/vnd.docker.image")

	// The skipped component is absent from the component list but its
	// pre-allocated reference still appears in the graph and the mappings.
	require.Len(t, result.Document.Components, 1)
	require.Equal(t, "backend", result.Document.Components[0].Name)

	root := result.Document.Dependencies[0]
	require.Equal(t, []string{"backend:uuid-1", "backend-image:uuid-2"}, root.DependsOn)

	data, err := json.Marshal(result.Document.Components[0].Properties[1].Value)
	require.NoError(t, err)
	require.Contains(t, string(data), "backend-image:uuid-2")
}

func TestAssembleEmptyDeclaration(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").Build()

	result, err := Assemble(decl, descriptor.NewIndex(), Options{Refs: testutil.SeqRefs(), Now: fixedNow})
	require.NoError(t, err)

	doc := result.Document
	require.NotNil(t, doc.Components)
	require.Empty(t, doc.Components)
	require.Len(t, doc.Dependencies, 1)
	require.Equal(t, "shop:uuid-1", doc.Dependencies[0].Ref)
	require.NotNil(t, doc.Dependencies[0].DependsOn)
	require.Empty(t, doc.Dependencies[0].DependsOn)
}

func TestAssembleOverrides(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("shop", "application/vnd.nc.standalone-runnable").
		Build()

	result, err := Assemble(decl, descriptor.NewIndex(), Options{
		NameOverride:    "storefront",
		VersionOverride: "9.0.0",
		Refs:            testutil.SeqRefs(),
		Now:             fixedNow,
	})
	require.NoError(t, err)

	doc := result.Document
	require.Equal(t, "storefront", doc.Metadata.Component.Name)
	require.Equal(t, "9.0.0", doc.Metadata.Component.Version)
	require.Equal(t, "storefront:uuid-2", doc.Metadata.Component.BOMRef)
	// The entry point version follows the override too.
	require.Equal(t, "9.0.0", doc.Components[0].Version)
}

func TestAssembleChartVersionDefaultsToApplication(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "3.3.3").
		WithComponent("backend", "application/vnd.nc.helm.chart").
		Build()
	idx := testutil.NewIndex(t).
		WithDescribed("backend", "application/vnd.nc.helm.chart").
		Build()

	result, err := Assemble(decl, idx, Options{Refs: testutil.SeqRefs(), Now: fixedNow})
	require.NoError(t, err)
	require.Equal(t, "3.3.3", result.Document.Components[0].Version)
}

func TestAssembleRefsDifferAcrossRuns(t *testing.T) {
	decl := fullDecl(t)
	idx := fullIndex(t)

	first, err := Assemble(decl, idx, Options{Now: fixedNow})
	require.NoError(t, err)
	second, err := Assemble(decl, idx, Options{Now: fixedNow})
	require.NoError(t, err)

	require.NotEqual(t, first.Document.SerialNumber, second.Document.SerialNumber)
	require.NotEqual(t, first.Document.Metadata.Component.BOMRef, second.Document.Metadata.Component.BOMRef)
	require.NotEqual(t, first.Document.Components[0].BOMRef, second.Document.Components[0].BOMRef)
}

func TestAssemblePropagatesClassificationErrors(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("a", "application/vnd.nc.standalone-runnable").
		WithComponent("b", "application/vnd.nc.standalone-runnable").
		Build()

	_, err := Assemble(decl, descriptor.NewIndex(), Options{})
	require.ErrorIs(t, err, ErrMultipleEntryPoints)
}

func TestArtifactMappingsMarshalEmpty(t *testing.T) {
	data, err := json.Marshal(artifactMappings{})
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}
