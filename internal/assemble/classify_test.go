package assemble

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/appmanifest/ambuild/internal/declaration"
	"github.com/appmanifest/ambuild/internal/testutil"
)

func TestClassifyAbsorption(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("shop", "application/vnd.nc.standalone-runnable").
		WithComponent("backend", "application/vnd.nc.helm.chart",
			testutil.DependsOn("sub", "application/vnd.nc.helm.chart")).
		WithComponent("sub", "application/vnd.nc.helm.chart").
		WithComponent("backend-image", "application/vnd.docker.image").
		Build()

	cls, err := Classify(decl)
	require.NoError(t, err)

	require.NotNil(t, cls.EntryPoint)
	require.Equal(t, "shop", cls.EntryPoint.Name)

	subID := declaration.Identity{Name: "sub", Kind: declaration.KindHelmChart}
	require.True(t, cls.Absorbed[subID])
	require.Len(t, cls.Absorbed, 1)

	names := make([]string, 0, len(cls.TopLevel))
	for _, c := range cls.TopLevel {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"shop", "backend", "backend-image"}, names)
}

func TestClassifyNoEntryPoint(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("backend", "application/vnd.nc.helm.chart").
		Build()

	cls, err := Classify(decl)
	require.NoError(t, err)
	require.Nil(t, cls.EntryPoint)
	require.Len(t, cls.TopLevel, 1)
}

func TestClassifyMultipleEntryPoints(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("shop", "application/vnd.nc.standalone-runnable").
		WithComponent("admin", "application/vnd.nc.standalone-runnable").
		Build()

	_, err := Classify(decl)
	require.ErrorIs(t, err, ErrMultipleEntryPoints)
}

func TestClassifyNestedAbsorptionFails(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("top", "application/vnd.nc.helm.chart",
			testutil.DependsOn("middle", "application/vnd.nc.helm.chart")).
		WithComponent("middle", "application/vnd.nc.helm.chart",
			testutil.DependsOn("bottom", "application/vnd.nc.helm.chart")).
		WithComponent("bottom", "application/vnd.nc.helm.chart").
		Build()

	_, err := Classify(decl)
	require.ErrorIs(t, err, ErrNestedAbsorption)
}

func TestClassifySelfDependencyIgnored(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("backend", "application/vnd.nc.helm.chart",
			testutil.DependsOn("backend", "application/vnd.nc.helm.chart")).
		Build()

	cls, err := Classify(decl)
	require.NoError(t, err)
	require.Empty(t, cls.Absorbed)
	require.Len(t, cls.TopLevel, 1)
}

func TestClassifyQubershipPrefixAbsorbs(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("backend", "application/vnd.qubership.helm.chart",
			testutil.DependsOn("sub", "application/vnd.nc.helm.chart")).
		WithComponent("sub", "application/vnd.qubership.helm.chart").
		Build()

	cls, err := Classify(decl)
	require.NoError(t, err)
	require.True(t, cls.Absorbed[declaration.Identity{Name: "sub", Kind: declaration.KindHelmChart}])
}

func TestClassifyImageDependencyDoesNotAbsorb(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("backend", "application/vnd.nc.helm.chart",
			testutil.DependsOn("backend-image", "application/vnd.docker.image")).
		WithComponent("backend-image", "application/vnd.docker.image").
		Build()

	cls, err := Classify(decl)
	require.NoError(t, err)
	require.Empty(t, cls.Absorbed)
	require.Len(t, cls.TopLevel, 2)
}

func TestAllocateRefsOrder(t *testing.T) {
	decl := testutil.NewDecl(t, "shop", "1.0.0").
		WithComponent("backend", "application/vnd.nc.helm.chart").
		WithComponent("backend-image", "application/vnd.docker.image").
		Build()

	refs := AllocateRefs(decl, "shop", testutil.SeqRefs())

	ref, ok := refs.Ref(declaration.Identity{Name: "backend", Kind: declaration.KindHelmChart})
	require.True(t, ok)
	require.Equal(t, "backend:uuid-1", ref)

	ref, ok = refs.Ref(declaration.Identity{Name: "backend-image", Kind: declaration.KindDockerImage})
	require.True(t, ok)
	require.Equal(t, "backend-image:uuid-2", ref)

	require.Equal(t, "shop:uuid-3", refs.Root())

	_, ok = refs.Ref(declaration.Identity{Name: "nope", Kind: declaration.KindCDN})
	require.False(t, ok)
}
