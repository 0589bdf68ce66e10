package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmodi-meta/executorch/program"
)

func TestElideViewOfConstant(t *testing.T) {
	b := program.NewBuilder("main")
	p := b.Parameter("p", program.Float32, []int{5, 6}, make([]float32, 30))
	x := b.Input("x", program.Float32, 5, 6)
	v := b.View(p, 6, 5)
	b.Output(b.Mul(v, x))

	g, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, ElideViews(g))

	// The alias borrows the base's spec wholesale: same object, so every
	// field matches and const storage propagates unchanged.
	assert.Same(t, p.Spec, v.Spec)
	assert.True(t, v.Spec.Const)
	_, hasStorage := v.Spec.Storage()
	assert.True(t, hasStorage)
	_, hasPool := v.Spec.Pool()
	assert.False(t, hasPool)
}

func TestElideExtendsBaseLifetime(t *testing.T) {
	b := program.NewBuilder("main")
	x := b.Input("x", program.Float32, 2, 3) // node 0
	y := b.Mul(x, x)                         // node 1
	v := b.View(y, 6)                        // node 2
	z := b.Mul(v, v)                         // node 3
	b.Output(z)                              // node 4

	g, err := b.Build()
	require.NoError(t, err)
	// Pre-elision, y dies at the view node.
	assert.Equal(t, 2, y.Spec.Lifetime.Last)

	require.NoError(t, ElideViews(g))
	// Post-elision, y must outlive the alias's last use.
	assert.Equal(t, 3, y.Spec.Lifetime.Last)
	assert.Same(t, y.Spec, v.Spec)
}

func TestElideLeavesLongerBaseLifetimeAlone(t *testing.T) {
	b := program.NewBuilder("main")
	x := b.Input("x", program.Float32, 2, 3) // node 0
	y := b.Mul(x, x)                         // node 1
	v := b.View(y, 6)                        // node 2
	z := b.Mul(v, v)                         // node 3
	w := b.Mul(y, y)                         // node 4: y used after the alias dies
	b.Output(z)
	b.Output(w)

	g, err := b.Build()
	require.NoError(t, err)
	before := y.Spec.Lifetime.Last
	require.NoError(t, ElideViews(g))
	assert.Equal(t, before, y.Spec.Lifetime.Last)
}

func TestChainedViewsCollapseToUltimateBase(t *testing.T) {
	b := program.NewBuilder("main")
	x := b.Input("x", program.Float32, 2, 6)
	y := b.Mul(x, x)
	v1 := b.View(y, 3, 4)
	v2 := b.View(v1, 12)
	b.Output(b.Mul(v2, v2))

	g, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, ElideViews(g))

	assert.Same(t, y.Spec, v1.Spec)
	assert.Same(t, y.Spec, v2.Spec)
	assert.Same(t, y, v2.Def.Base)
}

func TestAbsorbedViewNeedsNoReinterpret(t *testing.T) {
	b := program.NewBuilder("main")
	x := b.Input("x", program.Float32, 2, 3)
	y := b.Mul(x, x)
	roundTrip := b.View(b.View(y, 6), 2, 3) // back to the base shape
	b.Output(b.Mul(roundTrip, roundTrip))

	g, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, ElideViews(g))

	assert.True(t, roundTrip.Def.Elided)
	assert.False(t, roundTrip.Def.Reinterpret)
}

func TestInPlaceMutationWhileAliasLive(t *testing.T) {
	b := program.NewBuilder("main")
	x := b.Input("x", program.Float32, 2, 2) // node 0
	v := b.View(x, 4)                        // node 1
	b.CallInPlace(program.OpAdd, x, x)       // node 2: mutates the base
	b.Output(b.Mul(v, v))                    // node 3: alias still live

	g, err := b.Build()
	require.NoError(t, err)

	err = ElideViews(g)
	assert.ErrorIs(t, err, program.ErrMalformedInput)
	assert.Contains(t, err.Error(), "in place")
}

func TestViewAfterLifetimeClosedIsFatal(t *testing.T) {
	b := program.NewBuilder("main")
	x := b.Input("x", program.Float32, 4)
	v := b.View(x, 2, 2)
	b.Output(v)

	g, err := b.Build()
	require.NoError(t, err)

	// Force the contradiction an earlier stage would have to produce.
	x.Spec.Lifetime.Last = 0
	err = ElideViews(g)
	assert.ErrorIs(t, err, program.ErrInvariant)
	assert.Contains(t, err.Error(), x.Name)
}
