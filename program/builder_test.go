package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderParameterStorage(t *testing.T) {
	b := NewBuilder("main")
	w1 := make([]float32, 30) // 120 bytes
	w2 := []float32{1, 2, 3, 4}

	p1 := b.Parameter("p1", Float32, []int{5, 6}, w1)
	p2 := b.Parameter("p2", Float32, []int{4}, w2)
	b.Output(b.Mul(p1, p1))
	_ = p2

	g, err := b.Build()
	require.NoError(t, err)

	st1, ok := p1.Spec.Storage()
	require.True(t, ok)
	assert.True(t, p1.Spec.Const)
	assert.Equal(t, int64(0), st1.Offset)
	assert.Equal(t, int64(120), st1.Size)

	st2, ok := p2.Spec.Storage()
	require.True(t, ok)
	// Entries are aligned to the constant alignment boundary.
	assert.Equal(t, int64(128), st2.Offset)
	assert.Equal(t, int64(16), st2.Size)
	assert.Len(t, g.ConstSegment, 144)
}

func TestBuilderLifetimes(t *testing.T) {
	b := NewBuilder("main")
	x := b.Input("x", Float32, 4) // node 0
	y := b.Mul(x, x)              // node 1
	z := b.Add(y, y)              // node 2
	b.Output(z)                   // output node 3

	_, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, Lifetime{First: 0, Last: 1}, x.Spec.Lifetime)
	assert.Equal(t, Lifetime{First: 1, Last: 2}, y.Spec.Lifetime)
	// The output node counts as a use.
	assert.Equal(t, Lifetime{First: 2, Last: 3}, z.Spec.Lifetime)
}

func TestBuilderRejectsDataDependentShape(t *testing.T) {
	b := NewBuilder("main")
	x := b.Input("x", Float32, -1)
	b.Output(x)

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestBuilderRejectsBadView(t *testing.T) {
	b := NewBuilder("main")
	x := b.Input("x", Float32, 5, 6)
	b.Output(b.View(x, 7))

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestBuilderRejectsBadParameter(t *testing.T) {
	b := NewBuilder("main")
	p := b.Parameter("p", Float32, []int{2, 2}, []float32{1, 2, 3})
	b.Output(p)

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestBuilderLatchesFirstError(t *testing.T) {
	b := NewBuilder("main")
	x := b.Input("x", Float32, 5, 6)
	b.View(x, 7)  // first error
	b.View(x, 11) // second error, must not overwrite the first
	err := b.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "as [7]")
}

func TestLifetimeOverlaps(t *testing.T) {
	a := Lifetime{First: 0, Last: 3}
	assert.True(t, a.Overlaps(Lifetime{First: 3, Last: 5}))
	assert.True(t, a.Overlaps(Lifetime{First: 1, Last: 2}))
	assert.False(t, a.Overlaps(Lifetime{First: 4, Last: 5}))
}

func TestOperatorString(t *testing.T) {
	assert.Equal(t, "aten::mul.out", OpMul.String())
	assert.Equal(t, "executorch_prim::et_view",
		Operator{Namespace: "executorch_prim", Name: "et_view"}.String())
}
