package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmodi-meta/executorch/program"
)

func TestEvaluateConstantsAndViews(t *testing.T) {
	b := program.NewBuilder("main")
	p := b.Parameter("p", program.Float32, []int{2, 2}, []float32{1, 2, 3, 4})
	x := b.Input("x", program.Float32, 2, 2)
	b.Output(b.View(b.Mul(p, x), 4))
	g, err := b.Build()
	require.NoError(t, err)

	got, err := Evaluate(g, map[string][]float32{"x": {10, 20, 30, 40}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float32{10, 40, 90, 160}, got[0])
}

func TestEvaluateMissingInput(t *testing.T) {
	b := program.NewBuilder("main")
	x := b.Input("x", program.Float32, 2)
	b.Output(b.Mul(x, x))
	g, err := b.Build()
	require.NoError(t, err)

	_, err = Evaluate(g, nil)
	assert.ErrorIs(t, err, program.ErrMalformedInput)
	assert.Contains(t, err.Error(), `missing input "x"`)
}

func TestEvaluateInPlaceMutation(t *testing.T) {
	b := program.NewBuilder("main")
	x := b.Input("x", program.Float32, 3)
	y := b.Add(x, x)
	m := b.CallInPlace(program.OpMul, y, y)
	b.Output(b.Add(m, y))
	g, err := b.Build()
	require.NoError(t, err)

	got, err := Evaluate(g, map[string][]float32{"x": {1, 2, 3}})
	require.NoError(t, err)
	// y = 2x, then y *= y in place, then m + y reads the mutated y.
	assert.Equal(t, []float32{8, 32, 72}, got[0])
}

func TestEvaluateUnknownOperator(t *testing.T) {
	b := program.NewBuilder("main")
	x := b.Input("x", program.Float32, 2)
	b.Output(b.Call(program.Operator{Namespace: "aten", Name: "tanh"}, []int{2}, x))
	g, err := b.Build()
	require.NoError(t, err)

	_, err = Evaluate(g, map[string][]float32{"x": {0, 1}})
	assert.ErrorIs(t, err, program.ErrMalformedInput)
	assert.Contains(t, err.Error(), "no kernel registered")
}

func TestKernelSizeMismatch(t *testing.T) {
	err := mulKernel([][]float32{{1, 2}, {3}}, make([]float32, 2))
	assert.ErrorIs(t, err, program.ErrMalformedInput)

	err = copyKernel([][]float32{{1, 2, 3}}, make([]float32, 2))
	assert.ErrorIs(t, err, program.ErrMalformedInput)
}
