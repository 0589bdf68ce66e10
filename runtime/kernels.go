package runtime

import (
	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/program"
)

// Kernel performs one operator's tensor math over flat float32 data.
// Shapes are already encoded in the surrounding specs; kernels only see
// element counts.
type Kernel func(ins [][]float32, out []float32) error

var kernels = map[program.Operator]Kernel{
	program.OpMul:      mulKernel,
	program.OpAdd:      addKernel,
	program.OpViewCopy: copyKernel,
}

// kernelFor returns the kernel registered for op.
func kernelFor(op program.Operator) (Kernel, bool) {
	k, ok := kernels[op]
	return k, ok
}

func mulKernel(ins [][]float32, out []float32) error {
	if err := wantInputs("mul", ins, 2); err != nil {
		return err
	}
	if len(ins[0]) != len(ins[1]) || len(ins[0]) != len(out) {
		return errors.Wrapf(program.ErrMalformedInput,
			"mul size mismatch: %d, %d -> %d", len(ins[0]), len(ins[1]), len(out))
	}
	for i := range out {
		out[i] = ins[0][i] * ins[1][i]
	}
	return nil
}

func addKernel(ins [][]float32, out []float32) error {
	if err := wantInputs("add", ins, 2); err != nil {
		return err
	}
	if len(ins[0]) != len(ins[1]) || len(ins[0]) != len(out) {
		return errors.Wrapf(program.ErrMalformedInput,
			"add size mismatch: %d, %d -> %d", len(ins[0]), len(ins[1]), len(out))
	}
	for i := range out {
		out[i] = ins[0][i] + ins[1][i]
	}
	return nil
}

func copyKernel(ins [][]float32, out []float32) error {
	if err := wantInputs("view_copy", ins, 1); err != nil {
		return err
	}
	if len(ins[0]) != len(out) {
		return errors.Wrapf(program.ErrMalformedInput,
			"view_copy size mismatch: %d -> %d", len(ins[0]), len(out))
	}
	copy(out, ins[0])
	return nil
}

func wantInputs(name string, ins [][]float32, n int) error {
	if len(ins) != n {
		return errors.Wrapf(program.ErrMalformedInput,
			"%s expects %d inputs, got %d", name, n, len(ins))
	}
	return nil
}
