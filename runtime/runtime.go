// Package runtime executes compiled execution plans against the planned
// memory layout, with no compiler present. It also provides a reference
// evaluator over the original graph, so the two paths can be compared
// for observational equivalence.
package runtime

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/emit"
	"github.com/cmodi-meta/executorch/export"
	"github.com/cmodi-meta/executorch/program"
)

// Executor runs one compiled program. It owns freshly allocated pool
// buffers sized by the memory plan; constants are read from the
// artifact's constant segment in place.
type Executor struct {
	compiled *export.Compiled
	pools    map[int][]byte
	bindings map[*program.TensorSpec][]byte
}

// NewExecutor allocates the pool buffers for a compiled program.
func NewExecutor(c *export.Compiled) *Executor {
	pools := make(map[int][]byte, len(c.Memory.PoolSizes))
	for id, size := range c.Memory.PoolSizes {
		pools[id] = make([]byte, size)
	}
	return &Executor{
		compiled: c,
		pools:    pools,
		bindings: make(map[*program.TensorSpec][]byte),
	}
}

// SetInput binds data to the named graph input. Inputs the planner left
// unplanned receive caller-owned storage; planned inputs are copied into
// their pool slot.
func (e *Executor) SetInput(name string, data []float32) error {
	var spec *program.TensorSpec
	for _, in := range e.compiled.Graph.Inputs {
		if in.Name == name {
			spec = in.Spec
			break
		}
	}
	if spec == nil {
		return errors.Wrapf(program.ErrMalformedInput, "no graph input named %q", name)
	}
	if spec.NumElements() != len(data) {
		return errors.Wrapf(program.ErrMalformedInput,
			"input %q wants %d elements, got %d", name, spec.NumElements(), len(data))
	}
	raw, err := program.EncodeFloat32s(spec.DType, data)
	if err != nil {
		return err
	}
	if _, ok := spec.Pool(); ok {
		dst, err := e.resolve(spec)
		if err != nil {
			return err
		}
		copy(dst, raw)
		return nil
	}
	e.bindings[spec] = raw
	return nil
}

// resolve maps a spec to the byte range holding its data.
func (e *Executor) resolve(spec *program.TensorSpec) ([]byte, error) {
	switch p := spec.Placement.(type) {
	case program.ConstStorage:
		seg := e.compiled.Constants
		if p.Offset+p.Size > int64(len(seg)) {
			return nil, errors.Wrapf(program.ErrInvariant,
				"constant storage [%d, %d) exceeds segment of %d bytes",
				p.Offset, p.Offset+p.Size, len(seg))
		}
		return seg[p.Offset : p.Offset+p.Size], nil
	case program.Pooled:
		pool, ok := e.pools[p.MemID]
		if !ok {
			return nil, errors.Wrapf(program.ErrInvariant, "no pool with mem_id %d", p.MemID)
		}
		size := spec.SizeBytes()
		if p.MemOffset+size > int64(len(pool)) {
			return nil, errors.Wrapf(program.ErrInvariant,
				"placement [%d, %d) exceeds pool %d of %d bytes",
				p.MemOffset, p.MemOffset+size, p.MemID, len(pool))
		}
		return pool[p.MemOffset : p.MemOffset+size], nil
	default:
		if raw, ok := e.bindings[spec]; ok {
			return raw, nil
		}
		return nil, errors.Wrap(program.ErrMalformedInput, "unplanned tensor has no bound storage")
	}
}

// Run executes the instruction chain and returns the graph outputs as
// float32 data, in declaration order.
func (e *Executor) Run(ctx context.Context) ([][]float32, error) {
	plan := e.compiled.Plan
	for i, instr := range plan.Instructions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op := plan.Operators[instr.OpIndex]
		if op == emit.OpView {
			// Reinterpret: the output spec already aliases the input's
			// storage, so there is nothing to move.
			continue
		}
		if err := e.dispatch(op, instr); err != nil {
			return nil, errors.Wrapf(err, "instruction %d (%s)", i, op)
		}
	}

	outputs := make([][]float32, len(e.compiled.Graph.Outputs))
	for i, out := range e.compiled.Graph.Outputs {
		raw, err := e.resolve(out.Spec)
		if err != nil {
			return nil, errors.Wrapf(err, "output %q", out.Name)
		}
		vals, err := program.DecodeFloat32s(out.Spec.DType, raw)
		if err != nil {
			return nil, err
		}
		outputs[i] = vals
	}
	return outputs, nil
}

// dispatch resolves an instruction's tensor arguments and invokes its
// kernel. The last tensor argument is the destination.
func (e *Executor) dispatch(op program.Operator, instr Instruction) error {
	specs := tensorSpecs(instr)
	if len(specs) < 1 {
		return errors.Wrapf(program.ErrInvariant, "%s has no tensor arguments", op)
	}
	kernel, ok := kernelFor(op)
	if !ok {
		return errors.Wrapf(program.ErrMalformedInput, "no kernel registered for %s", op)
	}

	ins := make([][]float32, len(specs)-1)
	for i, spec := range specs[:len(specs)-1] {
		raw, err := e.resolve(spec)
		if err != nil {
			return err
		}
		vals, err := program.DecodeFloat32s(spec.DType, raw)
		if err != nil {
			return err
		}
		ins[i] = vals
	}

	outSpec := specs[len(specs)-1]
	out := make([]float32, outSpec.NumElements())
	if err := kernel(ins, out); err != nil {
		return err
	}
	raw, err := program.EncodeFloat32s(outSpec.DType, out)
	if err != nil {
		return err
	}
	dst, err := e.resolve(outSpec)
	if err != nil {
		return err
	}
	copy(dst, raw)
	return nil
}

// Instruction aliases the emitted instruction type for kernel dispatch.
type Instruction = emit.Instruction

func tensorSpecs(instr Instruction) []*program.TensorSpec {
	var specs []*program.TensorSpec
	for _, arg := range instr.Args {
		if t, ok := arg.(emit.TensorArg); ok {
			specs = append(specs, t.Spec)
		}
	}
	return specs
}
