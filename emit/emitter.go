package emit

import (
	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/program"
)

// Emitter produces an execution plan from a planned graph. It owns the
// operator-dedup mapping for the duration of one compilation and is
// discarded afterwards; it is never shared across compilations.
type Emitter struct {
	opIndex map[program.Operator]int
	ops     []program.Operator
	instrs  []Instruction
}

// NewEmitter creates an emitter for a single compilation.
func NewEmitter() *Emitter {
	return &Emitter{opIndex: make(map[program.Operator]int)}
}

// Emit walks the graph in program order and produces one instruction per
// executable node. Placeholders and the output node emit nothing; an
// elided view emits a reinterpret instruction only when it changes
// shape. Operator-table indices follow strict first-seen order.
func (e *Emitter) Emit(g *program.Graph) (*Plan, error) {
	for _, n := range g.Nodes {
		switch n.Kind {
		case program.KindPlaceholder, program.KindOutput:
			// No instruction.
		case program.KindView:
			if err := e.emitView(n); err != nil {
				return nil, err
			}
		case program.KindCall:
			e.emitCall(n)
		default:
			return nil, errors.Wrapf(program.ErrInvariant,
				"node %d has unknown kind %d", n.Index, n.Kind)
		}
	}
	return &Plan{Operators: e.ops, Instructions: e.instrs}, nil
}

func (e *Emitter) emitView(n *program.Node) error {
	if !n.Elided {
		// The elision pass was disabled: the view materializes a copy.
		args := []Arg{
			TensorArg{Spec: n.Inputs[0].Spec},
			IntsArg{Ints: toInt64s(n.TargetShape)},
			TensorArg{Spec: n.Output.Spec},
		}
		e.append(program.OpViewCopy, args)
		return nil
	}
	if n.Output.Spec != n.Base.Spec {
		return errors.Wrapf(program.ErrInvariant,
			"elided view %q does not share its base's spec", n.Output.Name)
	}
	if !n.Reinterpret {
		// Fully absorbed alias: nothing to execute.
		return nil
	}
	args := []Arg{
		TensorArg{Spec: n.Inputs[0].Spec},
		IntsArg{Ints: toInt64s(n.TargetShape)},
		TensorArg{Spec: n.Output.Spec},
	}
	e.append(OpView, args)
	return nil
}

func (e *Emitter) emitCall(n *program.Node) {
	args := make([]Arg, 0, len(n.Inputs)+1)
	for _, in := range n.Inputs {
		args = append(args, TensorArg{Spec: in.Spec})
	}
	args = append(args, TensorArg{Spec: n.Output.Spec})
	e.append(n.Op, args)
}

func (e *Emitter) append(op program.Operator, args []Arg) {
	e.instrs = append(e.instrs, Instruction{OpIndex: e.operatorIndex(op), Args: args})
}

// operatorIndex returns the table index for op, appending a new entry on
// first occurrence.
func (e *Emitter) operatorIndex(op program.Operator) int {
	if idx, ok := e.opIndex[op]; ok {
		return idx
	}
	idx := len(e.ops)
	e.ops = append(e.ops, op)
	e.opIndex[op] = idx
	return idx
}

func toInt64s(shape []int) []int64 {
	out := make([]int64, len(shape))
	for i, d := range shape {
		out[i] = int64(d)
	}
	return out
}
