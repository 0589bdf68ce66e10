package runtime

import (
	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/program"
)

// Evaluate runs a graph directly, node by node, without elision or
// memory planning. It is the reference semantics the compiled execution
// chain must reproduce exactly. Values are keyed by graph value, so the
// evaluator works on both pristine and already-lowered graphs.
func Evaluate(g *program.Graph, inputs map[string][]float32) ([][]float32, error) {
	vals := make(map[*program.Value][]float32, len(g.Nodes))

	for _, n := range g.Nodes {
		switch n.Kind {
		case program.KindPlaceholder:
			v := n.Output
			if v.Spec.Const {
				st, ok := v.Spec.Storage()
				if !ok {
					return nil, errors.Wrapf(program.ErrInvariant, "constant %q has no storage", v.Name)
				}
				data, err := program.DecodeFloat32s(v.Spec.DType, g.ConstSegment[st.Offset:st.Offset+st.Size])
				if err != nil {
					return nil, err
				}
				vals[v] = data
				continue
			}
			data, ok := inputs[v.Name]
			if !ok {
				return nil, errors.Wrapf(program.ErrMalformedInput, "missing input %q", v.Name)
			}
			vals[v] = data

		case program.KindView:
			// Same elements under a different shape; flat data is shared.
			vals[n.Output] = vals[n.Inputs[0]]

		case program.KindCall:
			kernel, ok := kernelFor(n.Op)
			if !ok {
				return nil, errors.Wrapf(program.ErrMalformedInput, "no kernel registered for %s", n.Op)
			}
			ins := make([][]float32, len(n.Inputs))
			for i, in := range n.Inputs {
				ins[i] = vals[in]
			}
			out := make([]float32, n.Output.Spec.NumElements())
			if err := kernel(ins, out); err != nil {
				return nil, errors.Wrapf(err, "node %q", n.Output.Name)
			}
			vals[n.Output] = out
			if n.InPlace {
				vals[n.Inputs[0]] = out
			}

		case program.KindOutput:
			// Terminal node; outputs are collected below.
		}
	}

	outputs := make([][]float32, len(g.Outputs))
	for i, out := range g.Outputs {
		data, ok := vals[out]
		if !ok {
			return nil, errors.Wrapf(program.ErrInvariant, "output %q was never produced", out.Name)
		}
		outputs[i] = data
	}
	return outputs, nil
}
