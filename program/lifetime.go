package program

import "github.com/pkg/errors"

// ComputeLifetimes assigns every value's lifetime from the linear node
// order: a value is born at its defining node's index and dies at the
// index of its last consumer. The terminating output node counts as a
// consumer, so graph outputs stay live to the end of the program.
//
// Lifetimes are computed, never user-supplied. A shape containing a
// negative (data-dependent) dimension defeats static lifetime analysis
// and is rejected rather than speculatively planned.
func ComputeLifetimes(g *Graph) error {
	for _, n := range g.Nodes {
		if n.Output == nil {
			continue
		}
		for _, d := range n.Output.Spec.Shape {
			if d < 0 {
				return errors.Wrapf(ErrMalformedInput,
					"node %q has data-dependent shape %v", n.Output.Name, n.Output.Spec.Shape)
			}
		}
		n.Output.Spec.Lifetime = Lifetime{First: n.Index, Last: n.Index}
	}
	for _, n := range g.Nodes {
		for _, in := range n.Inputs {
			if n.Index > in.Spec.Lifetime.Last {
				in.Spec.Lifetime.Last = n.Index
			}
		}
	}
	return nil
}
