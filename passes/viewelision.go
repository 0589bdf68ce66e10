// Package passes contains graph-rewriting passes that run between graph
// construction and memory planning.
package passes

import (
	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/program"
)

// ElideViews rewrites every pure view node into a zero-cost alias of its
// base value instead of a materialized copy.
//
// For each view node, the base is resolved transitively to a non-view
// ancestor, the view's value adopts the ancestor's spec object wholesale
// (const flag, storage, and any future pooled placement included), and
// the ancestor's lifetime is extended to cover the view's last use.
// Chained views therefore collapse to the same ultimate base.
//
// A view whose target shape matches the base's shape is fully absorbed;
// one that actually changes shape is marked Reinterpret so emission can
// produce a lightweight reinterpret instruction instead of a copy.
//
// An in-place write to the base, or through any alias of it, while the
// alias is live is a compile error. Viewing a base whose computed
// lifetime has already closed indicates a bug in an earlier stage and is
// fatal.
func ElideViews(g *program.Graph) error {
	for _, n := range g.Nodes {
		if n.Kind != program.KindView {
			continue
		}
		base := resolveBase(n.Inputs[0])
		bspec := base.Spec
		if bspec.Lifetime.Last < n.Index {
			return errors.Wrapf(program.ErrInvariant,
				"node %q views %q whose lifetime [%d, %d] ended before index %d",
				n.Output.Name, base.Name, bspec.Lifetime.First, bspec.Lifetime.Last, n.Index)
		}

		viewLast := n.Output.Spec.Lifetime.Last
		if bspec.Lifetime.Last < viewLast {
			bspec.Lifetime.Last = viewLast
		}

		// The alias borrows the base's identity wholesale: one spec
		// object serves the whole alias group.
		n.Output.Spec = bspec
		n.Base = base
		n.Elided = true
		n.Reinterpret = !shapeEqual(n.TargetShape, bspec.Shape)

		if err := checkNoMutation(g, n, bspec, viewLast); err != nil {
			return err
		}
	}
	return nil
}

// resolveBase follows view chains to the first non-view ancestor.
func resolveBase(v *program.Value) *program.Value {
	for v.Def != nil && v.Def.Kind == program.KindView {
		v = v.Def.Inputs[0]
	}
	return v
}

// checkNoMutation rejects in-place writes to the alias group between the
// view's creation and its last use.
func checkNoMutation(g *program.Graph, view *program.Node, spec *program.TensorSpec, last int) error {
	for _, m := range g.Nodes[view.Index+1:] {
		if m.Index > last {
			break
		}
		if m.Kind == program.KindCall && m.InPlace && m.Inputs[0].Spec == spec {
			return errors.Wrapf(program.ErrMalformedInput,
				"node %q mutates %q in place while alias %q is live",
				m.Output.Name, view.Base.Name, view.Output.Name)
		}
	}
	return nil
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
