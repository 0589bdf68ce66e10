// Package export drives the lowering pipeline end to end: view elision,
// memory planning, and execution-plan emission, followed by artifact
// bundle writing.
package export

import (
	"github.com/cmodi-meta/executorch/emit"
	"github.com/cmodi-meta/executorch/memplan"
	"github.com/cmodi-meta/executorch/passes"
	"github.com/cmodi-meta/executorch/program"
)

// Options configures one compilation.
type Options struct {
	// RemoveViewCopy enables the view-elision pass. When disabled,
	// view nodes are emitted as materializing copy operators.
	RemoveViewCopy bool

	// Memory configures the memory planner.
	Memory memplan.Config
}

// DefaultOptions returns the default compilation options.
func DefaultOptions() Options {
	return Options{
		RemoveViewCopy: true,
		Memory:         memplan.DefaultConfig(),
	}
}

// Compiled is the result of lowering one graph: the execution plan, the
// pool sizes, and the packed constant segment. Each call to Lower
// produces a fresh Compiled; nothing is shared across compilations.
type Compiled struct {
	Graph     *program.Graph
	Plan      *emit.Plan
	Memory    *memplan.Plan
	Constants []byte
}

// Lower runs the pipeline on g. The graph is mutated in place: specs
// acquire placements, view nodes become aliases. Stages run strictly in
// sequence because each depends on the complete global lifetime
// information of its predecessor.
func Lower(g *program.Graph, opts Options) (*Compiled, error) {
	if opts.RemoveViewCopy {
		if err := passes.ElideViews(g); err != nil {
			return nil, err
		}
	}
	mem, err := memplan.PlanMemory(g, opts.Memory)
	if err != nil {
		return nil, err
	}
	// Placements are frozen from here on: emission reads specs only.
	plan, err := emit.NewEmitter().Emit(g)
	if err != nil {
		return nil, err
	}
	return &Compiled{
		Graph:     g,
		Plan:      plan,
		Memory:    mem,
		Constants: g.ConstSegment,
	}, nil
}
