// Package memplan statically assigns every non-constant tensor a byte
// range within a memory pool, such that values with overlapping
// lifetimes never overlap in memory.
package memplan

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/program"
)

// Pool identifiers. Graph-input-eligible values are segregated from
// purely internal intermediates so the caller can choose to provide
// input storage externally.
const (
	PoolInternal   = 1
	PoolGraphInput = 2
)

// Config configures memory planning.
type Config struct {
	// Alignment is the byte boundary every allocation is rounded to.
	Alignment int64

	// Strategy selects the allocation policy: "greedy" or "naive".
	Strategy string

	// AllocGraphInput plans storage for graph inputs in PoolGraphInput.
	// When false, inputs are left unplanned and must be bound to
	// caller-provided storage at run time.
	AllocGraphInput bool

	// PoolCeilings optionally caps a pool's total size in bytes.
	// A plan that would exceed a ceiling fails instead of growing.
	PoolCeilings map[int]int64
}

// DefaultConfig returns the default planning configuration.
func DefaultConfig() Config {
	return Config{
		Alignment: 16,
		Strategy:  "greedy",
	}
}

// Plan is the result of memory planning: the total size of every pool.
// Individual placements are written into the graph's tensor specs.
type Plan struct {
	PoolSizes map[int]int64
}

// interval is one allocation request: an alias group's spec, its aligned
// byte size, and its lifetime.
type interval struct {
	spec *program.TensorSpec
	name string
	size int64
}

// strategy assigns an offset to every interval, which arrives sorted by
// increasing first use, and returns the resulting pool size. Offsets are
// written via assign.
type strategy interface {
	name() string
	plan(ivals []*interval, assign func(iv *interval, offset int64)) int64
}

// PlanMemory assigns each non-constant, non-alias value a pooled
// placement. Constants keep their storage; alias groups receive one
// placement through their shared spec. The same graph and config always
// produce identical assignments.
func PlanMemory(g *program.Graph, cfg Config) (*Plan, error) {
	if cfg.Alignment <= 0 {
		cfg.Alignment = 16
	}
	strat, err := strategyByName(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	inputSpecs := make(map[*program.TensorSpec]bool, len(g.Inputs))
	for _, in := range g.Inputs {
		inputSpecs[in.Spec] = true
	}

	// Collect one interval per alias group, in program order so the
	// result is a function of traversal order alone.
	seen := make(map[*program.TensorSpec]bool)
	byPool := make(map[int][]*interval)
	for _, n := range g.Nodes {
		if n.Output == nil {
			continue
		}
		spec := n.Output.Spec
		if seen[spec] {
			continue
		}
		seen[spec] = true
		if spec.Const {
			if _, ok := spec.Storage(); !ok {
				return nil, errors.Wrapf(program.ErrInvariant,
					"constant %q has no storage", n.Output.Name)
			}
			continue
		}
		if _, ok := spec.Pool(); ok {
			return nil, errors.Wrapf(program.ErrInvariant,
				"value %q already has a pooled placement", n.Output.Name)
		}
		poolID := PoolInternal
		if inputSpecs[spec] {
			if !cfg.AllocGraphInput {
				continue
			}
			poolID = PoolGraphInput
		}
		byPool[poolID] = append(byPool[poolID], &interval{
			spec: spec,
			name: n.Output.Name,
			size: alignUp(spec.SizeBytes(), cfg.Alignment),
		})
	}

	plan := &Plan{PoolSizes: make(map[int]int64)}
	poolIDs := make([]int, 0, len(byPool))
	for id := range byPool {
		poolIDs = append(poolIDs, id)
	}
	sort.Ints(poolIDs)

	for _, id := range poolIDs {
		ivals := byPool[id]
		// Stable sort by first use; traversal order breaks ties.
		sort.SliceStable(ivals, func(i, j int) bool {
			return ivals[i].spec.Lifetime.First < ivals[j].spec.Lifetime.First
		})
		poolID := id
		size := strat.plan(ivals, func(iv *interval, offset int64) {
			iv.spec.Placement = program.Pooled{MemID: poolID, MemOffset: offset}
		})
		if ceiling, ok := cfg.PoolCeilings[id]; ok && size > ceiling {
			return nil, errors.Wrapf(program.ErrCapacity,
				"pool %d needs %d bytes but is capped at %d", id, size, ceiling)
		}
		plan.PoolSizes[id] = size
	}
	return plan, nil
}

func strategyByName(name string) (strategy, error) {
	switch name {
	case "", "greedy":
		return greedyStrategy{}, nil
	case "naive":
		return naiveStrategy{}, nil
	default:
		return nil, errors.Wrapf(program.ErrMalformedInput, "unknown planning strategy %q", name)
	}
}

func alignUp(size, alignment int64) int64 {
	remainder := size % alignment
	if remainder == 0 {
		return size
	}
	return size + (alignment - remainder)
}
