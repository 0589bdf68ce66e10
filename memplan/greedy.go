package memplan

// greedyStrategy reuses storage across disjoint lifetimes. Values are
// processed in increasing first-use order; regions whose occupant's
// lifetime has ended return to a free list, and each new value takes the
// first-fit free region. Among equally suitable regions the one with the
// lowest offset wins, which keeps the assignment deterministic.
type greedyStrategy struct{}

func (greedyStrategy) name() string { return "greedy" }

type region struct {
	offset int64
	size   int64
}

type occupancy struct {
	region
	last int // lifetime upper bound of the current occupant
}

func (greedyStrategy) plan(ivals []*interval, assign func(iv *interval, offset int64)) int64 {
	var (
		poolEnd int64
		active  []occupancy
		free    []region // sorted by offset
	)

	for _, iv := range ivals {
		// Release regions whose occupant died before this value is born.
		kept := active[:0]
		for _, occ := range active {
			if occ.last < iv.spec.Lifetime.First {
				free = insertRegion(free, occ.region)
			} else {
				kept = append(kept, occ)
			}
		}
		active = kept

		// First fit, lowest offset first.
		placed := false
		for i, r := range free {
			if r.size < iv.size {
				continue
			}
			assign(iv, r.offset)
			active = append(active, occupancy{
				region: region{offset: r.offset, size: iv.size},
				last:   iv.spec.Lifetime.Last,
			})
			if r.size == iv.size {
				free = append(free[:i], free[i+1:]...)
			} else {
				free[i] = region{offset: r.offset + iv.size, size: r.size - iv.size}
			}
			placed = true
			break
		}
		if placed {
			continue
		}

		// No free region fits: extend the pool.
		assign(iv, poolEnd)
		active = append(active, occupancy{
			region: region{offset: poolEnd, size: iv.size},
			last:   iv.spec.Lifetime.Last,
		})
		poolEnd += iv.size
	}
	return poolEnd
}

// insertRegion keeps the free list sorted by offset and merges regions
// that become adjacent.
func insertRegion(free []region, r region) []region {
	i := 0
	for i < len(free) && free[i].offset < r.offset {
		i++
	}
	free = append(free, region{})
	copy(free[i+1:], free[i:])
	free[i] = r

	// Merge with the successor, then the predecessor.
	if i+1 < len(free) && free[i].offset+free[i].size == free[i+1].offset {
		free[i].size += free[i+1].size
		free = append(free[:i+1], free[i+2:]...)
	}
	if i > 0 && free[i-1].offset+free[i-1].size == free[i].offset {
		free[i-1].size += free[i].size
		free = append(free[:i], free[i+1:]...)
	}
	return free
}
