package memplan

// naiveStrategy places every value end-to-end with no reuse. It serves
// as a correctness baseline and as the exhaustive-size worst case.
type naiveStrategy struct{}

func (naiveStrategy) name() string { return "naive" }

func (naiveStrategy) plan(ivals []*interval, assign func(iv *interval, offset int64)) int64 {
	var poolEnd int64
	for _, iv := range ivals {
		assign(iv, poolEnd)
		poolEnd += iv.size
	}
	return poolEnd
}
