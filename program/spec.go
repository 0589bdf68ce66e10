package program

// Lifetime is the inclusive node-index interval during which a value's
// storage must remain valid. Indices cover the full linear program order,
// placeholders and the output node included.
type Lifetime struct {
	First int
	Last  int
}

// Overlaps reports whether two lifetimes share at least one index.
func (l Lifetime) Overlaps(o Lifetime) bool {
	return l.First <= o.Last && o.First <= l.Last
}

// Placement describes where a tensor's bytes live at run time. A spec
// with a nil placement either has not been planned yet or borrows its
// placement from another spec through aliasing.
type Placement interface {
	isPlacement()
}

// ConstStorage locates a constant within the artifact's constant-data
// segment. Mutually exclusive with Pooled by construction.
type ConstStorage struct {
	Offset int64
	Size   int64
}

func (ConstStorage) isPlacement() {}

// Pooled assigns a tensor to a byte range within a planned runtime buffer.
type Pooled struct {
	MemID     int
	MemOffset int64
}

func (Pooled) isPlacement() {}

// TensorSpec is the per-value descriptor attached to every tensor in the
// graph. Aliased values share one TensorSpec object, so spec equality
// across an alias group holds by identity.
type TensorSpec struct {
	Shape     []int
	DType     DType
	Lifetime  Lifetime
	Const     bool
	Placement Placement
}

// NumElements returns the element count of the spec's shape.
func (s *TensorSpec) NumElements() int {
	n := 1
	for _, d := range s.Shape {
		n *= d
	}
	return n
}

// SizeBytes returns the unaligned byte size of the tensor.
func (s *TensorSpec) SizeBytes() int64 {
	return int64(s.NumElements()) * int64(s.DType.Size())
}

// Storage returns the constant-segment range, if the spec has one.
func (s *TensorSpec) Storage() (ConstStorage, bool) {
	st, ok := s.Placement.(ConstStorage)
	return st, ok
}

// Pool returns the pooled placement, if the spec has one.
func (s *TensorSpec) Pool() (Pooled, bool) {
	p, ok := s.Placement.(Pooled)
	return p, ok
}
