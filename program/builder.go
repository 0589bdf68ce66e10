package program

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common operator identities used by the builder's convenience methods.
var (
	OpMul      = Operator{Namespace: "aten", Name: "mul", Overload: "out"}
	OpAdd      = Operator{Namespace: "aten", Name: "add", Overload: "out"}
	OpViewCopy = Operator{Namespace: "aten", Name: "view_copy", Overload: "out"}
)

// Builder constructs graphs in program order.
//
// Example usage:
//
//	b := program.NewBuilder("main")
//	p := b.Parameter("p", program.Float32, []int{5, 6}, weights)
//	x := b.Input("x", program.Float32, 5, 6)
//	y := b.Mul(b.View(p, 6, 5), b.View(x, 6, 5))
//	b.Output(b.View(y, 30))
//	g, err := b.Build()
type Builder struct {
	name    string
	nodes   []*Node
	values  map[string]*Value
	inputs  []*Value
	params  []*Value
	outputs []*Value
	pool    ConstantPool
	nextID  int
	built   bool
	err     error // first error encountered during building
}

// NewBuilder creates a new graph builder. The name identifies the
// program's entry point.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		values: make(map[string]*Value),
	}
}

// Err returns the first error encountered during building, if any.
func (b *Builder) Err() error {
	return b.err
}

// setErr records the first error encountered.
func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// genName generates a unique name for intermediate values.
func (b *Builder) genName(prefix string) string {
	name := fmt.Sprintf("%s_%d", prefix, b.nextID)
	b.nextID++
	return name
}

func (b *Builder) appendNode(n *Node) {
	n.Index = len(b.nodes)
	b.nodes = append(b.nodes, n)
	if n.Output != nil {
		n.Output.Def = n
		b.values[n.Output.Name] = n.Output
	}
}

// Input adds a graph input. Inputs have no storage of their own until the
// planner assigns one (or the caller binds external storage at run time).
func (b *Builder) Input(name string, dtype DType, shape ...int) *Value {
	v := &Value{
		Name: name,
		Spec: &TensorSpec{Shape: shape, DType: dtype},
	}
	b.appendNode(&Node{Kind: KindPlaceholder, Output: v})
	b.inputs = append(b.inputs, v)
	return v
}

// Parameter adds a constant parameter backed by data embedded in the
// artifact's constant segment. The data is encoded for the dtype and
// appended to the builder's constant pool at an aligned offset.
func (b *Builder) Parameter(name string, dtype DType, shape []int, data []float32) *Value {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		b.setErr(errors.Wrapf(ErrMalformedInput,
			"parameter %q: shape %v holds %d elements, got %d", name, shape, n, len(data)))
	}
	raw, err := EncodeFloat32s(dtype, data)
	if err != nil {
		b.setErr(err)
		raw = nil
	}
	offset := b.pool.Add(raw)
	v := &Value{
		Name: name,
		Spec: &TensorSpec{
			Shape:     shape,
			DType:     dtype,
			Const:     true,
			Placement: ConstStorage{Offset: offset, Size: int64(len(raw))},
		},
	}
	b.appendNode(&Node{Kind: KindPlaceholder, Output: v})
	b.params = append(b.params, v)
	return v
}

// Call adds an operator invocation producing a new value of the given
// shape. The output dtype follows the first input.
func (b *Builder) Call(op Operator, outShape []int, inputs ...*Value) *Value {
	if len(inputs) == 0 {
		b.setErr(errors.Wrapf(ErrMalformedInput, "call to %s has no inputs", op))
		return &Value{Name: b.genName("invalid"), Spec: &TensorSpec{}}
	}
	v := &Value{
		Name: b.genName(op.Name),
		Spec: &TensorSpec{Shape: outShape, DType: inputs[0].Spec.DType},
	}
	b.appendNode(&Node{Kind: KindCall, Op: op, Inputs: inputs, Output: v})
	return v
}

// CallInPlace adds an operator invocation that writes its first input's
// storage. The returned value denotes the mutated input.
func (b *Builder) CallInPlace(op Operator, inputs ...*Value) *Value {
	if len(inputs) == 0 {
		b.setErr(errors.Wrapf(ErrMalformedInput, "call to %s has no inputs", op))
		return &Value{Name: b.genName("invalid"), Spec: &TensorSpec{}}
	}
	v := &Value{Name: b.genName(op.Name), Spec: inputs[0].Spec}
	b.appendNode(&Node{Kind: KindCall, Op: op, Inputs: inputs, Output: v, InPlace: true})
	return v
}

// Mul adds an elementwise multiplication.
func (b *Builder) Mul(x, y *Value) *Value {
	return b.Call(OpMul, x.Spec.Shape, x, y)
}

// Add adds an elementwise addition.
func (b *Builder) Add(x, y *Value) *Value {
	return b.Call(OpAdd, x.Spec.Shape, x, y)
}

// View reinterprets x under a new shape with the same element count and
// byte layout. View nodes are candidates for elision; until then they
// carry their own spec like any other node.
func (b *Builder) View(x *Value, shape ...int) *Value {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if x.Spec.NumElements() != n {
		b.setErr(errors.Wrapf(ErrMalformedInput,
			"view of %q: cannot reinterpret %v as %v", x.Name, x.Spec.Shape, shape))
	}
	v := &Value{
		Name: b.genName("view"),
		Spec: &TensorSpec{Shape: shape, DType: x.Spec.DType},
	}
	b.appendNode(&Node{Kind: KindView, Inputs: []*Value{x}, Output: v, TargetShape: shape})
	return v
}

// Output marks a value as a graph output.
func (b *Builder) Output(v *Value) {
	b.outputs = append(b.outputs, v)
}

// Build finalizes the graph: it appends the terminating output node,
// computes every value's lifetime, and rejects graphs whose shapes defeat
// static lifetime analysis.
func (b *Builder) Build() (*Graph, error) {
	if b.built {
		return nil, errors.Wrap(ErrInvariant, "graph already built")
	}
	b.built = true
	if len(b.outputs) == 0 {
		b.setErr(errors.Wrap(ErrMalformedInput, "graph has no outputs"))
	}
	b.appendNode(&Node{Kind: KindOutput, Inputs: b.outputs})
	if b.err != nil {
		return nil, b.err
	}
	g := &Graph{
		Name:         b.name,
		Nodes:        b.nodes,
		Inputs:       b.inputs,
		Params:       b.params,
		Outputs:      b.outputs,
		ConstSegment: b.pool.Bytes(),
	}
	if err := ComputeLifetimes(g); err != nil {
		return nil, err
	}
	return g, nil
}
