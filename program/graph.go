package program

import "fmt"

// Operator identifies a callee by namespace, name and overload.
// Two call sites invoking the identical callee compare equal.
type Operator struct {
	Namespace string
	Name      string
	Overload  string
}

func (o Operator) String() string {
	if o.Overload == "" {
		return o.Namespace + "::" + o.Name
	}
	return fmt.Sprintf("%s::%s.%s", o.Namespace, o.Name, o.Overload)
}

// NodeKind distinguishes the roles a node can play in the linear program.
type NodeKind uint8

const (
	// KindPlaceholder introduces a graph input or a constant parameter.
	KindPlaceholder NodeKind = iota + 1
	// KindCall invokes an operator on its inputs.
	KindCall
	// KindView reinterprets its input's storage under a new shape.
	KindView
	// KindOutput terminates the program and lists the graph outputs.
	KindOutput
)

// Value is a named tensor produced by a node. Its Spec pointer is shared
// with other values when the view-elision pass collapses aliases.
type Value struct {
	Name string
	Spec *TensorSpec
	Def  *Node
}

// Node is one step of the linear program order.
type Node struct {
	Index  int
	Kind   NodeKind
	Op     Operator // KindCall only
	Inputs []*Value
	Output *Value // nil for KindOutput

	// TargetShape is the reinterpreted shape of a KindView node.
	TargetShape []int

	// InPlace marks a KindCall that writes its first input's storage.
	InPlace bool

	// Set by the view-elision pass.
	Elided      bool
	Reinterpret bool
	Base        *Value
}

// Graph is a fully materialized computation graph in program order.
// Each compilation owns a fresh Graph; stages mutate specs in place.
type Graph struct {
	Name    string
	Nodes   []*Node
	Inputs  []*Value
	Params  []*Value
	Outputs []*Value

	// ConstSegment holds the packed constant data referenced by
	// ConstStorage placements.
	ConstSegment []byte
}
