// Package emit linearizes a planned graph into an operator table and an
// instruction chain that a minimal downstream interpreter can execute
// without the compiler present.
package emit

import "github.com/cmodi-meta/executorch/program"

// OpView is the lightweight reinterpret operator emitted in place of an
// elided view node that still changes shape. It moves no data.
var OpView = program.Operator{Namespace: "executorch_prim", Name: "et_view"}

// Arg is one ordered instruction argument: either a reference to a
// tensor spec or an immediate value.
type Arg interface {
	isArg()
}

// TensorArg references a tensor spec by identity. Two instructions
// holding the same spec pointer refer to the same storage.
type TensorArg struct {
	Spec *program.TensorSpec
}

func (TensorArg) isArg() {}

// IntsArg carries an immediate integer list, such as a target shape.
type IntsArg struct {
	Ints []int64
}

func (IntsArg) isArg() {}

// Instruction is one step of the linear execution chain.
type Instruction struct {
	OpIndex int
	Args    []Arg
}

// Plan is the execution surface consumed by an interpreter: a table of
// deduplicated operators indexed from 0, and an ordered instruction
// chain referencing it.
type Plan struct {
	Operators    []program.Operator
	Instructions []Instruction
}
