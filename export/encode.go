package export

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/emit"
	"github.com/cmodi-meta/executorch/program"
)

// planDoc is the canonical encoding of a compiled program, handed to the
// external schema compiler. Specs are deduplicated in first-reference
// order and instructions point at them by index, so aliasing survives
// the encoding and identical compilations produce identical bytes.
type planDoc struct {
	Version      int        `json:"version"`
	Name         string     `json:"name"`
	Operators    []opDoc    `json:"operators"`
	Instructions []instrDoc `json:"instructions"`
	Specs        []specDoc  `json:"specs"`
	Pools        []poolDoc  `json:"pools"`
	ConstSize    int64      `json:"const_size"`
}

type opDoc struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Overload  string `json:"overload,omitempty"`
}

type specDoc struct {
	Shape    []int       `json:"shape"`
	DType    string      `json:"dtype"`
	Lifetime [2]int      `json:"lifetime"`
	Const    bool        `json:"const"`
	Storage  *storageDoc `json:"storage,omitempty"`
	Pooled   *pooledDoc  `json:"pooled,omitempty"`
}

type storageDoc struct {
	Offset int64 `json:"offset"`
	Size   int64 `json:"size"`
}

type pooledDoc struct {
	MemID     int   `json:"mem_id"`
	MemOffset int64 `json:"mem_offset"`
}

type instrDoc struct {
	OpIndex int      `json:"op_index"`
	Args    []argDoc `json:"args"`
}

type argDoc struct {
	Kind string  `json:"kind"` // "spec" or "ints"
	Spec int     `json:"spec,omitempty"`
	Ints []int64 `json:"ints,omitempty"`
}

const docVersion = 1

// canonicalDoc builds the encodable form of the compiled program.
func (c *Compiled) canonicalDoc() (*planDoc, error) {
	doc := &planDoc{
		Version:   docVersion,
		Name:      c.Graph.Name,
		ConstSize: int64(len(c.Constants)),
	}
	for _, op := range c.Plan.Operators {
		doc.Operators = append(doc.Operators, opDoc{
			Namespace: op.Namespace,
			Name:      op.Name,
			Overload:  op.Overload,
		})
	}

	specIndex := make(map[*program.TensorSpec]int)
	for _, instr := range c.Plan.Instructions {
		args := make([]argDoc, 0, len(instr.Args))
		for _, arg := range instr.Args {
			switch a := arg.(type) {
			case emit.TensorArg:
				idx, ok := specIndex[a.Spec]
				if !ok {
					idx = len(doc.Specs)
					specIndex[a.Spec] = idx
					doc.Specs = append(doc.Specs, encodeSpec(a.Spec))
				}
				args = append(args, argDoc{Kind: "spec", Spec: idx})
			case emit.IntsArg:
				args = append(args, argDoc{Kind: "ints", Ints: a.Ints})
			default:
				return nil, errors.Wrapf(program.ErrInvariant, "unknown argument type %T", arg)
			}
		}
		doc.Instructions = append(doc.Instructions, instrDoc{OpIndex: instr.OpIndex, Args: args})
	}

	poolIDs := make([]int, 0, len(c.Memory.PoolSizes))
	for id := range c.Memory.PoolSizes {
		poolIDs = append(poolIDs, id)
	}
	sort.Ints(poolIDs)
	for _, id := range poolIDs {
		doc.Pools = append(doc.Pools, poolDoc{MemID: id, Size: c.Memory.PoolSizes[id]})
	}
	return doc, nil
}

type poolDoc struct {
	MemID int   `json:"mem_id"`
	Size  int64 `json:"size"`
}

func encodeSpec(s *program.TensorSpec) specDoc {
	d := specDoc{
		Shape:    s.Shape,
		DType:    s.DType.String(),
		Lifetime: [2]int{s.Lifetime.First, s.Lifetime.Last},
		Const:    s.Const,
	}
	switch p := s.Placement.(type) {
	case program.ConstStorage:
		d.Storage = &storageDoc{Offset: p.Offset, Size: p.Size}
	case program.Pooled:
		d.Pooled = &pooledDoc{MemID: p.MemID, MemOffset: p.MemOffset}
	}
	return d
}

// CanonicalJSON renders the compiled program's canonical encoding. The
// same graph and options always yield byte-identical output.
func (c *Compiled) CanonicalJSON() ([]byte, error) {
	doc, err := c.canonicalDoc()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
