// Package executorch implements the lowering and packaging layer of an
// ahead-of-time model compiler: it takes an optimized computation graph
// and produces a statically planned memory layout, a linear instruction
// stream over a deduplicated operator table, and self-contained binary
// envelopes for backend-delegated subgraphs.
//
// # Architecture
//
// The module is organized into several packages:
//
//   - program: tensor specs, dtypes, the graph model, and a fluent Builder
//   - passes: the view-elision pass that turns reshape/view nodes into
//     zero-cost aliases
//   - memplan: static memory planning (greedy and naive strategies)
//   - emit: execution-plan emission (operator table + instruction chain)
//   - delegate: framing and packaging of delegated subgraph blobs
//   - runtime: a minimal executor for compiled plans, plus a reference
//     graph evaluator
//   - export: the end-to-end pipeline and artifact bundle writer
//
// # Usage
//
//	b := program.NewBuilder("main")
//	p := b.Parameter("p", program.Float32, []int{5, 6}, weights)
//	x := b.Input("x", program.Float32, 5, 6)
//	y := b.Mul(b.View(p, 6, 5), b.View(x, 6, 5))
//	b.Output(b.View(y, 30))
//
//	g, err := b.Build()
//	if err != nil { ... }
//	compiled, err := export.Lower(g, export.DefaultOptions())
//
// The compiled artifact is consumed by a minimal downstream interpreter;
// the runtime package contains one sufficient for verification.
package executorch
