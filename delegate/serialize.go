package delegate

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/program"
)

// CompilerOptions configures the external flatbuffer schema compiler.
// The tool is invoked as:
//
//	<compiler> <workdir> <schema.fbs path> <schema.json path>
//
// and must write the binary artifact to <workdir>/schema.bin, or exit
// non-zero on encoding error.
type CompilerOptions struct {
	// Compiler is the executable to invoke. Default: "flatc-compile".
	Compiler string
}

// DefaultCompilerOptions returns the default external-tool configuration.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{Compiler: "flatc-compile"}
}

// SerializeGraph converts a backend graph object into schema-validated
// flatbuffer bytes. The object is rendered to its canonical JSON
// encoding and handed, together with the schema, to the external
// compiler inside a scoped temporary directory that is removed whether
// or not the call succeeds. The returned bytes are opaque to this layer.
func SerializeGraph(ctx context.Context, graph any, schema []byte, opts CompilerOptions) ([]byte, error) {
	encoded, err := json.Marshal(graph)
	if err != nil {
		return nil, errors.Wrap(err, "encode delegate graph")
	}

	dir, err := os.MkdirTemp("", "delegate-serialize-")
	if err != nil {
		return nil, errors.Wrap(err, "create scratch dir")
	}
	defer os.RemoveAll(dir)

	schemaPath := filepath.Join(dir, "schema.fbs")
	if err := os.WriteFile(schemaPath, schema, 0o644); err != nil {
		return nil, errors.Wrap(err, "write schema")
	}
	jsonPath := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(jsonPath, encoded, 0o644); err != nil {
		return nil, errors.Wrap(err, "write graph encoding")
	}

	compiler := opts.Compiler
	if compiler == "" {
		compiler = DefaultCompilerOptions().Compiler
	}
	cmd := exec.CommandContext(ctx, compiler, dir, schemaPath, jsonPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errors.Wrapf(program.ErrMalformedInput,
			"schema compiler failed: %v: %s", err, out)
	}

	result, err := os.ReadFile(filepath.Join(dir, "schema.bin"))
	if err != nil {
		return nil, errors.Wrap(err, "read compiled artifact")
	}
	return result, nil
}
