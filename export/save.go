package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cmodi-meta/executorch/delegate"
)

// BundleOptions configures artifact bundle writing.
type BundleOptions struct {
	// Schema is the flatbuffer schema describing the program encoding.
	Schema []byte

	// Compiler configures the external schema compiler that turns the
	// canonical encoding into the binary program artifact.
	Compiler delegate.CompilerOptions
}

// SaveBundle writes the compiled program to a bundle directory:
//
//	<path>/program.bin    schema-compiled program artifact
//	<path>/constants.bin  packed constant-data segment
//	<path>/Manifest.json  bundle manifest
//
// The canonical encoding is handed to the external schema compiler; on
// any failure nothing partially valid is left behind as program.bin.
func (c *Compiled) SaveBundle(ctx context.Context, path string, opts BundleOptions) error {
	doc, err := c.canonicalDoc()
	if err != nil {
		return err
	}
	programBytes, err := delegate.SerializeGraph(ctx, doc, opts.Schema, opts.Compiler)
	if err != nil {
		return errors.Wrap(err, "compile program encoding")
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.Wrap(err, "create bundle dir")
	}
	if err := os.WriteFile(filepath.Join(path, "program.bin"), programBytes, 0o644); err != nil {
		return errors.Wrap(err, "write program")
	}
	if err := os.WriteFile(filepath.Join(path, "constants.bin"), c.Constants, 0o644); err != nil {
		return errors.Wrap(err, "write constants")
	}
	return writeManifest(path, len(c.Constants) > 0)
}

// writeManifest emits the bundle manifest with a fresh identifier per
// item.
func writeManifest(path string, hasConstants bool) error {
	programUUID := uuid.New().String()

	itemEntries := map[string]any{
		programUUID: map[string]any{
			"description": "compiled program",
			"name":        "program.bin",
			"path":        "program.bin",
		},
	}
	if hasConstants {
		constantsUUID := uuid.New().String()
		itemEntries[constantsUUID] = map[string]any{
			"description": "constant data segment",
			"name":        "constants.bin",
			"path":        "constants.bin",
		}
	}

	manifest := map[string]any{
		"fileFormatVersion": "1.0.0",
		"itemInfoEntries":   itemEntries,
		"rootIdentifier":    programUUID,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}
	return os.WriteFile(filepath.Join(path, "Manifest.json"), data, 0o644)
}
