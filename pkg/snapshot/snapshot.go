package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph encodes an input as an indented JSON document.
func MarshalGraph(in *Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(in, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes an input as JSON to w.
func WriteGraph(in *Input, w io.Writer) error {
	return encode(w, FromInput(in))
}

// WriteGraphFile writes an input to a JSON file with 0644 permissions.
func WriteGraphFile(in *Input, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteGraph(in, w) })
}

// ReadGraph decodes a graph document from r.
func ReadGraph(r io.Reader) (*Input, error) {
	var doc Graph
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode graph")
	}
	return doc.Decode()
}

// ReadGraphFile reads a graph document from a JSON file.
func ReadGraphFile(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode")
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "close %s", path)
	}
	return nil
}

func openError(path string, err error) error {
	if os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeNotFound, err, "open %s", path)
	}
	return errs.Wrap(errs.ErrCodeInvalidInput, err, "open %s", path)
}
