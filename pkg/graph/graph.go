package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// History Serialization API
// =============================================================================

// MarshalHistory converts a history to indented JSON bytes.
func MarshalHistory(h History) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteHistory(h, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalHistory decodes JSON bytes into a history.
func UnmarshalHistory(data []byte) (History, error) {
	return ReadHistory(bytes.NewReader(data))
}

// WriteHistory writes h as JSON to w. A zero version is written as
// [FormatVersion].
func WriteHistory(h History, w io.Writer) error {
	if h.Version == 0 {
		h.Version = FormatVersion
	}
	return encode(w, h)
}

// WriteHistoryFile writes h to a JSON file.
func WriteHistoryFile(h History, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteHistory(h, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadHistory decodes a JSON history from r.
func ReadHistory(r io.Reader) (History, error) {
	var h History
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return History{}, fmt.Errorf("decode: %w", err)
	}
	if err := checkVersion(h.Version); err != nil {
		return History{}, err
	}
	if h.Version == 0 {
		h.Version = FormatVersion
	}
	return h, nil
}

// ReadHistoryFile reads a JSON history file.
func ReadHistoryFile(path string) (History, error) {
	f, err := os.Open(path)
	if err != nil {
		return History{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadHistory(f)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
