package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// MarshalLayout serializes a layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	if l.Version == 0 {
		l.Version = FormatVersion
	}
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := checkVersion(l.Version); err != nil {
		return Layout{}, err
	}
	if l.Version == 0 {
		l.Version = FormatVersion
	}
	if l.Stats.Rows != len(l.Rows) {
		return Layout{}, fmt.Errorf("%w: stats report %d rows, found %d", ErrInvalid, l.Stats.Rows, len(l.Rows))
	}
	return l, nil
}

// WriteLayoutFile writes a layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
