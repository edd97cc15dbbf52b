package routes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML route table and validates it.
//
//	TEACHERS:
//	  availability:
//	    method: GET
//	    path: /teachers/:id/availability
//	    rate_limit: {requests: 10, window_ms: 60000}
func Parse(data []byte) (Registry, error) {
	var reg Registry

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&reg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode route table: %w", err)
	}
	if reg == nil {
		reg = Registry{}
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadFile reads a YAML route table from disk
func LoadFile(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route table: %w", err)
	}
	return Parse(data)
}

// LoadWithDefaults merges the routes of the file at path over the built-in
// table. An empty path returns the built-in table.
func LoadWithDefaults(path string) (Registry, error) {
	if path == "" {
		return Default(), nil
	}
	overrides, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Default().Merge(overrides), nil
}

// Marshal renders the registry as YAML
func (r Registry) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}
