// Package config loads signal registration tables from configuration
// files.
//
// The dispatch core consumes the table as an opaque map[string]any; this
// package only gets it off disk. Supported formats are TOML and YAML,
// selected by file extension. A missing file yields a nil table, which
// builds an empty registry downstream; that is not an error.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads a signal registration table from the file at path.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading signal table %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return parseTOML(path, data)
	case ".yaml", ".yml":
		return parseYAML(path, data)
	default:
		return nil, fmt.Errorf("signal table %s: unsupported format %q", path, filepath.Ext(path))
	}
}

// LoadTOML reads a TOML signal table from an io.Reader.
func LoadTOML(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading signal table: %w", err)
	}
	return parseTOML("<reader>", data)
}

// LoadYAML reads a YAML signal table from an io.Reader.
func LoadYAML(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading signal table: %w", err)
	}
	return parseYAML("<reader>", data)
}

func parseTOML(path string, data []byte) (map[string]any, error) {
	var table map[string]any
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing signal table %s: %w", path, err)
	}
	return table, nil
}

func parseYAML(path string, data []byte) (map[string]any, error) {
	var table map[string]any
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing signal table %s: %w", path, err)
	}
	return table, nil
}
