package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Load parses a JSON encoded definition and validates it.
func Load(data []byte) (*Definition, error) {
	var def Definition
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("could not decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadYAML parses a YAML encoded definition and validates it.
func LoadYAML(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.UnmarshalStrict(data, &def); err != nil {
		return nil, fmt.Errorf("could not decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Save encodes a definition into its canonical JSON form.
func Save(def *Definition) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(def); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFile reads a definition from disk. Files ending in .yaml or .yml are read as YAML, everything else as JSON.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	default:
		return Load(data)
	}
}

// SaveFile writes the canonical JSON form of a definition to disk.
func SaveFile(path string, def *Definition) error {
	data, err := Save(def)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
