package paramset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// SaveFile writes the simple interchange mapping to a file, atomically via
// a temporary file. The format is chosen by extension: .toml/.tml, .json,
// .yaml/.yml; anything else is written as TOML.
func (c *Config) SaveFile(path string) error {
	data := c.ExportSimple()

	format := detectFileFormat(path)
	if format == "" {
		format = "toml"
	}

	var encoded []byte
	var err error
	switch format {
	case "toml":
		var buf bytes.Buffer
		encoder := toml.NewEncoder(&buf)
		if err = encoder.Encode(data); err == nil {
			encoded = buf.Bytes()
		}
	case "json":
		encoded, err = json.MarshalIndent(data, "", "  ")
	case "yaml":
		encoded, err = yaml.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal values to %s: %w", format, err)
	}

	return atomicWriteFile(path, encoded)
}

// LoadFile reads a simple interchange mapping from a TOML, JSON or YAML
// file and applies it through ImportSimple. The format is detected from the
// extension first, then from the content.
func (c *Config) LoadFile(path string) error {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read values file '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(fileData)
		if format == "" {
			return fmt.Errorf("unable to determine format of values file '%s'", path)
		}
	}

	data := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(fileData, &data); err != nil {
			return fmt.Errorf("failed to parse TOML values file '%s': %w", path, err)
		}
	case "json":
		if err := json.Unmarshal(fileData, &data); err != nil {
			return fmt.Errorf("failed to parse JSON values file '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(fileData, &data); err != nil {
			return fmt.Errorf("failed to parse YAML values file '%s': %w", path, err)
		}
	}

	return c.ImportSimple(data)
}

// detectFileFormat determines format from the file extension.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing.
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// Try TOML before YAML; YAML accepts almost anything
	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}

// atomicWriteFile performs an atomic file write via a temporary file in the
// target directory.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
