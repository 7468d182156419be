package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration file.
type FileConfig struct {
	Output     string             `yaml:"output"`
	Suffix     string             `yaml:"suffix"`
	LogLevel   string             `yaml:"log_level"`
	Converters []ConverterMapping `yaml:"converters"`
}

// ConverterMapping registers a converter for every value of a type. Type is
// the type signature, such as "time.Location" or "example.com/geo.Point".
type ConverterMapping struct {
	Type      string `yaml:"type"`
	Converter string `yaml:"converter"`
}

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseFile(data)
}

// ParseFile parses YAML data into a FileConfig.
func ParseFile(data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &fc, nil
}
