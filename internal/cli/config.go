package cli

import (
	"fmt"

	"github.com/seitarof/retaingen/internal/model"
	"github.com/seitarof/retaingen/internal/resolver"
)

// DefaultFilename is the generated file name used when none is configured.
const DefaultFilename = "retain_gen.go"

// Config stores CLI options for a single generation run.
type Config struct {
	Patterns    []string
	Filename    string
	Suffix      string
	ConfigFile  string
	LogLevel    string
	Verbose     bool
	DumpModels  bool
	ShowVersion bool
	Converters  []ConverterMapping
}

// OutputFilename returns the generated file name for generator layer.
func (c *Config) OutputFilename() string {
	return c.Filename
}

// Registry builds the converter registry from the configured mappings.
func (c *Config) Registry() (resolver.MapRegistry, error) {
	reg := resolver.MapRegistry{}
	for i, m := range c.Converters {
		if m.Type == "" {
			return nil, fmt.Errorf("converters[%d]: type is required", i)
		}
		ref, err := model.ParseConverterRef(m.Converter, "")
		if err != nil {
			return nil, fmt.Errorf("converters[%d]: %w", i, err)
		}
		if ref.PkgPath == "" {
			return nil, fmt.Errorf("converters[%d]: converter %q needs an import path", i, m.Converter)
		}
		reg.Register(m.Type, ref)
	}
	return reg, nil
}
