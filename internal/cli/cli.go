package cli

import (
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/seitarof/retaingen/internal/hierarchy"
)

// ParseArgs parses command line arguments into Config. Values from the
// configuration file apply only where the matching flag was not given.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}

	fs := pflag.NewFlagSet("retaingen", pflag.ContinueOnError)
	fs.StringVarP(&cfg.ConfigFile, "config", "c", "", "YAML configuration file")
	fs.StringVarP(&cfg.Filename, "filename", "o", "", "generated file name, written into each package directory")
	fs.StringVar(&cfg.Suffix, "suffix", "", "companion type name suffix")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&cfg.DumpModels, "dump", false, "dump class models to stderr")
	fs.BoolVarP(&cfg.ShowVersion, "version", "v", false, "show version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	if cfg.ConfigFile != "" {
		fc, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		mergeFile(cfg, fs, fc)
	}
	applyDefaults(cfg)

	cfg.Patterns = fs.Args()
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = []string{"."}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, fs *pflag.FlagSet, fc *FileConfig) {
	if !fs.Changed("filename") && fc.Output != "" {
		cfg.Filename = fc.Output
	}
	if !fs.Changed("suffix") && fc.Suffix != "" {
		cfg.Suffix = fc.Suffix
	}
	if !fs.Changed("log-level") && fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	cfg.Converters = append(cfg.Converters, fc.Converters...)
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Filename) == "" {
		cfg.Filename = DefaultFilename
	}
	if strings.TrimSpace(cfg.Suffix) == "" {
		cfg.Suffix = hierarchy.DefaultSuffix
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func validate(cfg *Config) error {
	if filepath.Base(cfg.Filename) != cfg.Filename {
		return fmt.Errorf("--filename must be a file name, not a path: %q", cfg.Filename)
	}
	if !strings.HasSuffix(cfg.Filename, ".go") || strings.HasSuffix(cfg.Filename, "_test.go") {
		return fmt.Errorf("--filename must name a non-test .go file: %q", cfg.Filename)
	}
	if !token.IsIdentifier("X" + cfg.Suffix) {
		return fmt.Errorf("--suffix must be usable in an identifier: %q", cfg.Suffix)
	}
	return nil
}
