// Package config holds process-wide constants (SPEC_FULL.md §10.2) plus
// an optional .venomrc.yaml loader for the handful of non-semantic knobs
// that are reasonable to tune without recompiling: VM stack sizing and
// whether CLI output is colorized.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SourceFileExt is Venom's recognized source extension.
const SourceFileExt = ".venom"

// HasSourceExt reports whether path ends with the recognized source
// extension.
func HasSourceExt(path string) bool {
	return len(path) >= len(SourceFileExt) && path[len(path)-len(SourceFileExt):] == SourceFileExt
}

// TrimSourceExt removes SourceFileExt from name, returning name
// unchanged if it doesn't have that suffix.
func TrimSourceExt(name string) string {
	if HasSourceExt(name) {
		return name[:len(name)-len(SourceFileExt)]
	}
	return name
}

// PrintFuncName is the sole builtin free function spec §6 names.
const PrintFuncName = "print"

// Builtin generic class names (spec §3, SUPPLEMENTED FEATURES §12.1).
const (
	ListTypeName = "List"
	MapTypeName  = "Map"
)

// DefaultInitialStackSize and DefaultMaxFrameCount are the VM defaults
// (internal/vm.InitialStackSize/MaxFrameCount) before any .venomrc.yaml
// override is applied.
const (
	DefaultInitialStackSize = 2048
	DefaultMaxFrameCount    = 4096
)

// Config is the shape of an optional .venomrc.yaml in the working
// directory. Every field is optional; a missing file or a missing field
// falls back to the Default* constants above.
type Config struct {
	VM struct {
		InitialStackSize int `yaml:"initial_stack_size,omitempty"`
		MaxFrameCount    int `yaml:"max_frame_count,omitempty"`
	} `yaml:"vm"`
	CLI struct {
		Color *bool `yaml:"color,omitempty"`
	} `yaml:"cli"`
}

// Default returns a Config populated entirely with defaults, used when
// no .venomrc.yaml is present.
func Default() *Config {
	c := &Config{}
	c.VM.InitialStackSize = DefaultInitialStackSize
	c.VM.MaxFrameCount = DefaultMaxFrameCount
	return c
}

// Load reads path (typically ".venomrc.yaml" in the working directory)
// and merges it over Default(). A missing file is not an error — Venom
// runs with defaults exactly as if an empty file had been found.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, err
	}
	if overlay.VM.InitialStackSize > 0 {
		cfg.VM.InitialStackSize = overlay.VM.InitialStackSize
	}
	if overlay.VM.MaxFrameCount > 0 {
		cfg.VM.MaxFrameCount = overlay.VM.MaxFrameCount
	}
	if overlay.CLI.Color != nil {
		cfg.CLI.Color = overlay.CLI.Color
	}
	return cfg, nil
}

// Colorized resolves whether diagnostic output should be ANSI-colored:
// an explicit .venomrc.yaml `cli.color` wins, otherwise the caller (the
// CLI, via go-isatty) decides from whether stderr is a terminal.
func (c *Config) Colorized(isTTY bool) bool {
	if c.CLI.Color != nil {
		return *c.CLI.Color
	}
	return isTTY
}
