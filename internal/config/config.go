// Package config handles minivm.toml configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"minivm/pkg/debugger"
	"minivm/pkg/vm"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "minivm.toml"

type Config struct {
	VM       VMConfig       `toml:"vm"`
	Debugger DebuggerConfig `toml:"debugger"`
	Output   OutputConfig   `toml:"output"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

type VMConfig struct {
	MaxSteps  int `toml:"max-steps"`
	StackSize int `toml:"stack-size"`
}

type DebuggerConfig struct {
	Prompt  string `toml:"prompt"`
	History string `toml:"history"`
}

type OutputConfig struct {
	Color *bool `toml:"color"`
}

// Default returns the built-in configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load parses a configuration file. An empty path means DefaultFile, which
// may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path

	if c.VM.MaxSteps < 0 || c.VM.StackSize < 0 {
		return nil, fmt.Errorf("invalid [vm] section in %s: limits must not be negative", path)
	}

	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.VM.MaxSteps == 0 {
		c.VM.MaxSteps = vm.DefaultMaxSteps
	}
	if c.VM.StackSize == 0 {
		c.VM.StackSize = vm.DefaultStackSize
	}
	if c.Debugger.Prompt == "" {
		c.Debugger.Prompt = debugger.DefaultPrompt
	}
	if c.Output.Color == nil {
		enabled := true
		c.Output.Color = &enabled
	}
}

// ColorEnabled reports the [output] color setting
func (c *Config) ColorEnabled() bool {
	return c.Output.Color == nil || *c.Output.Color
}

// VMOptions turns the [vm] section into VM options
func (c *Config) VMOptions() []vm.Option {
	return []vm.Option{
		vm.WithMaxSteps(c.VM.MaxSteps),
		vm.WithStackSize(c.VM.StackSize),
	}
}
