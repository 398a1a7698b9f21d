// Package config loads pipeline definitions from YAML, environment variables
// and command-line flags, and builds runnable pipelines from them.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// EnvPrefix is the prefix of environment variables read by Load.
// DSP_ALLOW_ROW_REMOVAL maps to allow_row_removal.
const EnvPrefix = "DSP_"

// Config is a complete run definition.
type Config struct {
	Label           string   `koanf:"label"`
	AllowRowRemoval bool     `koanf:"allow_row_removal"`
	Verbose         bool     `koanf:"verbose"`
	Pipeline        StepSpec `koanf:"pipeline"`
}

// StepSpec describes one step. Kind selects a registered factory, Params are
// decoded into that step's config struct. Steps, AppendInput, AppendSuffix
// and Description apply to the "pipeline" kind, which is also assumed when
// Kind is empty.
type StepSpec struct {
	Kind         string         `koanf:"kind"`
	Description  string         `koanf:"description"`
	AppendInput  bool           `koanf:"append_input"`
	AppendSuffix string         `koanf:"append_suffix"`
	Params       map[string]any `koanf:"params"`
	Steps        []StepSpec     `koanf:"steps"`
}

// RunOptions returns the run options described by c.
func (c *Config) RunOptions() pipeline.RunOptions {
	return pipeline.RunOptions{
		Label:           c.Label,
		AllowRowRemoval: c.AllowRowRemoval,
		Verbose:         c.Verbose,
	}
}

func defaults() map[string]any {
	opts := pipeline.DefaultRunOptions()
	return map[string]any{
		"label":             opts.Label,
		"allow_row_removal": opts.AllowRowRemoval,
		"verbose":           opts.Verbose,
	}
}

// Load reads configuration from path, if non-empty, and the environment.
// Precedence (highest to lowest): env vars > config file > defaults
func Load(path string) (*Config, error) {
	return LoadWithFlags(path, nil)
}

// LoadWithFlags is Load with explicitly set flags from fs applied last.
// Flag names use kebab case: --allow-row-removal sets allow_row_removal.
func LoadWithFlags(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if fs != nil {
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// RegisterFlags adds the run option flags understood by LoadWithFlags.
func RegisterFlags(fs *pflag.FlagSet) {
	opts := pipeline.DefaultRunOptions()
	fs.String("label", opts.Label, "label column name, empty for unlabeled data")
	fs.Bool("allow-row-removal", opts.AllowRowRemoval, "run steps that add or remove rows when transforming")
	fs.BoolP("verbose", "v", opts.Verbose, "log every step at info level")
}
