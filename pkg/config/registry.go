package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/ryuk2git/dspipeline/pkg/pipeline"
)

// Factory builds a step from its spec. b builds nested specs.
type Factory func(spec StepSpec, b *Builder) (pipeline.Step, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a step factory under kind. Kinds are case-insensitive and a
// later registration replaces an earlier one.
func Register(kind string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(kind)] = factory
}

func lookup(kind string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(kind)]
	return f, ok
}

// Kinds returns all registered kinds (sorted).
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// UnknownKindError is returned when a spec names a kind nobody registered.
type UnknownKindError struct {
	Kind      string
	Available []string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown step kind %q\nAvailable kinds: %v", e.Kind, e.Available)
}

// Builder turns specs into steps. Pipelines it builds log to Logger.
type Builder struct {
	Logger *slog.Logger
}

// Build builds spec with a Builder that discards logs.
func Build(spec StepSpec) (pipeline.Step, error) {
	return (&Builder{}).Build(spec)
}

func (b *Builder) Build(spec StepSpec) (pipeline.Step, error) {
	kind := spec.Kind
	if kind == "" {
		kind = KindPipeline
	}
	factory, ok := lookup(kind)
	if !ok {
		return nil, &UnknownKindError{Kind: kind, Available: Kinds()}
	}
	return factory(spec, b)
}

// Build builds the configured root pipeline. Every pipeline in the tree logs
// to logger; nil discards logs.
func (c *Config) Build(logger *slog.Logger) (*pipeline.Pipeline, error) {
	spec := c.Pipeline
	if spec.Kind != "" && !strings.EqualFold(spec.Kind, KindPipeline) {
		return nil, fmt.Errorf("%w: root step must be a pipeline, got %q", pipeline.ErrInvalidConfig, spec.Kind)
	}
	return (&Builder{Logger: logger}).pipeline(spec)
}

func (b *Builder) pipeline(spec StepSpec) (*pipeline.Pipeline, error) {
	if len(spec.Params) > 0 {
		return nil, fmt.Errorf("%w: pipeline takes no params", pipeline.ErrInvalidConfig)
	}
	steps := make([]pipeline.Step, 0, len(spec.Steps))
	for i, s := range spec.Steps {
		step, err := b.Build(s)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	opts := []pipeline.Option{pipeline.WithAppendInput(spec.AppendInput)}
	if spec.AppendSuffix != "" {
		opts = append(opts, pipeline.WithAppendSuffix(spec.AppendSuffix))
	}
	if spec.Description != "" {
		opts = append(opts, pipeline.WithDescription(spec.Description))
	}
	if b.Logger != nil {
		opts = append(opts, pipeline.WithLogger(b.Logger))
	}
	return pipeline.New(steps, opts...), nil
}

// Decode decodes params into out, a pointer to a step config struct. Unknown
// keys are an error.
func Decode(params map[string]any, out any) error {
	if params == nil {
		params = map[string]any{}
	}
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(params, "."), nil); err != nil {
		return err
	}
	err := k.UnmarshalWithConf("", out, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
			Result:           out,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrInvalidConfig, err)
	}
	return nil
}
