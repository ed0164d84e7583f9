// Package config loads substrate configuration from defaults, YAML files and
// the environment.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jllopis/substrate/pkg/errors"
)

type Config struct {
	Substrate SubstrateConfig `koanf:"substrate"`
	Log       LogConfig       `koanf:"log"`
	Memory    MemoryConfig    `koanf:"memory"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type SubstrateConfig struct {
	Name string `koanf:"name"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type MemoryConfig struct {
	STMCapacity        int     `koanf:"stm_capacity"`
	LTMCapacity        int     `koanf:"ltm_capacity"`
	PromotionThreshold float64 `koanf:"promotion_threshold"`
	WorkingCapacity    int     `koanf:"working_capacity"`
	SimilarLimit       int     `koanf:"similar_limit"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp, none
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// Load reads configuration in precedence order: defaults, then the YAML file
// at path (if any), then SUBSTRATE_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("substrate.name", "substrate")
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("memory.stm_capacity", 7)
	k.Set("memory.ltm_capacity", 1000)
	k.Set("memory.promotion_threshold", 0.5)
	k.Set("memory.working_capacity", 32)
	k.Set("memory.similar_limit", 5)

	k.Set("telemetry.exporter", "none")
	k.Set("telemetry.otlp_endpoint", "")
	k.Set("telemetry.otlp_insecure", true)

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (SUBSTRATE_MEMORY_STM_CAPACITY -> memory.stm_capacity).
	// Only the first underscore separates the section from the key, so
	// multi-word keys like stm_capacity survive the mapping.
	if err := k.Load(env.Provider("SUBSTRATE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "SUBSTRATE_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded values. It reports a single
// invalid-configuration error kind; nothing is mutated on failure.
func (c *Config) Validate() error {
	if c.Memory.STMCapacity < 1 {
		return errors.Newf(errors.CodeInvalidConfiguration,
			"memory.stm_capacity must be >= 1, got %d", c.Memory.STMCapacity)
	}
	if c.Memory.LTMCapacity < 1 {
		return errors.Newf(errors.CodeInvalidConfiguration,
			"memory.ltm_capacity must be >= 1, got %d", c.Memory.LTMCapacity)
	}
	if c.Memory.PromotionThreshold < 0 || c.Memory.PromotionThreshold > 1 {
		return errors.Newf(errors.CodeInvalidConfiguration,
			"memory.promotion_threshold must be in [0,1], got %g", c.Memory.PromotionThreshold)
	}
	if c.Memory.WorkingCapacity < 1 {
		return errors.Newf(errors.CodeInvalidConfiguration,
			"memory.working_capacity must be >= 1, got %d", c.Memory.WorkingCapacity)
	}
	if c.Memory.SimilarLimit < 1 {
		return errors.Newf(errors.CodeInvalidConfiguration,
			"memory.similar_limit must be >= 1, got %d", c.Memory.SimilarLimit)
	}
	switch c.Telemetry.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return errors.Newf(errors.CodeInvalidConfiguration,
			"telemetry.exporter must be one of none, stdout, otlp; got %q", c.Telemetry.Exporter)
	}
	return nil
}
