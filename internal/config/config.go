// Package config holds app-wide settings unmarshalled from viper: built-in
// defaults, an optional YAML settings file, FUSIONSITE_* environment
// variables and bound command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fusionsite-core/fusion"
	"fusionsite-core/optimize"
	"fusionsite-core/primer"
	"fusionsite-core/thermo"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "FUSIONSITE"

// LogConfig controls the charm logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig picks the result writer.
type OutputConfig struct {
	Format string `mapstructure:"format"` // json | jsonl | yaml | text
	Color  bool   `mapstructure:"color"`
}

// OptimizeConfig holds request defaults for fields a caller leaves empty.
type OptimizeConfig struct {
	Algorithm           string  `mapstructure:"algorithm"`
	WeightPreset        string  `mapstructure:"weight-preset"`
	MinFragmentSize     int     `mapstructure:"min-fragment-size"`
	MaxFragmentSize     int     `mapstructure:"max-fragment-size"`
	MinDistanceFromEnds int     `mapstructure:"min-distance-from-ends"`
	MinSetFidelity      float64 `mapstructure:"min-set-fidelity"`
}

// SearchConfig bounds the optimizers.
type SearchConfig struct {
	Nodes        int64 `mapstructure:"nodes"`
	Iterations   int   `mapstructure:"iterations"`
	RepairRounds int   `mapstructure:"repair-rounds"`
	InitialDraws int   `mapstructure:"initial-draws"`
	Workers      int   `mapstructure:"workers"`
}

// PrimerConfig sets the reaction conditions and design window of the
// default primer evaluator. Concentrations accept units: "50mM", "250nM".
type PrimerConfig struct {
	Na        string  `mapstructure:"na"`
	Mg        string  `mapstructure:"mg"`
	Conc      string  `mapstructure:"conc"`
	TargetTm  float64 `mapstructure:"target-tm"`
	MinLength int     `mapstructure:"min-length"`
	MaxLength int     `mapstructure:"max-length"`
}

// CacheConfig sizes the shared memo caches; 0 disables a cache.
type CacheConfig struct {
	Scores        int `mapstructure:"scores"`
	Domestication int `mapstructure:"domestication"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	MaxBodyBytes   int64         `mapstructure:"max-body-bytes"`
}

// Config is the root settings struct.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Output   OutputConfig   `mapstructure:"output"`
	Optimize OptimizeConfig `mapstructure:"optimize"`
	Search   SearchConfig   `mapstructure:"search"`
	Primer   PrimerConfig   `mapstructure:"primer"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`

	// Catalogs are YAML enzyme files merged over the built-in catalog.
	Catalogs []string `mapstructure:"catalogs"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	c := fusion.DefaultConstraints()
	b := optimize.DefaultBudget()

	v.SetDefault("log.level", "info")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.color", false)

	v.SetDefault("optimize.algorithm", string(optimize.Auto))
	v.SetDefault("optimize.weight-preset", "balanced")
	v.SetDefault("optimize.min-fragment-size", c.MinFragmentSize)
	v.SetDefault("optimize.max-fragment-size", c.MaxFragmentSize)
	v.SetDefault("optimize.min-distance-from-ends", c.MinDistanceFromEnds)
	v.SetDefault("optimize.min-set-fidelity", c.MinSetFidelity)

	v.SetDefault("search.nodes", b.Nodes)
	v.SetDefault("search.iterations", b.Iterations)
	v.SetDefault("search.repair-rounds", b.RepairRounds)
	v.SetDefault("search.initial-draws", b.InitialDraws)
	v.SetDefault("search.workers", 0)

	v.SetDefault("primer.na", "50mM")
	v.SetDefault("primer.mg", "0")
	v.SetDefault("primer.conc", "250nM")
	v.SetDefault("primer.target-tm", 60.0)
	v.SetDefault("primer.min-length", 18)
	v.SetDefault("primer.max-length", 30)

	v.SetDefault("cache.scores", 4096)
	v.SetDefault("cache.domestication", 256)

	v.SetDefault("store.path", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request-timeout", 2*time.Minute)
	v.SetDefault("server.max-body-bytes", int64(16<<20))
	v.SetDefault("catalogs", []string{})
}

// New returns a viper instance with defaults and environment binding.
// Keys map to variables as FUSIONSITE_SEARCH_NODES, FUSIONSITE_LOG_LEVEL.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional settings file into v and decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values no component could use.
func (c Config) Validate() error {
	switch strings.ToLower(c.Output.Format) {
	case "json", "jsonl", "yaml", "text":
	default:
		return fmt.Errorf("config: output.format %q: want json, jsonl, yaml or text", c.Output.Format)
	}
	if _, err := optimize.ParseAlgorithm(c.Optimize.Algorithm); err != nil {
		return fmt.Errorf("config: optimize.algorithm: %w", err)
	}
	if _, err := fusion.Preset(c.Optimize.WeightPreset); err != nil {
		return fmt.Errorf("config: optimize.weight-preset: %w", err)
	}
	if err := c.Constraints(false).Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Evaluator(); err != nil {
		return err
	}
	if c.Cache.Scores < 0 || c.Cache.Domestication < 0 {
		return fmt.Errorf("config: cache sizes must be ≥ 0")
	}
	return nil
}

// Constraints builds the default constraint set.
func (c Config) Constraints(circular bool) fusion.Constraints {
	return fusion.Constraints{
		MinFragmentSize:     c.Optimize.MinFragmentSize,
		MaxFragmentSize:     c.Optimize.MaxFragmentSize,
		MinDistanceFromEnds: c.Optimize.MinDistanceFromEnds,
		MinSetFidelity:      c.Optimize.MinSetFidelity,
		Circular:            circular,
	}
}

// Budget builds the search budget.
func (c Config) Budget() optimize.Budget {
	return optimize.Budget{
		Nodes:        c.Search.Nodes,
		Iterations:   c.Search.Iterations,
		RepairRounds: c.Search.RepairRounds,
		InitialDraws: c.Search.InitialDraws,
	}
}

// Evaluator builds the primer evaluator from the primer section.
func (c Config) Evaluator() (primer.ThermoEvaluator, error) {
	ev := primer.NewThermoEvaluator()
	for _, f := range []struct {
		key string
		in  string
		out *float64
	}{
		{"primer.na", c.Primer.Na, &ev.Cond.Na},
		{"primer.mg", c.Primer.Mg, &ev.Cond.Mg},
		{"primer.conc", c.Primer.Conc, &ev.Cond.PrimerCT},
	} {
		v, err := thermo.ParseConc(f.in)
		if err != nil {
			return ev, fmt.Errorf("config: %s: %w", f.key, err)
		}
		*f.out = v
	}
	if ev.Cond.Na <= 0 || ev.Cond.PrimerCT <= 0 {
		return ev, fmt.Errorf("config: primer.na and primer.conc must be > 0")
	}
	if c.Primer.MinLength < 8 || c.Primer.MaxLength < c.Primer.MinLength {
		return ev, fmt.Errorf("config: primer length window %d-%d", c.Primer.MinLength, c.Primer.MaxLength)
	}
	ev.TargetTm = c.Primer.TargetTm
	ev.MinLen, ev.MaxLen = c.Primer.MinLength, c.Primer.MaxLength
	return ev, nil
}
