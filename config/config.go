// Package config loads fairway's settings from flags, FAIRWAY_* environment
// variables and an optional fairway.yaml file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/fairway"
)

const (
	ConfigKeyIterations        = "iterations"
	ConfigKeyBestBalls         = "best-balls"
	ConfigKeyHoles             = "holes"
	ConfigKeyAllowance         = "allowance"
	ConfigKeyTeams             = "teams"
	ConfigKeyFairnessTolerance = "fairness-tolerance"
	ConfigKeyOptimize          = "optimize"
	ConfigKeySwapPercentile    = "swap-percentile"
	ConfigKeyMaxPasses         = "max-passes"
	ConfigKeySeed              = "seed"
	ConfigKeyThreads           = "threads"
	ConfigKeyCacheSize         = "cache-size"
	ConfigKeyDistributions     = "distributions"
	ConfigKeyLogLevel          = "log-level"
	ConfigKeyOutput            = "output"
	ConfigKeyHistogram         = "histogram"
	ConfigKeyStrategies        = "strategies"

	// shortcuts for allowance 100 and 0
	ConfigKeyFullHandicap = "full-handicap"
	ConfigKeyNoHandicap   = "no-handicap"
)

type Config struct {
	*viper.Viper
}

func New() *Config {
	c := &Config{Viper: viper.New()}
	c.SetDefault(ConfigKeyIterations, 500)
	c.SetDefault(ConfigKeyBestBalls, 1)
	c.SetDefault(ConfigKeyHoles, 18)
	c.SetDefault(ConfigKeyAllowance, 100)
	c.SetDefault(ConfigKeyTeams, 2)
	c.SetDefault(ConfigKeyFairnessTolerance, 0.1)
	c.SetDefault(ConfigKeyOptimize, false)
	c.SetDefault(ConfigKeySwapPercentile, 0.25)
	c.SetDefault(ConfigKeyMaxPasses, 0)
	c.SetDefault(ConfigKeySeed, 0)
	c.SetDefault(ConfigKeyThreads, 1)
	c.SetDefault(ConfigKeyCacheSize, 256)
	c.SetDefault(ConfigKeyDistributions, "")
	c.SetDefault(ConfigKeyLogLevel, "warn")
	c.SetDefault(ConfigKeyOutput, "text")
	c.SetDefault(ConfigKeyHistogram, false)
	c.SetDefault(ConfigKeyStrategies, []string{})
	c.SetDefault(ConfigKeyFullHandicap, false)
	c.SetDefault(ConfigKeyNoHandicap, false)
	return c
}

// Load reads the environment and config file and binds flags. configFile
// may be empty, in which case fairway.yaml is looked up in the working
// directory and then in the home directory; not finding one is fine.
func (c *Config) Load(flags *pflag.FlagSet, configFile string) error {
	c.SetEnvPrefix("FAIRWAY")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if configFile != "" {
		c.SetConfigFile(configFile)
	} else {
		c.SetConfigName("fairway")
		c.SetConfigType("yaml")
		c.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			c.AddConfigPath(home)
		}
	}
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("%w: %w", fairway.ErrConfiguration, err)
		}
	}
	if flags != nil {
		return c.BindPFlags(flags)
	}
	return nil
}

// Settings are the validated values the simulation needs.
type Settings struct {
	Iterations        int     `yaml:"iterations"`
	BestBalls         int     `yaml:"best-balls"`
	Holes             int     `yaml:"holes"`
	Allowance         float64 `yaml:"allowance"`
	Teams             int     `yaml:"teams"`
	FairnessTolerance float64 `yaml:"fairness-tolerance"`
	Optimize          bool    `yaml:"optimize"`
	SwapPercentile    float64 `yaml:"swap-percentile"`
	MaxPasses         int     `yaml:"max-passes"`
	Seed              uint64  `yaml:"seed"`
	Threads           int     `yaml:"threads"`
	CacheSize         int     `yaml:"cache-size"`
	Distributions     string  `yaml:"distributions"`
	LogLevel          string  `yaml:"log-level"`
	Output            string  `yaml:"output"`
	Histogram         bool    `yaml:"histogram"`
	// Strategies are assignment strategy names; empty means the default
	// list.
	Strategies []string `yaml:"strategies,omitempty"`
}

// Settings validates the loaded configuration. Allowance is given in
// percent and returned as a fraction; full-handicap and no-handicap
// override it with 100 and 0.
func (c *Config) Settings() (Settings, error) {
	allowance := c.GetFloat64(ConfigKeyAllowance)
	full, none := c.GetBool(ConfigKeyFullHandicap), c.GetBool(ConfigKeyNoHandicap)
	switch {
	case full && none:
		return Settings{}, fmt.Errorf("%w: %s and %s cannot both be set",
			fairway.ErrContractViolation, ConfigKeyFullHandicap, ConfigKeyNoHandicap)
	case full:
		allowance = 100
	case none:
		allowance = 0
	}
	s := Settings{
		Iterations:        c.GetInt(ConfigKeyIterations),
		BestBalls:         c.GetInt(ConfigKeyBestBalls),
		Holes:             c.GetInt(ConfigKeyHoles),
		Allowance:         allowance / 100,
		Teams:             c.GetInt(ConfigKeyTeams),
		FairnessTolerance: c.GetFloat64(ConfigKeyFairnessTolerance),
		Optimize:          c.GetBool(ConfigKeyOptimize),
		SwapPercentile:    c.GetFloat64(ConfigKeySwapPercentile),
		MaxPasses:         c.GetInt(ConfigKeyMaxPasses),
		Seed:              c.GetUint64(ConfigKeySeed),
		Threads:           c.GetInt(ConfigKeyThreads),
		CacheSize:         c.GetInt(ConfigKeyCacheSize),
		Distributions:     c.GetString(ConfigKeyDistributions),
		LogLevel:          strings.ToLower(c.GetString(ConfigKeyLogLevel)),
		Output:            strings.ToLower(c.GetString(ConfigKeyOutput)),
		Histogram:         c.GetBool(ConfigKeyHistogram),
		Strategies:        c.GetStringSlice(ConfigKeyStrategies),
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{fairway.ErrContractViolation}, args...)...))
		}
	}
	check(s.Iterations >= 1, "iterations must be at least 1, got %d", s.Iterations)
	check(s.BestBalls >= 1, "best balls must be at least 1, got %d", s.BestBalls)
	check(s.Holes >= 1, "holes must be at least 1, got %d", s.Holes)
	check(s.Allowance >= 0 && s.Allowance <= 1, "allowance must be between 0 and 100, got %v", s.Allowance*100)
	check(s.Teams >= 1, "teams must be at least 1, got %d", s.Teams)
	check(s.FairnessTolerance > 0 && s.FairnessTolerance < 1,
		"fairness tolerance must be in (0, 1), got %v", s.FairnessTolerance)
	check(s.SwapPercentile > 0 && s.SwapPercentile <= 1,
		"swap percentile must be in (0, 1], got %v", s.SwapPercentile)
	check(s.MaxPasses >= 0, "max passes cannot be negative, got %d", s.MaxPasses)
	check(s.Threads >= 1, "threads must be at least 1, got %d", s.Threads)
	check(s.CacheSize >= 0, "cache size cannot be negative, got %d", s.CacheSize)
	switch s.LogLevel {
	case "debug", "info", "warn":
	default:
		check(false, "log level must be debug, info or warn, got %q", s.LogLevel)
	}
	switch s.Output {
	case "text", "yaml":
	default:
		check(false, "output must be text or yaml, got %q", s.Output)
	}
	if s.Distributions == "" {
		errs = append(errs, fmt.Errorf("%w: no score distributions file given", fairway.ErrConfiguration))
	}
	return errors.Join(errs...)
}
