package isingpost

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the externally injected configuration surface: which run
// directory to process, which observable to analyze, the fit-group cutoffs,
// and the exact-curve sweep. Nothing in here is hard-coded into control
// flow; the defaults merely reproduce the published study.
type Config struct {
	// DataDir is the directory of out_*.json run files.
	DataDir string `mapstructure:"data_dir"`

	// Observable names the observable to analyze.
	Observable string `mapstructure:"observable"`

	// SingleLevelMaxSites / MultilevelMaxSites are the per-class fit-group
	// size cutoffs (exclusive).
	SingleLevelMaxSites int `mapstructure:"single_level_max_sites"`
	MultilevelMaxSites  int `mapstructure:"multilevel_max_sites"`

	// BiasCorrected selects the bias-corrected tau as the fit's dependent
	// variable.
	BiasCorrected bool `mapstructure:"bias_corrected"`

	// BetaMin/BetaMax/BetaSteps control the exact-curve sweep grid.
	BetaMin   float64 `mapstructure:"beta_min"`
	BetaMax   float64 `mapstructure:"beta_max"`
	BetaSteps int     `mapstructure:"beta_steps"`

	// MaxLag truncates dumped autocorrelation curves; 0 keeps everything.
	MaxLag int `mapstructure:"max_lag"`
}

// DefaultConfig returns the study defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:             "runs",
		Observable:          "magnetization",
		SingleLevelMaxSites: 33 * 33,
		MultilevelMaxSites:  5 * 5,
		BetaMin:             0.25,
		BetaMax:             3.0,
		BetaSteps:           1000,
		MaxLag:              100,
	}
}

// Aggregate derives the aggregation settings from the configuration.
func (c Config) Aggregate() AggregateConfig {
	return AggregateConfig{
		Observable:          c.Observable,
		SingleLevelMaxSites: c.SingleLevelMaxSites,
		MultilevelMaxSites:  c.MultilevelMaxSites,
		BiasCorrected:       c.BiasCorrected,
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	if c.Observable == "" {
		return fmt.Errorf("config: observable must not be empty")
	}
	if c.SingleLevelMaxSites <= 0 || c.MultilevelMaxSites <= 0 {
		return fmt.Errorf("config: size cutoffs must be positive")
	}
	if c.BetaSteps > 1 && c.BetaMax <= c.BetaMin {
		return fmt.Errorf("config: beta_max must exceed beta_min")
	}
	if c.BetaMin <= 0 {
		return fmt.Errorf("config: beta_min must be positive (curves use 1/beta)")
	}
	return nil
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// and ISINGPOST_* environment overrides (e.g. ISINGPOST_DATA_DIR). An empty
// path skips the file layer.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("observable", defaults.Observable)
	v.SetDefault("single_level_max_sites", defaults.SingleLevelMaxSites)
	v.SetDefault("multilevel_max_sites", defaults.MultilevelMaxSites)
	v.SetDefault("bias_corrected", defaults.BiasCorrected)
	v.SetDefault("beta_min", defaults.BetaMin)
	v.SetDefault("beta_max", defaults.BetaMax)
	v.SetDefault("beta_steps", defaults.BetaSteps)
	v.SetDefault("max_lag", defaults.MaxLag)

	v.SetEnvPrefix("isingpost")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
