package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Places   PlacesConfig   `yaml:"places" mapstructure:"places"`
	Vision   VisionConfig   `yaml:"vision" mapstructure:"vision"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Rules    RulesConfig    `yaml:"rules" mapstructure:"rules"`
	Prompts  PromptsConfig  `yaml:"prompts" mapstructure:"prompts"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StorageConfig configures where visit folders are read and artifacts written.
type StorageConfig struct {
	Mode       string `yaml:"mode" mapstructure:"mode"`
	InputRoot  string `yaml:"input_root" mapstructure:"input_root"`
	OutputRoot string `yaml:"output_root" mapstructure:"output_root"`
}

// PlacesConfig holds place-lookup API settings. FixturePath switches lookups
// to a local fixture file, for offline runs and tests.
type PlacesConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	FixturePath   string  `yaml:"fixture_path" mapstructure:"fixture_path"`
}

// VisionConfig holds image-understanding API settings.
type VisionConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	Model         string  `yaml:"model" mapstructure:"model"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	FixturePath   string  `yaml:"fixture_path" mapstructure:"fixture_path"`
	Concurrency   int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// PipelineConfig configures stage selection and folder resolution.
type PipelineConfig struct {
	Stage  int `yaml:"stage" mapstructure:"stage"`
	Latest int `yaml:"latest" mapstructure:"latest"`
}

// RulesConfig configures document validation.
type RulesConfig struct {
	RecencyWindowDays int      `yaml:"recency_window_days" mapstructure:"recency_window_days"`
	ReviewKeywords    []string `yaml:"review_keywords" mapstructure:"review_keywords"`
}

// PromptsConfig points at an optional prompt-override file.
type PromptsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// HistoryConfig configures the run-history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BLOGPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.output_root", "out")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places.rate_per_second", 5)
	v.SetDefault("vision.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("vision.model", "gemini-1.5-flash")
	v.SetDefault("vision.rate_per_second", 2)
	v.SetDefault("vision.concurrency", 4)
	v.SetDefault("pipeline.stage", 4)
	v.SetDefault("pipeline.latest", 1)
	v.SetDefault("rules.recency_window_days", 60)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "blogpipe.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields the given command mode depends on and reports
// every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Pipeline.Stage < 1 || c.Pipeline.Stage > 4 {
		problems = append(problems, "pipeline.stage must be between 1 and 4")
	}
	if c.Pipeline.Latest < 1 {
		problems = append(problems, "pipeline.latest must be >= 1")
	}
	if c.Rules.RecencyWindowDays < 0 {
		problems = append(problems, "rules.recency_window_days must be >= 0")
	}

	switch mode {
	case "run":
		if c.Storage.InputRoot == "" {
			problems = append(problems, "storage.input_root is required")
		}
		if c.Storage.OutputRoot == "" {
			problems = append(problems, "storage.output_root is required")
		}
		if c.Vision.Concurrency < 1 || c.Vision.Concurrency > 16 {
			problems = append(problems, "vision.concurrency must be between 1 and 16")
		}
	case "folders":
		if c.Storage.InputRoot == "" {
			problems = append(problems, "storage.input_root is required")
		}
	case "validate":
		if c.Storage.OutputRoot == "" {
			problems = append(problems, "storage.output_root is required")
		}
	case "runs":
		if c.History.Path == "" {
			problems = append(problems, "history.path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
