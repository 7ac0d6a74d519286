package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"forecastpipe/internal/dataprocessing"
	"forecastpipe/internal/exporter"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Schedule  ScheduleConfig  `yaml:"schedule" envconfig:"SCHEDULE"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pipeline.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// StorageConfig selects and tunes the object store backend
type StorageConfig struct {
	Backend   string          `yaml:"backend" envconfig:"BACKEND" default:"filesystem"`
	Root      string          `yaml:"root" envconfig:"ROOT" default:"data"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" envconfig:"RPS" default:"0"`
	Burst int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// PipelineConfig contains the transform and evaluate settings
type PipelineConfig struct {
	FeedKey       string          `yaml:"feed_key" envconfig:"FEED_KEY" default:"rearc-covid-19-testing-data/csv/states_daily/states_daily.csv"`
	Layout        exporter.Layout `yaml:"layout" envconfig:"LAYOUT"`
	Columns       ColumnsConfig   `yaml:"columns" envconfig:"COLUMNS"`
	RetentionDays int             `yaml:"retention_days" envconfig:"RETENTION_DAYS" default:"5"`
	HistoryLimit  int             `yaml:"history_limit" envconfig:"HISTORY_LIMIT" default:"50"`
	Timeout       time.Duration   `yaml:"timeout" envconfig:"TIMEOUT" default:"30m"`
}

// ColumnsConfig holds the zero-based feed column offsets
type ColumnsConfig struct {
	Date    int `yaml:"date" envconfig:"DATE" default:"0"`
	Item    int `yaml:"item" envconfig:"ITEM" default:"1"`
	Target  int `yaml:"target" envconfig:"TARGET" default:"2"`
	Related int `yaml:"related" envconfig:"RELATED" default:"17"`
}

// TelemetryConfig contains metric publishing and tracing configuration
type TelemetryConfig struct {
	Namespace      string  `yaml:"namespace" envconfig:"NAMESPACE" default:"ForecastPipeline"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1"`
	SQLitePath     string  `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// ScheduleConfig contains the cron expressions used in serve mode
type ScheduleConfig struct {
	Enabled    bool   `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	Transform  string `yaml:"transform" envconfig:"TRANSFORM" default:"0 0 6 * * *"`
	Evaluate   string `yaml:"evaluate" envconfig:"EVALUATE" default:"0 30 6 * * *"`
	RunOnStart bool   `yaml:"run_on_start" envconfig:"RUN_ON_START" default:"false"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Address         string        `yaml:"address" envconfig:"ADDRESS" default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// Load loads configuration from environment variables and an optional
// YAML file. An empty filePath falls back to FCP_CONFIG_FILE and then to the
// usual locations.
func Load(filePath string) (*Config, error) {
	var envCfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &envCfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg := envCfg
	if filePath == "" {
		filePath = getConfigFilePath()
	}
	if filePath != "" {
		fileCfg, err := loadFromFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, envCfg, *Default())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file on top of the defaults
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
// A field counts as set in the environment when it differs from its default.
func mergeConfigs(fileConfig, envConfig, defaults Config) Config {
	merged := fileConfig
	mergeValue(reflect.ValueOf(&merged).Elem(), reflect.ValueOf(envConfig), reflect.ValueOf(defaults))
	return merged
}

func mergeValue(dst, env, def reflect.Value) {
	if dst.Kind() == reflect.Struct {
		for i := 0; i < dst.NumField(); i++ {
			if !dst.Field(i).CanSet() {
				continue
			}
			mergeValue(dst.Field(i), env.Field(i), def.Field(i))
		}
		return
	}
	if !reflect.DeepEqual(env.Interface(), def.Interface()) {
		dst.Set(env)
	}
}

// ColumnLayout converts the configured offsets for the transformer.
func (c *Config) ColumnLayout() dataprocessing.ColumnLayout {
	return dataprocessing.ColumnLayout{
		Date:    c.Pipeline.Columns.Date,
		Item:    c.Pipeline.Columns.Item,
		Target:  c.Pipeline.Columns.Target,
		Related: c.Pipeline.Columns.Related,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "filesystem":
		if c.Storage.Root == "" {
			return fmt.Errorf("storage root is required for the filesystem backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
	if c.Storage.RateLimit.RPS < 0 {
		return fmt.Errorf("storage rate limit must not be negative")
	}

	if c.Pipeline.FeedKey == "" {
		return fmt.Errorf("pipeline feed key is required")
	}
	if c.Pipeline.RetentionDays < 1 {
		return fmt.Errorf("retention days must be at least 1, got %d", c.Pipeline.RetentionDays)
	}
	if c.Pipeline.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1, got %d", c.Pipeline.HistoryLimit)
	}
	if err := c.ColumnLayout().Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Telemetry.Namespace) == "" {
		return fmt.Errorf("telemetry namespace is required")
	}
	switch c.Telemetry.MetricExporter {
	case "prometheus", "none":
	default:
		return fmt.Errorf("unsupported metric exporter: %s", c.Telemetry.MetricExporter)
	}
	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}

	if c.Schedule.Enabled && (c.Schedule.Transform == "" || c.Schedule.Evaluate == "") {
		return fmt.Errorf("schedule enabled but transform or evaluate expression is empty")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	// Always JSON, as everywhere else in the service
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/pipeline.log",
		},
		Storage: StorageConfig{
			Backend:   "filesystem",
			Root:      "data",
			RateLimit: RateLimitConfig{Burst: 10},
		},
		Pipeline: PipelineConfig{
			FeedKey:       DefaultFeedKey,
			Layout:        exporter.DefaultLayout(),
			Columns:       ColumnsConfig{Date: 0, Item: 1, Target: 2, Related: 17},
			RetentionDays: DefaultRetentionDays,
			HistoryLimit:  DefaultHistoryLimit,
			Timeout:       30 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Namespace:      DefaultNamespace,
			MetricExporter: "prometheus",
			TraceExporter:  "none",
			SampleRatio:    1,
			Environment:    "development",
		},
		Schedule: ScheduleConfig{
			Enabled:   true,
			Transform: DefaultTransformSchedule,
			Evaluate:  DefaultEvaluateSchedule,
		},
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}
