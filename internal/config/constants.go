package config

import (
	"time"

	"forecastpipe/pkg/contracts"
)

// Application constants
const (
	AppName    = "forecastpipe"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. FCP_LOGGING_LEVEL.
	EnvPrefix = "FCP"

	// ConfigFileEnv names an explicit YAML configuration file.
	ConfigFileEnv = "FCP_CONFIG_FILE"

	DefaultFeedKey       = "rearc-covid-19-testing-data/csv/states_daily/states_daily.csv"
	DefaultRetentionDays = 5
	DefaultHistoryLimit  = 50
	DefaultNamespace     = "ForecastPipeline"

	DefaultTransformSchedule = "0 0 6 * * *"
	DefaultEvaluateSchedule  = "0 30 6 * * *"

	DefaultShutdownTimeout = 30 * time.Second
)
