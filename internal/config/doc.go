// Package config provides centralized configuration management for the
// pipeline. It handles loading configuration from multiple sources and
// validation.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FCP_<SECTION>_<FIELD>:
//
//	FCP_LOGGING_LEVEL=debug
//	FCP_STORAGE_ROOT=/var/lib/forecastpipe
//	FCP_PIPELINE_RETENTION_DAYS=7
//	FCP_TELEMETRY_SQLITE_PATH=metrics.db
//
// The configuration file is named by FCP_CONFIG_FILE, or found as
// config.yaml or configs/config.yaml in the working directory.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
