// Package config loads application configuration from an optional
// config.yaml plus IMDB_-prefixed environment variables, and owns the
// global zap logger.
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
	Build BuildConfig `yaml:"build" mapstructure:"build"`
	Query QueryConfig `yaml:"query" mapstructure:"query"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
}

// BuildConfig configures store builds.
type BuildConfig struct {
	NProc       int    `yaml:"nproc" mapstructure:"nproc"`
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// QueryConfig configures query serving. NProc 0 means one worker per
// measure.
type QueryConfig struct {
	NProc int `yaml:"nproc" mapstructure:"nproc"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("IMDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("build.nproc", 1)
	v.SetDefault("build.metrics_addr", "")
	v.SetDefault("query.nproc", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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
