package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/hublun/MDConverter/core"
)

// resolveConfig merges defaults, the config file, environment, and flag
// overrides into one immutable Config snapshot. Nothing downstream
// re-reads viper.
func resolveConfig() (core.Config, error) {
	defaults := core.DefaultConfig()
	viper.SetDefault("output_dir", defaults.OutputDir)
	viper.SetDefault("images_dir", defaults.ImagesDir)
	viper.SetDefault("format", defaults.Format)
	viper.SetDefault("preserve_images", defaults.PreserveImages)
	viper.SetDefault("clean_html", defaults.CleanHTML)
	viper.SetDefault("add_metadata", defaults.AddMetadata)
	viper.SetDefault("log_level", defaults.LogLevel)

	var cfg core.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return core.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.ApplyDefaults()
	cfg.Logger = newLogger(cfg.LogLevel)
	return cfg, nil
}

// newLogger builds the conversion-scoped logger the pipeline carries.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
