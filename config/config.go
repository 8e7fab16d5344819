package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

const maxWorkers = 32

type Config struct {
	SourceRoot        string `toml:"source_root"`
	TargetRoot        string `toml:"target_root"`
	Workers           int    `toml:"workers"`
	BackgroundQuality int    `toml:"background_quality"`
	CoverQualityPNG   int    `toml:"cover_quality_png"`
	CoverQualityJPEG  int    `toml:"cover_quality_jpeg"`
}

// Load builds the configuration from an optional TOML file, then
// environment overrides, then defaults. path may be empty.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.SourceRoot = getEnv("ASSETCONV_SOURCE", cfg.SourceRoot)
	cfg.TargetRoot = getEnv("ASSETCONV_TARGET", cfg.TargetRoot)
	cfg.Workers = getEnvAsInt("ASSETCONV_WORKERS", cfg.Workers)

	if cfg.BackgroundQuality == 0 {
		cfg.BackgroundQuality = 85
	}
	if cfg.CoverQualityPNG == 0 {
		cfg.CoverQualityPNG = 90
	}
	if cfg.CoverQualityJPEG == 0 {
		cfg.CoverQualityJPEG = 75
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers()
	}

	return cfg, nil
}

// DefaultWorkers is the static concurrency bound: twice the available
// parallelism, capped at 32.
func DefaultWorkers() int {
	w := 2 * runtime.NumCPU()
	if w > maxWorkers {
		w = maxWorkers
	}
	return w
}

// Validate checks the configuration after any flag overrides have been
// applied.
func (c *Config) Validate() error {
	if c.SourceRoot == "" {
		return errors.New("source root is not set")
	}
	if c.TargetRoot == "" {
		return errors.New("target root is not set")
	}
	if c.SourceRoot == c.TargetRoot {
		return errors.New("source and target roots must differ")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
