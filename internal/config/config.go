// Package config loads the pipeline configuration: thresholds, reference
// file paths, and the optional AI oracle settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is loaded once per pipeline run and passed by value into stage
// constructors. It is never mutated at runtime.
type Config struct {
	Thresholds struct {
		Triage float64 `yaml:"triage"` // auto-approve at or above
		Gap    float64 `yaml:"gap"`    // flag gaps below
	} `yaml:"thresholds"`
	Reference struct {
		Registry string `yaml:"registry"` // unit registry file
		Rules    string `yaml:"rules"`    // hand-authored rule file
	} `yaml:"reference"`
	Ingest struct {
		MaxFileSize int64 `yaml:"max_file_size"`
	} `yaml:"ingest"`
	AI struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"ai"`
	Storage struct {
		Path string `yaml:"path"` // SQLite run store
	} `yaml:"storage"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	var cfg Config
	cfg.Thresholds.Triage = 85
	cfg.Thresholds.Gap = 70
	cfg.Ingest.MaxFileSize = 32 << 20
	cfg.AI.Model = "gemini-1.5-flash"
	cfg.Storage.Path = "specdoc.db"
	return cfg
}

// Load reads a YAML config file, layering .env and SPECDOC_* environment
// variables on top. A missing file yields the defaults; a malformed file is
// an error naming the path.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if key := os.Getenv("SPECDOC_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if provider := os.Getenv("SPECDOC_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if raw := os.Getenv("SPECDOC_TRIAGE_THRESHOLD"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, fmt.Errorf("SPECDOC_TRIAGE_THRESHOLD: %w", err)
		}
		cfg.Thresholds.Triage = v
	}

	if cfg.Thresholds.Triage < 0 || cfg.Thresholds.Triage > 100 {
		return cfg, fmt.Errorf("config %s: thresholds.triage %.1f outside [0,100]", path, cfg.Thresholds.Triage)
	}
	if cfg.Thresholds.Gap < 0 || cfg.Thresholds.Gap > 100 {
		return cfg, fmt.Errorf("config %s: thresholds.gap %.1f outside [0,100]", path, cfg.Thresholds.Gap)
	}
	return cfg, nil
}
