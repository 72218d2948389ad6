package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/structeng/cfst-extractor/internal/pageselect"
)

// Config holds all application configuration.
type Config struct {
	LLM        LLMConfig         `yaml:"llm"`
	Raster     RasterConfig      `yaml:"raster"`
	Selection  pageselect.Config `yaml:"page_selection"`
	Archive    ArchiveConfig     `yaml:"archive"`
	Processing ProcessingConfig  `yaml:"processing"`
}

// LLMConfig holds vision-model API configuration.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"-"` // env only, never stored in a file
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	MaxRetries  int           `yaml:"max_retries"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RasterConfig holds PDF rasterization configuration.
type RasterConfig struct {
	Pdftoppm string `yaml:"pdftoppm"`
	DPI      int    `yaml:"dpi"`
}

// ArchiveConfig holds dataset-repository configuration.
type ArchiveConfig struct {
	DBPath     string `yaml:"db_path"`
	ArchiveDir string `yaml:"archive_dir"`
}

// ProcessingConfig holds batch-processing configuration.
type ProcessingConfig struct {
	Workers int `yaml:"workers"`
}

// LoadConfig builds configuration from environment variables, overlaid by an
// optional YAML file. Every omitted key keeps its built-in default.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		LLM: LLMConfig{
			BaseURL:     getEnv("CFST_API_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("CFST_MODEL", "gpt-4o"),
			APIKey:      getEnv("CFST_API_KEY", ""),
			Temperature: getEnvAsFloat32("CFST_TEMPERATURE", 0.1),
			MaxTokens:   getEnvAsInt("CFST_MAX_TOKENS", 8192),
			MaxRetries:  getEnvAsInt("CFST_MAX_RETRIES", 3),
			Timeout:     getEnvAsDuration("CFST_API_TIMEOUT", 120*time.Second),
		},
		Raster: RasterConfig{
			Pdftoppm: getEnv("CFST_PDFTOPPM", "pdftoppm"),
			DPI:      getEnvAsInt("CFST_IMAGE_DPI", 150),
		},
		Archive: ArchiveConfig{
			DBPath:     getEnv("CFST_ARCHIVE_DB", "cfst-dataset.db"),
			ArchiveDir: getEnv("CFST_ARCHIVE_DIR", "archive"),
		},
		Processing: ProcessingConfig{
			Workers: getEnvAsInt("CFST_WORKERS", 4),
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate checks the loaded configuration once, up front.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "CFST_API_KEY is required", ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError("CONFIG_ERROR", "model name is required", ErrInvalidInput)
	}
	if c.Raster.DPI < 72 || c.Raster.DPI > 600 {
		return NewAppError("CONFIG_ERROR",
			fmt.Sprintf("image DPI %d outside supported range 72-600", c.Raster.DPI), ErrInvalidInput)
	}
	if c.Processing.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "workers must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
