// Package config provides configuration for the visualization studio.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
)

// Config holds the studio configuration.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// Static files served at / and used as the remote tier of context resolution
	StaticDir     string        `yaml:"static_dir"`
	RemoteBaseURL string        `yaml:"remote_base_url"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"`

	// Editable server documents
	DocsDir   string            `yaml:"docs_dir"`
	Documents []domain.Document `yaml:"documents"`

	// Gemini settings
	ChatModel     string `yaml:"chat_model"`
	ImageModel    string `yaml:"image_model"`
	GeminiBaseURL string `yaml:"gemini_base_url"`
	Mode          string `yaml:"mode"` // gemini.ModeMock selects the offline client

	// Generation policy (rego); empty uses the built-in policy
	PolicyPath string `yaml:"policy_path"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPPort:      8080,
		DatabaseURL:   "file:vizstudio.db?cache=shared&mode=rwc",
		StaticDir:     "public",
		RemoteTimeout: 5 * time.Second,
		DocsDir:       "docs",
		ChatModel:     "gemini-3-pro-preview",
		ImageModel:    "gemini-3-pro-image-preview",
		LogLevel:      "info",
	}
}

// Load builds the configuration: defaults, then the optional YAML file, then
// .env and process environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg.applyEnv()
	if len(cfg.Documents) == 0 {
		cfg.Documents = DefaultDocuments(cfg.DocsDir)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPPort = getEnvInt("HTTP_PORT", c.HTTPPort)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.StaticDir = getEnv("STATIC_DIR", c.StaticDir)
	c.RemoteBaseURL = getEnv("REMOTE_BASE_URL", c.RemoteBaseURL)
	c.RemoteTimeout = time.Duration(getEnvInt("REMOTE_TIMEOUT_MS", int(c.RemoteTimeout/time.Millisecond))) * time.Millisecond
	c.DocsDir = getEnv("DOCS_DIR", c.DocsDir)
	c.ChatModel = getEnv("CHAT_MODEL", c.ChatModel)
	c.ImageModel = getEnv("IMAGE_MODEL", c.ImageModel)
	c.GeminiBaseURL = getEnv("GEMINI_BASE_URL", c.GeminiBaseURL)
	c.Mode = getEnv("VIZ_MODE", c.Mode)
	c.PolicyPath = getEnv("POLICY_PATH", c.PolicyPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// DefaultDocuments returns the editable documents rooted at dir.
func DefaultDocuments(dir string) []domain.Document {
	return []domain.Document{
		{ID: "facility", Name: "Facility Specification (Hebrew)", Path: filepath.Join(dir, "pbf_facility_spec.md")},
		{ID: "company", Name: "Company Context (English)", Path: filepath.Join(dir, "PBF_COMPANY_CONTEXT.md")},
		{ID: "context", Name: "AI Generation Context", Path: filepath.Join(dir, "context.md")},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
