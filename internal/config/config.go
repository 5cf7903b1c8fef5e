// Package config handles application configuration using Viper.
// Defaults, a YAML file, and BOOKFORGE_-prefixed environment variables are
// merged in that priority order and unmarshaled into typed structs.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Generation GenerationConfig `mapstructure:"generation"`
	Quality    QualityConfig    `mapstructure:"quality"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	ArtifactDir  string `mapstructure:"artifact_dir"`
	OutputDir    string `mapstructure:"output_dir"`
}

type AuthConfig struct {
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProvidersConfig selects and configures the concrete adapters behind the
// generation ports. An empty API key disables that provider.
type ProvidersConfig struct {
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	// PageProvider picks the content-page backend: "gemini" or "openai".
	PageProvider string `mapstructure:"page_provider"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// GenerationConfig holds the pipeline knobs.
type GenerationConfig struct {
	Concurrency  int     `mapstructure:"concurrency"`
	Vectorize    bool    `mapstructure:"vectorize"`
	Export       string  `mapstructure:"export"`
	CoverWidth   int     `mapstructure:"cover_width"`
	CoverHeight  int     `mapstructure:"cover_height"`
	PageWidth    int     `mapstructure:"page_width"`
	PageHeight   int     `mapstructure:"page_height"`
	PageDPI      int     `mapstructure:"page_dpi"`
	TrimWidthIn  float64 `mapstructure:"trim_width_in"`
	TrimHeightIn float64 `mapstructure:"trim_height_in"`
	CleanupPages bool    `mapstructure:"cleanup_pages"`
}

// QualityConfig holds the validator thresholds.
type QualityConfig struct {
	MinContentPixels int `mapstructure:"min_content_pixels"`
	MinCoverPixels   int `mapstructure:"min_cover_pixels"`
	MaxPixels        int `mapstructure:"max_pixels"`
	MinDPI           int `mapstructure:"min_dpi"`
	MinPages         int `mapstructure:"min_pages"`
	MaxPages         int `mapstructure:"max_pages"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.database_path", "./storage/bookforge.db")
	v.SetDefault("storage.artifact_dir", "./storage/files")
	v.SetDefault("storage.output_dir", "./storage/books")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("providers.gemini.model", "gemini-2.5-flash-image")
	v.SetDefault("providers.openai.model", "gpt-image-1")
	v.SetDefault("providers.anthropic.model", "claude-sonnet-4-5")
	v.SetDefault("providers.page_provider", "gemini")
	v.SetDefault("generation.concurrency", 4)
	v.SetDefault("generation.vectorize", false)
	v.SetDefault("generation.export", "web")
	v.SetDefault("generation.cover_width", 1600)
	v.SetDefault("generation.cover_height", 1600)
	v.SetDefault("generation.page_width", 1024)
	v.SetDefault("generation.page_height", 1024)
	v.SetDefault("generation.page_dpi", 300)
	v.SetDefault("generation.trim_width_in", 8.5)
	v.SetDefault("generation.trim_height_in", 8.5)
	v.SetDefault("generation.cleanup_pages", true)
	v.SetDefault("quality.min_content_pixels", 1024)
	v.SetDefault("quality.min_cover_pixels", 1600)
	v.SetDefault("quality.max_pixels", 8192)
	v.SetDefault("quality.min_dpi", 300)
	v.SetDefault("quality.min_pages", 4)
	v.SetDefault("quality.max_pages", 64)
	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("log.level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// A missing config file is fine — defaults plus env cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// BOOKFORGE_SERVER_PORT=9090 overrides server.port, and so on.
	v.SetEnvPrefix("BOOKFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
