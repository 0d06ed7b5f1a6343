// Package config handles SagarMitra configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/sagarmitra/config.yaml, /etc/sagarmitra/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sagarmitra", "config.yaml"))
	}

	paths = append(paths, "/etc/sagarmitra/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all SagarMitra configuration.
type Config struct {
	Listen   ListenConfig   `yaml:"listen"`
	Models   ModelsConfig   `yaml:"models"`
	Agent    AgentConfig    `yaml:"agent"`
	Weather  WeatherConfig  `yaml:"weather"`
	DataDir  string         `yaml:"data_dir"`
	LogLevel string         `yaml:"log_level"`
}

// ListenConfig defines the API server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port"`
}

// ModelsConfig defines LLM provider settings. Providers are tried in the
// order gemini, openai, anthropic; only configured providers join the
// failover chain.
type ModelsConfig struct {
	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

// GeminiConfig defines Google Gemini API settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: gemini-2.0-flash
}

// OpenAIConfig defines settings for any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"` // Empty = api.openai.com
	Model   string `yaml:"model"`    // Default: gpt-4o-mini
}

// AnthropicConfig defines Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: claude-sonnet-4-20250514
}

// AgentConfig tunes the orchestration loop and memory windows.
type AgentConfig struct {
	// ShortTermLimit is the number of recent messages kept verbatim in
	// model context. Older messages are folded into the rolling summary.
	ShortTermLimit int `yaml:"short_term_limit"`
	// MaxToolRounds caps the model⇄tool loop per turn. When exceeded the
	// turn terminates with a canned "could not complete" response.
	MaxToolRounds int `yaml:"max_tool_rounds"`
	// DefaultLanguage is used when a conversation has no language set.
	DefaultLanguage string `yaml:"default_language"`
}

// WeatherConfig defines the OpenWeatherMap integration.
type WeatherConfig struct {
	APIKey string `yaml:"api_key"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen:  ListenConfig{Port: 8080},
		DataDir: "data",
		Agent: AgentConfig{
			ShortTermLimit:  10,
			MaxToolRounds:   6,
			DefaultLanguage: "en",
		},
		Models: ModelsConfig{
			Gemini:    GeminiConfig{Model: "gemini-2.0-flash"},
			OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
			Anthropic: AnthropicConfig{Model: "claude-sonnet-4-20250514"},
		},
	}
}
