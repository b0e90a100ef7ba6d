package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lumen-ai/lumen/registry"
)

// Config is the on-disk configuration at ~/.lumen/config.yaml. Every field
// is optional; a missing file means a zero config.
type Config struct {
	DataDir     *string           `yaml:"data_dir,omitempty"`
	APIKeys     map[string]string `yaml:"api_keys,omitempty"` // provider id -> key
	ImageModel  *string           `yaml:"image_model,omitempty"`
	AspectRatio *string           `yaml:"aspect_ratio,omitempty"`
	Voice       *string           `yaml:"voice,omitempty"`
}

// keyEnvVars maps providers to the environment variables consulted when the
// config file carries no key for them.
var keyEnvVars = map[string]string{
	registry.ProviderGemini:     "GEMINI_API_KEY",
	registry.ProviderGroq:       "GROQ_API_KEY",
	registry.ProviderDeepSeek:   "DEEPSEEK_API_KEY",
	registry.ProviderOpenRouter: "OPENROUTER_API_KEY",
}

func configHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lumen"
	}
	return filepath.Join(home, ".lumen")
}

func loadConfig() (*Config, error) {
	return loadConfigFrom(filepath.Join(configHome(), "config.yaml"))
}

// loadConfigFrom reads a config file. A missing file is not an error; a
// malformed one is, so a typo never silently drops the user's keys.
func loadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		// Unreadable config is treated like a missing one.
		return &Config{}, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// resolveKeys builds the per-provider credential table. Presence in the map
// is what the dispatcher checks: Pollinations is always present with an
// empty key (public endpoint), other providers appear only when a key was
// found in the config or the environment.
func resolveKeys(cfg *Config) map[string]string {
	keys := map[string]string{
		registry.ProviderPollinations: "",
	}
	for provider, envVar := range keyEnvVars {
		if k := cfg.APIKeys[provider]; k != "" {
			keys[provider] = k
			continue
		}
		if k := os.Getenv(envVar); k != "" {
			keys[provider] = k
		}
	}
	return keys
}

func (c *Config) dataDir() string {
	if c.DataDir != nil && *c.DataDir != "" {
		return *c.DataDir
	}
	return configHome()
}

func (c *Config) imageModel() string {
	if c.ImageModel != nil && *c.ImageModel != "" {
		return *c.ImageModel
	}
	return registry.DefaultImageModelID
}

func (c *Config) aspectRatio() string {
	if c.AspectRatio != nil && *c.AspectRatio != "" {
		return *c.AspectRatio
	}
	return registry.DefaultAspectRatioID
}

func (c *Config) voice() string {
	if c.Voice != nil && *c.Voice != "" {
		return *c.Voice
	}
	return registry.DefaultVoiceID
}
