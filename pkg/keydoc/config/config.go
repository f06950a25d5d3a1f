// Package config loads the resolver's settings file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk settings shape.
type Config struct {
	Paths Paths `yaml:"paths"`
	AI    AI    `yaml:"ai"`
}

// Paths names the directories resources are resolved against.
type Paths struct {
	Templates string `yaml:"templates"`
	JSON      string `yaml:"json"`
	Excel     string `yaml:"excel"`
	Prompts   string `yaml:"prompts"`
}

// AI configures the summarization backend.
type AI struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
	Words    int    `yaml:"words"`
}

// Default returns the settings used when no config file exists: every
// resource directory is the working directory.
func Default() Config {
	return Config{
		Paths: Paths{Templates: ".", JSON: ".", Excel: ".", Prompts: "."},
		AI:    AI{Provider: "gemini", Words: 100},
	}
}

// Load reads the config at path, layering it over the defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.AI.Words <= 0 {
		cfg.AI.Words = 100
	}
	return cfg, nil
}
