// Package config loads the tool configuration from file, environment and
// flags, plus the TOML glossary and blacklist inputs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/officetrans/go-office-translator/pkg/translation"
)

// Config holds all translator settings.
type Config struct {
	SourceLang string `mapstructure:"source_lang"`
	TargetLang string `mapstructure:"target_lang"`

	Provider string `mapstructure:"provider"` // openai or identity
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`

	// Context is free-text background passed with every translation request.
	Context string `mapstructure:"context"`

	GlossaryPath  string `mapstructure:"glossary_path"`
	BlacklistPath string `mapstructure:"blacklist_path"`

	RequestTimeout    int `mapstructure:"request_timeout"`     // seconds
	MaxAttempts       int `mapstructure:"max_attempts"`        // per chunk, first try included
	RetryBaseDelay    int `mapstructure:"retry_base_delay"`    // seconds, doubles per attempt
	InterChunkDelayMS int `mapstructure:"inter_chunk_delay_ms"`

	Debug bool `mapstructure:"debug"`
}

// Load reads configuration. configPath may be empty, in which case
// officetrans.(toml|yaml) is searched in the working directory and
// $HOME/.officetrans. Environment variables with the OFFICETRANS_ prefix
// override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("request_timeout", 300)
	v.SetDefault("max_attempts", 3)
	v.SetDefault("retry_base_delay", 3)
	v.SetDefault("inter_chunk_delay_ms", 500)

	v.SetEnvPrefix("OFFICETRANS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("officetrans")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.officetrans")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the language pair and provider selection.
func (c *Config) Validate() error {
	if c.TargetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if _, err := language.Parse(c.TargetLang); err != nil {
		return fmt.Errorf("invalid target language %q: %w", c.TargetLang, err)
	}
	if c.SourceLang != "" {
		if _, err := language.Parse(c.SourceLang); err != nil {
			return fmt.Errorf("invalid source language %q: %w", c.SourceLang, err)
		}
	}
	switch c.Provider {
	case "openai", "identity":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Provider == "openai" && c.APIKey == "" {
		return fmt.Errorf("api_key is required for the openai provider")
	}
	return nil
}

// RetryPolicy derives the orchestrator retry policy from the config.
func (c *Config) RetryPolicy() translation.RetryPolicy {
	p := translation.DefaultRetryPolicy()
	if c.MaxAttempts > 0 {
		p.MaxAttempts = c.MaxAttempts
	}
	if c.RetryBaseDelay > 0 {
		p.BaseDelay = time.Duration(c.RetryBaseDelay) * time.Second
	}
	if c.InterChunkDelayMS >= 0 {
		p.InterChunkDelay = time.Duration(c.InterChunkDelayMS) * time.Millisecond
	}
	return p
}
