package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Backtest   BacktestConfig   `yaml:"backtest"`
	Sync       SyncConfig       `yaml:"sync"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Web        WebConfig        `yaml:"web"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type OpenRouterConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	NamingModel    string  `yaml:"naming_model"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
	HistoryWindow  int     `yaml:"history_window"`
}

type BacktestConfig struct {
	StartingEquity float64 `yaml:"starting_equity"`
	DefaultSymbol  string  `yaml:"default_symbol"`
}

type SyncConfig struct {
	PollInterval     string `yaml:"poll_interval"`
	AutosaveDebounce string `yaml:"autosave_debounce"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.OpenRouter.BaseURL == "" {
		cfg.OpenRouter.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.OpenRouter.Model == "" {
		cfg.OpenRouter.Model = "openai/gpt-3.5-turbo"
	}
	if cfg.OpenRouter.NamingModel == "" {
		cfg.OpenRouter.NamingModel = cfg.OpenRouter.Model
	}
	if cfg.OpenRouter.TimeoutSeconds == 0 {
		cfg.OpenRouter.TimeoutSeconds = 120
	}
	if cfg.OpenRouter.MaxTokens == 0 {
		cfg.OpenRouter.MaxTokens = 2000
	}
	if cfg.OpenRouter.Temperature == 0 {
		cfg.OpenRouter.Temperature = 0.05
	}
	if cfg.OpenRouter.HistoryWindow == 0 {
		cfg.OpenRouter.HistoryWindow = 2
	}
	if cfg.Backtest.StartingEquity == 0 {
		cfg.Backtest.StartingEquity = 10000
	}
	if cfg.Backtest.DefaultSymbol == "" {
		cfg.Backtest.DefaultSymbol = "EURUSD"
	}
	if cfg.Sync.PollInterval == "" {
		cfg.Sync.PollInterval = "5s"
	}
	if cfg.Sync.AutosaveDebounce == "" {
		cfg.Sync.AutosaveDebounce = "2s"
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.OpenRouter.APIKey == "" {
		return fmt.Errorf("openrouter.api_key is required")
	}
	if _, err := time.ParseDuration(c.Sync.PollInterval); err != nil {
		return fmt.Errorf("invalid sync.poll_interval %q: %w", c.Sync.PollInterval, err)
	}
	if _, err := time.ParseDuration(c.Sync.AutosaveDebounce); err != nil {
		return fmt.Errorf("invalid sync.autosave_debounce %q: %w", c.Sync.AutosaveDebounce, err)
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

func (c *Config) CompletionTimeout() time.Duration {
	return time.Duration(c.OpenRouter.TimeoutSeconds) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	d, _ := time.ParseDuration(c.Sync.PollInterval)
	return d
}

func (c *Config) AutosaveDebounce() time.Duration {
	d, _ := time.ParseDuration(c.Sync.AutosaveDebounce)
	return d
}
