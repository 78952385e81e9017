// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"` // external base URL used to build payment return URLs
	APIKey    string `yaml:"api_key"`    // bearer key protecting the operator endpoints
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"` // optional; discovered via getUpdates when 0
}

type YooKassaConfig struct {
	ShopID    string `yaml:"shop_id"`
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"` // override for tests; defaults to the production API
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RetryConfig struct {
	Delay       time.Duration `yaml:"delay"`        // wait between recreation attempts
	MaxAttempts int           `yaml:"max_attempts"` // total attempts per task
	Tick        time.Duration `yaml:"tick"`         // how often the scheduler scans for due tasks
	Workers     int           `yaml:"workers"`      // pool size executing due tasks
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Telegram TelegramConfig `yaml:"telegram"`
	YooKassa YooKassaConfig `yaml:"yookassa"`
	Redis    RedisConfig    `yaml:"redis"`
	Retry    RetryConfig    `yaml:"retry"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.YooKassa.BaseURL == "" {
		cfg.YooKassa.BaseURL = "https://api.yookassa.ru/v3"
	}
	if cfg.Retry.Delay <= 0 {
		cfg.Retry.Delay = 24 * time.Hour
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.Tick <= 0 {
		cfg.Retry.Tick = 30 * time.Second
	}
	if cfg.Retry.Workers <= 0 {
		cfg.Retry.Workers = 4
	}

	// Minimal validation
	if cfg.Telegram.Token == "" {
		return nil, errors.New("telegram.token is required")
	}
	if cfg.YooKassa.ShopID == "" || cfg.YooKassa.SecretKey == "" {
		return nil, errors.New("yookassa.shop_id and yookassa.secret_key are required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
