// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token      string  `yaml:"token"`
	Mode       string  `yaml:"mode"` // polling | webhook (future)
	Workers    int     `yaml:"workers"`
	OwnerID    int64   `yaml:"owner_id"`
	AllowedIDs []int64 `yaml:"allowed_ids"` // users permitted to issue payment commands
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WebConfig struct {
	Enabled       bool          `yaml:"enabled"` // serve the setup form instead of requiring a complete file
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	AdminPassword string        `yaml:"admin_password"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ECPayConfig is the merchant credential set and protocol constants for the
// checkout gateway.
type ECPayConfig struct {
	MerchantID        string `yaml:"merchant_id"`
	HashKey           string `yaml:"hash_key"`
	HashIV            string `yaml:"hash_iv"`
	PaymentType       string `yaml:"payment_type"`
	EncryptType       int    `yaml:"encrypt_type"`
	ExpireDays        int    `yaml:"expire_days"`
	ReturnURL         string `yaml:"return_url"`
	ClientRedirectURL string `yaml:"client_redirect_url"`
	Sandbox           bool   `yaml:"sandbox"`
}

// Complete reports whether the merchant credentials are usable. Placeholder
// values from a template config count as missing.
func (c ECPayConfig) Complete() bool {
	for _, v := range []string{c.MerchantID, c.HashKey, c.HashIV} {
		if v == "" || strings.HasPrefix(v, "YOUR_") {
			return false
		}
	}
	return true
}

type Config struct {
	Bot   BotConfig   `yaml:"bot"`
	Log   LogConfig   `yaml:"log"`
	Web   WebConfig   `yaml:"web"`
	Redis RedisConfig `yaml:"redis"`
	ECPay ECPayConfig `yaml:"ecpay"`

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
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if !cfg.ECPay.Complete() && !cfg.Web.Enabled {
		return nil, errors.New("ecpay credentials are incomplete; fill merchant_id/hash_key/hash_iv or enable web setup")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Web.Host == "" {
		cfg.Web.Host = "127.0.0.1"
	}
	if cfg.Web.Port <= 0 {
		cfg.Web.Port = 5000
	}
	if cfg.Web.SessionTTL <= 0 {
		cfg.Web.SessionTTL = 30 * time.Minute
	}
	if cfg.ECPay.PaymentType == "" {
		cfg.ECPay.PaymentType = "aio"
	}
	if cfg.ECPay.EncryptType <= 0 {
		cfg.ECPay.EncryptType = 1
	}
	if cfg.ECPay.ExpireDays <= 0 {
		cfg.ECPay.ExpireDays = 7
	}
}
