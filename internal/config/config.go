// File: internal/config/config.go
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	WebhookTimeout  time.Duration `yaml:"webhook_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type OTPConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	IssueLimit  int           `yaml:"issue_limit"`
	IssueWindow time.Duration `yaml:"issue_window"`
}

type PaymentConfig struct {
	WebhookSecret   string `yaml:"webhook_secret"`
	SignatureHeader string `yaml:"signature_header"`
}

type SMSConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	SenderID string `yaml:"sender_id"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
	CookieDomain string        `yaml:"cookie_domain"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	OTP      OTPConfig      `yaml:"otp"`
	Payment  PaymentConfig  `yaml:"payment"`
	SMS      SMSConfig      `yaml:"sms"`
	Auth     AuthConfig     `yaml:"auth"`

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
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.WebhookTimeout <= 0 {
		cfg.HTTP.WebhookTimeout = 15 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.OTP.TTL <= 0 {
		cfg.OTP.TTL = 10 * time.Minute
	}
	if cfg.OTP.IssueLimit <= 0 {
		cfg.OTP.IssueLimit = 5
	}
	if cfg.OTP.IssueWindow <= 0 {
		cfg.OTP.IssueWindow = time.Hour
	}
	if cfg.Payment.SignatureHeader == "" {
		cfg.Payment.SignatureHeader = "X-Gateway-Signature"
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 30 * time.Minute
	}
	cfg.Runtime.Dev = dev

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database.url is required")
	}
	if cfg.Payment.WebhookSecret == "" {
		return nil, fmt.Errorf("payment.webhook_secret is required")
	}
	return &cfg, nil
}

// ParseFlags reads the standard -config/-dev flags and loads the file.
func ParseFlags() (*Config, error) {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	dev := flag.Bool("dev", false, "development mode")
	flag.Parse()
	return LoadConfig(*cfgPath, *dev)
}
