package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Whitelabel             string `yaml:"whitelabel" env:"WHITELABEL_ENV"`
	WalletConnectProjectID string `yaml:"wallet_connect_project_id" env:"WALLET_CONNECT_PROJECT_ID"`
	Environment            string `yaml:"environment" env:"RAILWAY_ENVIRONMENT_NAME"`

	API       APIConfig       `yaml:"api"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	KYC       KYCConfig       `yaml:"kyc"`
	Storage   StorageConfig   `yaml:"storage"`
	Session   SessionConfig   `yaml:"session"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type APIConfig struct {
	Addr           string        `yaml:"addr" env:"CLAIM_API_ADDR"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CLAIM_API_REQUEST_TIMEOUT"`
}

// SheetsConfig points the grant directory at a spreadsheet. Credentials are
// checked per request so a missing key surfaces as a 500 on /api/grants
// instead of refusing to start.
type SheetsConfig struct {
	APIKey  string        `yaml:"api_key" env:"GOOGLE_SHEETS_API_KEY"`
	SheetID string        `yaml:"sheet_id" env:"GOOGLE_SHEETS_ID"`
	BaseURL string        `yaml:"base_url" env:"GOOGLE_SHEETS_BASE_URL"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" env:"GOOGLE_SHEETS_RETRY_ATTEMPTS"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"GOOGLE_SHEETS_RETRY_DELAY"`
	Multiplier   float64       `yaml:"multiplier"`
}

type KYCConfig struct {
	// APIKeys is the raw "ALIAS:key,ALIAS:key" list.
	APIKeys string        `yaml:"api_keys" env:"SYNAPS_API_KEY_PER_WHITELABEL"`
	BaseURL string        `yaml:"base_url" env:"SYNAPS_BASE_URL"`
	Timeout time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	Endpoint   string `yaml:"endpoint" env:"S3_STORAGE_ENDPOINT"`
	Port       int    `yaml:"port" env:"S3_STORAGE_PORT"`
	AccessKey  string `yaml:"access_key" env:"S3_STORAGE_ACCESS_KEY"`
	SecretKey  string `yaml:"secret_key" env:"S3_STORAGE_SECRET_KEY"`
	BucketName string `yaml:"bucket_name" env:"S3_STORAGE_BUCKET_NAME"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret" env:"CLAIM_SESSION_SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"CLAIM_SESSION_TTL"`
	// MaxMessageAge bounds how old the "Issued At" line of a signed
	// sign-in message may be.
	MaxMessageAge time.Duration `yaml:"max_message_age"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled" env:"TELEGRAM_ENABLED"`
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"CLAIM_OTEL_ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"CLAIM_OTEL_ENDPOINT"`
	ServiceName string `yaml:"service_name"`
}

func Default() Config {
	return Config{
		Whitelabel: "OPTIMISM",
		API: APIConfig{
			Addr:           ":8080",
			RequestTimeout: 60 * time.Second,
		},
		Sheets: SheetsConfig{
			BaseURL: "https://sheets.googleapis.com",
			Timeout: 15 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:  3,
				InitialDelay: time.Second,
				Multiplier:   2,
			},
		},
		KYC: KYCConfig{
			BaseURL: "https://api.synaps.io",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			TTL:           24 * time.Hour,
			MaxMessageAge: 10 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			ServiceName: "grant-claims",
		},
	}
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables on top of the file values. Unset
// variables leave the current value untouched.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// PublicBaseURL is where project images in the bucket are served from, or
// "" when storage is not configured. Credentials are never part of it.
func (s StorageConfig) PublicBaseURL() string {
	host := strings.TrimRight(strings.TrimSpace(s.Endpoint), "/")
	if host == "" || s.BucketName == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	if s.Port > 0 && s.Port != 443 {
		host += ":" + strconv.Itoa(s.Port)
	}
	return host + "/" + url.PathEscape(s.BucketName)
}
