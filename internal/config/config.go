package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/suicidekings/carclub/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	PayPal     PayPalConfig
	Secrets    SecretsConfig
	Email      EmailConfig
	Sentry     SentryConfig
	Webhook    WebhookConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PayPalConfig holds the process-wide fallback credentials used for tenants
// that have no chapter-specific credentials configured. Kept as an explicit,
// clearly labelled default rather than hidden global state so cross-tenant
// fallback is visible at the call site.
type PayPalConfig struct {
	// DefaultClientID/DefaultClientSecret are the fallback credential pair.
	DefaultClientID     string
	DefaultClientSecret string
	DefaultWebhookID    string
	Sandbox             bool
	// APIBase overrides the provider endpoint; derived from Sandbox when empty.
	APIBase string
	Timeout time.Duration
}

type SecretsConfig struct {
	// EncryptionKey is the AES-256 master key for tenant credentials at rest.
	EncryptionKey string
}

type EmailConfig struct {
	Enabled     bool
	APIKey      string
	FromAddress string
	ReplyTo     string
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

// WebhookConfig holds the failure thresholds the health aggregator applies
// to the webhook ledger.
type WebhookConfig struct {
	FailureWarningThreshold int
	FailureErrorThreshold   int
	FailureWindow           time.Duration
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/carclub")

	v.SetEnvPrefix("CARCLUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeAPI))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("paypal.sandbox", true)
	v.SetDefault("paypal.timeout", 30*time.Second)
	v.SetDefault("webhook.failurewarningthreshold", 2)
	v.SetDefault("webhook.failureerrorthreshold", 5)
	v.SetDefault("webhook.failurewindow", 24*time.Hour)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		PayPal: PayPalConfig{
			Sandbox: true,
			Timeout: 30 * time.Second,
		},
		Webhook: WebhookConfig{
			FailureWarningThreshold: 2,
			FailureErrorThreshold:   5,
			FailureWindow:           24 * time.Hour,
		},
	}
}

// GetAPIBase returns the provider endpoint for the configured environment.
func (c PayPalConfig) GetAPIBase() string {
	if c.APIBase != "" {
		return c.APIBase
	}
	if c.Sandbox {
		return "https://api-m.sandbox.paypal.com"
	}
	return "https://api-m.paypal.com"
}

// HasDefaultCredentials reports whether the fallback credential pair is usable.
func (c PayPalConfig) HasDefaultCredentials() bool {
	return c.DefaultClientID != "" && c.DefaultClientSecret != ""
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
