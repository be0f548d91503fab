// Package config layers the ca-balance settings: defaults, an optional YAML
// file, a .env file, environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grez-lucas/ca-balance/internal/scraper/bank/creditagricole"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "CA_BALANCE"

type Config struct {
	Bank      BankConfig
	HTTP      HTTPConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig

	// Account and Password come from the environment only. Either may be
	// empty, in which case the CLI prompts.
	Account  string
	Password string
}

type BankConfig struct {
	Endpoint  string
	OriginURL string
}

type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TelemetryConfig struct {
	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string
}

// ClientOptions turns the bank and HTTP settings into session options.
func (c Config) ClientOptions() []creditagricole.Option {
	return []creditagricole.Option{
		creditagricole.WithEndpoint(c.Bank.Endpoint),
		creditagricole.WithOriginURL(c.Bank.OriginURL),
		creditagricole.WithTimeout(c.HTTP.Timeout),
		creditagricole.WithUserAgent(c.HTTP.UserAgent),
	}
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bank.endpoint", creditagricole.DefaultEndpoint)
	v.SetDefault("bank.origin_url", creditagricole.DefaultOriginURL)
	v.SetDefault("http.timeout", creditagricole.DefaultTimeout)
	v.SetDefault("http.user_agent", creditagricole.DefaultUserAgent)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("telemetry.otlp_endpoint", "")
}

// Load reads the configuration into v and returns it validated. cfgFile may
// be empty, in which case $HOME/.config/ca-balance/config.yaml and
// ./config.yaml are tried. envFiles default to ./.env; a missing .env file is
// not an error.
func Load(v *viper.Viper, cfgFile string, envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".config", "ca-balance"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	cfg := Config{
		Bank: BankConfig{
			Endpoint:  v.GetString("bank.endpoint"),
			OriginURL: v.GetString("bank.origin_url"),
		},
		HTTP: HTTPConfig{
			Timeout:   v.GetDuration("http.timeout"),
			UserAgent: v.GetString("http.user_agent"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: v.GetString("telemetry.otlp_endpoint"),
		},
		// Secrets never come from the config file
		Account:  os.Getenv(EnvPrefix + "_ACCOUNT"),
		Password: os.Getenv(EnvPrefix + "_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the values a typo would silently break.
func (c Config) Validate() error {
	if err := requireAbsoluteURL("bank.endpoint", c.Bank.Endpoint); err != nil {
		return err
	}
	if err := requireAbsoluteURL("bank.origin_url", c.Bank.OriginURL); err != nil {
		return err
	}

	if c.Telemetry.OTLPEndpoint != "" {
		if err := requireAbsoluteURL("telemetry.otlp_endpoint", c.Telemetry.OTLPEndpoint); err != nil {
			return err
		}
	}

	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("invalid http.timeout: %s", c.HTTP.Timeout)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

func requireAbsoluteURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q is not an absolute URL", key, raw)
	}
	return nil
}
