package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the gateway and the mail worker need. It is
// built once at startup and passed by injection; nothing reads it globally.
type Config struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	JWTSecretKey       string `mapstructure:"JWT_SECRET_KEY"`
	JWTAlgorithm       string `mapstructure:"JWT_ALGORITHM"`
	JWTIssuer          string `mapstructure:"JWT_ISSUER"`
	AccessTokenTTLSec  int    `mapstructure:"ACCESS_TOKEN_TTL_SEC"`
	RefreshTokenTTLSec int    `mapstructure:"REFRESH_TOKEN_TTL_SEC"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `mapstructure:"GOOGLE_REDIRECT_URI"`

	YandexClientID     string `mapstructure:"YANDEX_CLIENT_ID"`
	YandexClientSecret string `mapstructure:"YANDEX_CLIENT_SECRET"`
	YandexRedirectURI  string `mapstructure:"YANDEX_REDIRECT_URI"`

	CurrencyAPIURL        string `mapstructure:"CURRENCY_API_URL"`
	CurrencyAPIKey        string `mapstructure:"CURRENCY_API_KEY"`
	CurrencyAPITimeoutSec int    `mapstructure:"CURRENCY_API_TIMEOUT_SEC"`

	NoticeStream     string `mapstructure:"NOTICE_STREAM"`
	DeadLetterStream string `mapstructure:"DEAD_LETTER_STREAM"`
	MailGroup        string `mapstructure:"MAIL_GROUP"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLSec) * time.Second
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLSec) * time.Second
}

// CurrencyAPITimeout bounds every call to the upstream rate API.
func (c *Config) CurrencyAPITimeout() time.Duration {
	return time.Duration(c.CurrencyAPITimeoutSec) * time.Second
}

// Load reads configuration from an optional yaml file, environment
// variables and defaults, in that order of increasing precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/fxgate/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/fxgate")
	v.SetDefault("MONGO_DB_NAME", "fxgate")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_ISSUER", "fxgate")
	v.SetDefault("ACCESS_TOKEN_TTL_SEC", 300)
	v.SetDefault("REFRESH_TOKEN_TTL_SEC", 604800)
	v.SetDefault("CURRENCY_API_URL", "https://api.apilayer.com/currency_data/")
	v.SetDefault("CURRENCY_API_TIMEOUT_SEC", 10)
	v.SetDefault("NOTICE_STREAM", "currency_info")
	v.SetDefault("DEAD_LETTER_STREAM", "email_error")
	v.SetDefault("MAIL_GROUP", "currency")
	v.SetDefault("SMTP_PORT", 465)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be set")
	}

	return &cfg, nil
}
