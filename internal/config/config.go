// Package config loads server settings from an optional config.yaml and
// RENTBOOK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/mmynk/rentbook/internal/calculator"
)

// DevJWTSecret is the signing key used when none is configured. Fine for
// local runs only.
const DevJWTSecret = "rentbook-dev-secret-change-me"

type Configuration struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigin string `mapstructure:"allowed_origin" validate:"required"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type JWTConfig struct {
	Secret        string        `mapstructure:"secret" validate:"required,min=16"`
	Issuer        string        `mapstructure:"issuer" validate:"required"`
	TokenDuration time.Duration `mapstructure:"token_duration" validate:"required,gt=0"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

// BillingConfig holds amounts as strings so they keep exact decimal values.
type BillingConfig struct {
	DefaultElectricityRate string `mapstructure:"default_electricity_rate" validate:"required,numeric"`
	BaseRentCeiling        string `mapstructure:"base_rent_ceiling" validate:"omitempty,numeric"`
	RateCeiling            string `mapstructure:"rate_ceiling" validate:"omitempty,numeric"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Load reads configFile, or config.yaml from the usual search paths when
// configFile is empty, then applies environment overrides. A missing
// config.yaml is not an error.
func Load(configFile string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/rentbook")
	}

	v.SetEnvPrefix("RENTBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("database.path", "./data/rentbook.db")
	v.SetDefault("jwt.secret", DevJWTSecret)
	v.SetDefault("jwt.issuer", "rentbook")
	v.SetDefault("jwt.token_duration", "168h")
	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("billing.default_electricity_rate", "15")
	v.SetDefault("billing.base_rent_ceiling", calculator.DefaultLimits.BaseRentCeiling.String())
	v.SetDefault("billing.rate_ceiling", calculator.DefaultLimits.RateCeiling.String())
	v.SetDefault("log.level", "info")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.Billing.DefaultRate().IsPositive() {
		return errors.New("invalid config: billing.default_electricity_rate must be greater than zero")
	}
	return nil
}

// DefaultRate is the electricity rate for users who never saved one.
func (b BillingConfig) DefaultRate() decimal.Decimal {
	return parseOrZero(b.DefaultElectricityRate)
}

// Limits returns the soft ceilings; an unset ceiling disables its warning.
func (b BillingConfig) Limits() calculator.Limits {
	return calculator.Limits{
		BaseRentCeiling: parseOrZero(b.BaseRentCeiling),
		RateCeiling:     parseOrZero(b.RateCeiling),
	}
}

func parseOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Address is the listen address for the HTTP server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}
