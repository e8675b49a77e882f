// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Storage backends selectable with STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	DBDriver      string `mapstructure:"DB_DRIVER"`
	DBSource      string `mapstructure:"DB_SOURCE"`
	Store         string `mapstructure:"STORE"`
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	Environement  string `mapstructure:"GO_ENV"`

	TokenType           string        `mapstructure:"TOKEN_TYPE"`
	TokenSymmetricKey   string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	OperatorUsername    string        `mapstructure:"OPERATOR_USERNAME"`
	OperatorKeyHash     string        `mapstructure:"OPERATOR_KEY_HASH"`

	// Fee rates are decimal strings, parsed once at startup.
	WithdrawalFeeRate string `mapstructure:"WITHDRAWAL_FEE_RATE"`
	ConversionFeeRate string `mapstructure:"CONVERSION_FEE_RATE"`
	TransferFeeRate   string `mapstructure:"TRANSFER_FEE_RATE"`
	AddressSize       int    `mapstructure:"ADDRESS_SIZE"`
	SecretSize        int    `mapstructure:"SECRET_SIZE"`

	QuoteBaseURL  string        `mapstructure:"QUOTE_BASE_URL"`
	QuoteTimeout  time.Duration `mapstructure:"QUOTE_TIMEOUT"`
	QuoteCacheTTL time.Duration `mapstructure:"QUOTE_CACHE_TTL"`
	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
}

var defaults = map[string]any{
	"DB_DRIVER":             "postgres",
	"DB_SOURCE":             "",
	"STORE":                 StorePostgres,
	"SERVER_ADDRESS":        "0.0.0.0:8080",
	"GO_ENV":                "production",
	"TOKEN_TYPE":            "paseto",
	"TOKEN_SYMMETRIC_KEY":   "",
	"ACCESS_TOKEN_DURATION": 15 * time.Minute,
	"OPERATOR_USERNAME":     "operator",
	"OPERATOR_KEY_HASH":     "",
	"WITHDRAWAL_FEE_RATE":   "0.01",
	"CONVERSION_FEE_RATE":   "0.02",
	"TRANSFER_FEE_RATE":     "0.005",
	"ADDRESS_SIZE":          20,
	"SECRET_SIZE":           32,
	"QUOTE_BASE_URL":        "https://api.coinbase.com/v2/prices",
	"QUOTE_TIMEOUT":         10 * time.Second,
	"QUOTE_CACHE_TTL":       5 * time.Second,
	"REDIS_ADDRESS":         "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
}

// Load read configuration from file or environment variables.
//
// The app.env file in path is optional; environment variables override it.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}
