// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"fmt"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver              string `mapstructure:"DB_DRIVER"`
	DBSource              string `mapstructure:"DB_SOURCE"`
	Environement          string `mapstructure:"GO_ENV"`
	MaxWithdrawalsPerDay  int    `mapstructure:"MAX_WITHDRAWALS_PER_DAY"`
	MaxWithdrawalAmount   string `mapstructure:"MAX_WITHDRAWAL_AMOUNT"`
	MaxTransactionsPerDay int    `mapstructure:"MAX_TRANSACTIONS_PER_DAY"`
}

var defaults = map[string]any{
	"DB_DRIVER":                "sqlite3",
	"DB_SOURCE":                "file:ledger.db?_foreign_keys=on",
	"GO_ENV":                   "production",
	"MAX_WITHDRAWALS_PER_DAY":  3,
	"MAX_WITHDRAWAL_AMOUNT":    "500",
	"MAX_TRANSACTIONS_PER_DAY": 10,
}

// Load reads configuration from the app.env file in path and environment
// variables. A missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

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

// Limits returns the ledger policies described by the config.
func (c Config) Limits() (domain.Limits, error) {
	var l domain.Limits

	amount, err := decimal.NewFromString(c.MaxWithdrawalAmount)
	if err != nil {
		return l, fmt.Errorf("MAX_WITHDRAWAL_AMOUNT: %w", err)
	}

	if amount.IsNegative() {
		return l, fmt.Errorf("MAX_WITHDRAWAL_AMOUNT must not be negative, got %v", amount)
	}

	if c.MaxWithdrawalsPerDay < 0 {
		return l, fmt.Errorf("MAX_WITHDRAWALS_PER_DAY must not be negative, got %d", c.MaxWithdrawalsPerDay)
	}

	if c.MaxTransactionsPerDay < 0 {
		return l, fmt.Errorf("MAX_TRANSACTIONS_PER_DAY must not be negative, got %d", c.MaxTransactionsPerDay)
	}

	l = domain.Limits{
		MaxWithdrawalsPerDay:  c.MaxWithdrawalsPerDay,
		MaxWithdrawalAmount:   amount,
		MaxTransactionsPerDay: c.MaxTransactionsPerDay,
	}

	return l, nil
}
