/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the payout-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort                     string `mapstructure:"SERVER_PORT"`
	DatabaseURL                    string `mapstructure:"DATABASE_URL"`
	RedisURL                       string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix           string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL                    string `mapstructure:"RABBITMQ_URL"`
	PaymentEventExchange           string `mapstructure:"PAYMENT_EVENT_EXCHANGE"`
	PaystackAPIBaseURL             string `mapstructure:"PAYSTACK_API_BASE_URL"`
	PaystackSecretKey              string `mapstructure:"PAYSTACK_SECRET_KEY"`
	PaystackWebhookSecret          string `mapstructure:"PAYSTACK_WEBHOOK_SECRET"`
	WebhookPath                    string `mapstructure:"WEBHOOK_PATH"`
	TransferCurrency               string `mapstructure:"TRANSFER_CURRENCY"`
	TransferNarration              string `mapstructure:"TRANSFER_NARRATION"`
	TransferReferencePrefix        string `mapstructure:"TRANSFER_REFERENCE_PREFIX"`
	GeneralRateLimit               int    `mapstructure:"GENERAL_RATE_LIMIT"`
	GeneralRateLimitWindowMinutes  int    `mapstructure:"GENERAL_RATE_LIMIT_WINDOW_MINUTES"`
	WithdrawRateLimit              int    `mapstructure:"WITHDRAW_RATE_LIMIT"`
	WithdrawRateLimitWindowMinutes int    `mapstructure:"WITHDRAW_RATE_LIMIT_WINDOW_MINUTES"`
	MaxConcurrentWithdrawals       int    `mapstructure:"MAX_CONCURRENT_WITHDRAWALS"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "payout:rate_limit")
	viper.SetDefault("PAYMENT_EVENT_EXCHANGE", "payout_events")
	viper.SetDefault("PAYSTACK_API_BASE_URL", "https://api.paystack.co")
	viper.SetDefault("WEBHOOK_PATH", "/webhooks/paystack")
	viper.SetDefault("TRANSFER_CURRENCY", "NGN")
	viper.SetDefault("TRANSFER_NARRATION", "Wallet withdrawal")
	viper.SetDefault("TRANSFER_REFERENCE_PREFIX", "payout")
	viper.SetDefault("GENERAL_RATE_LIMIT", 50)
	viper.SetDefault("GENERAL_RATE_LIMIT_WINDOW_MINUTES", 15)
	viper.SetDefault("WITHDRAW_RATE_LIMIT", 5)
	viper.SetDefault("WITHDRAW_RATE_LIMIT_WINDOW_MINUTES", 60)
	viper.SetDefault("MAX_CONCURRENT_WITHDRAWALS", 2)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("PAYMENT_EVENT_EXCHANGE")
	_ = viper.BindEnv("PAYSTACK_API_BASE_URL")
	_ = viper.BindEnv("PAYSTACK_SECRET_KEY")
	_ = viper.BindEnv("PAYSTACK_WEBHOOK_SECRET")
	_ = viper.BindEnv("WEBHOOK_PATH")
	_ = viper.BindEnv("TRANSFER_CURRENCY")
	_ = viper.BindEnv("TRANSFER_NARRATION")
	_ = viper.BindEnv("TRANSFER_REFERENCE_PREFIX")
	_ = viper.BindEnv("GENERAL_RATE_LIMIT")
	_ = viper.BindEnv("GENERAL_RATE_LIMIT_WINDOW_MINUTES")
	_ = viper.BindEnv("WITHDRAW_RATE_LIMIT")
	_ = viper.BindEnv("WITHDRAW_RATE_LIMIT_WINDOW_MINUTES")
	_ = viper.BindEnv("MAX_CONCURRENT_WITHDRAWALS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.PaystackSecretKey = strings.TrimSpace(config.PaystackSecretKey)
	config.PaystackWebhookSecret = strings.TrimSpace(config.PaystackWebhookSecret)
	if config.PaystackWebhookSecret == "" {
		// Paystack signs webhooks with the account secret key by default.
		config.PaystackWebhookSecret = config.PaystackSecretKey
	}

	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "payout:rate_limit"
	}

	if config.GeneralRateLimit <= 0 {
		config.GeneralRateLimit = 50
	}
	if config.GeneralRateLimitWindowMinutes <= 0 {
		config.GeneralRateLimitWindowMinutes = 15
	}
	if config.WithdrawRateLimit <= 0 {
		config.WithdrawRateLimit = 5
	}
	if config.WithdrawRateLimitWindowMinutes <= 0 {
		config.WithdrawRateLimitWindowMinutes = 60
	}
	if config.MaxConcurrentWithdrawals <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive withdrawal concurrency configured; coercing to 2\" value=%d", config.MaxConcurrentWithdrawals)
		config.MaxConcurrentWithdrawals = 2
	}

	return
}
