package config

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

type AppConfig struct {
	HTTPAddr     string
	RedisAddr    string
	RedisPass    string
	KafkaBrokers []string
	KafkaTopic   string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	Limits Limits
}

// Limits are the per-operation amount ceilings, checked before any
// mutation.
type Limits struct {
	MaxDeposit  decimal.Decimal
	MaxWithdraw decimal.Decimal
	MaxTransfer decimal.Decimal
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:    getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:    getEnv("REDIS_PASS", ""),
		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", []string{"kafka:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "transaction-events"),

		DBUser:     getEnv("DB_USER", "easycash"),
		DBPassword: getEnv("DB_PASSWORD", "easycash"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "easycash"),

		Limits: Limits{
			MaxDeposit:  getEnvDecimal("MAX_DEPOSIT", "1000000.00"),
			MaxWithdraw: getEnvDecimal("MAX_WITHDRAW", "50000.00"),
			MaxTransfer: getEnvDecimal("MAX_TRANSFER", "50000.00"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return strings.Split(v, ",")
	}
	return fallback
}

func getEnvDecimal(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}
