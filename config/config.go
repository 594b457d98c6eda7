package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	HTTP   ServerConfig
	Log    LogConfig
	Sheets SheetsConfig
	PayPal PayPalConfig
	Stripe StripeConfig
	Report ReportConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type LogConfig struct {
	Level string
}

type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
}

type PayPalConfig struct {
	ClientID    string
	Secret      string
	APIBase     string
	HTTPTimeout time.Duration
}

type StripeConfig struct {
	WebhookSecret             string
	SignatureToleranceSeconds int64
}

type ReportConfig struct {
	// Sheets lists the registration sheets the pending report scans.
	Sheets       []string
	PendingAfter time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	required := map[string]string{}
	for _, key := range []string{
		"GOOGLE_SPREADSHEET_ID",
		"GOOGLE_SERVICE_ACCOUNT_FILE",
		"PAYPAL_CLIENT_ID",
		"PAYPAL_SECRET",
		"STRIPE_WEBHOOK_SECRET",
	} {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("%s environment variable is required", key)
		}
		required[key] = value
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "registration-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   required["GOOGLE_SPREADSHEET_ID"],
			CredentialsFile: required["GOOGLE_SERVICE_ACCOUNT_FILE"],
		},
		PayPal: PayPalConfig{
			ClientID:    required["PAYPAL_CLIENT_ID"],
			Secret:      required["PAYPAL_SECRET"],
			APIBase:     getEnv("PAYPAL_API_BASE", "https://api-m.paypal.com"),
			HTTPTimeout: getSecondsEnv("PAYPAL_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Stripe: StripeConfig{
			WebhookSecret:             required["STRIPE_WEBHOOK_SECRET"],
			SignatureToleranceSeconds: int64(getIntEnv("STRIPE_SIGNATURE_TOLERANCE_SECONDS", 300)),
		},
		Report: ReportConfig{
			Sheets:       getListEnv("REPORT_SHEETS", []string{"Registrations", "Teacher Memberships"}),
			PendingAfter: getMinutesEnv("REPORT_PENDING_AFTER_MINUTES", 24*60*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
