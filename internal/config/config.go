package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	Port string

	// Session/CSRF keys, 32 bytes each, base64 in the environment.
	// Generated randomly when unset; sessions then reset on restart.
	SessionKey   []byte
	CSRFKey      []byte
	CookieSecure bool

	// CheckoutReasons is the static option list shown on the
	// reason-for-checkout page.
	CheckoutReasons []string

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	UseMockDB bool

	// Optional Telegram defect alerts; disabled when the token is empty.
	TelegramToken  string
	TelegramChatID int64
}

// defaultCheckoutReasons matches the club's configured option list.
var defaultCheckoutReasons = []string{
	"Engine hours",
	"Maintenance",
	"Fuel",
	"Other",
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	config := &Config{
		CheckoutReasons: defaultCheckoutReasons,
	}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	var err error
	config.SessionKey, err = loadKey("SESSION_KEY")
	if err != nil {
		return nil, err
	}
	config.CSRFKey, err = loadKey("CSRF_KEY")
	if err != nil {
		return nil, err
	}
	config.CookieSecure = os.Getenv("COOKIE_SECURE") == "true"

	// Use Mock DB (default: false)
	config.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"

	// ClickHouse configuration (required if not using mock)
	if !config.UseMockDB {
		config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
		if config.ClickHouseHost == "" {
			return nil, fmt.Errorf("CLICKHOUSE_HOST is required when USE_MOCK_DB is not set")
		}

		portStr := os.Getenv("CLICKHOUSE_PORT")
		if portStr == "" {
			config.ClickHousePort = 9000 // Default ClickHouse native port
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
			}
			config.ClickHousePort = port
		}

		config.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
		if config.ClickHouseDatabase == "" {
			config.ClickHouseDatabase = "default"
		}

		config.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
		if config.ClickHouseUser == "" {
			config.ClickHouseUser = "default"
		}

		config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
		// Password is optional, can be empty

		config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	}

	// Telegram defect alerts (optional)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken != "" {
		chatStr := os.Getenv("TELEGRAM_CHAT_ID")
		if chatStr == "" {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
		}
		chatID, err := strconv.ParseInt(chatStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		config.TelegramChatID = chatID
	}

	return config, nil
}

func loadKey(envVar string) ([]byte, error) {
	encoded := os.Getenv(envVar)
	if encoded == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", envVar, err)
		}
		return key, nil
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envVar, err)
	}
	if len(key) < 32 {
		return nil, fmt.Errorf("%s must be at least 32 bytes", envVar)
	}
	return key, nil
}
