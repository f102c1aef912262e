package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HRMS backend
	APIURL      string        // base URL of the REST API (e.g., http://localhost:8000)
	Username    string        // optional, signs in at startup when set with Password
	Password    string
	HTTPTimeout time.Duration // per request

	// Console HTTP surface
	ListenAddr string

	// Telegram Bot
	TelegramBotToken string
	AuthorizedChatID string
}

// DevBackendConfig configures cmd/devbackend
type DevBackendConfig struct {
	AdminUsername string
	AdminPassword string
	JWTSecret     string
}

// loadEnv reads .env when present; real environment variables take precedence
func loadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("godotenv.Load() error: %v", err)
	}
}

func LoadConfig() (*Config, error) {
	loadEnv()

	timeout := 10 * time.Second
	if raw := os.Getenv("HTTP_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS %q", raw)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	return &Config{
		APIURL:           strings.TrimRight(getEnv("HRMS_API_URL", "http://localhost:8000"), "/"),
		Username:         os.Getenv("HRMS_USERNAME"),
		Password:         os.Getenv("HRMS_PASSWORD"),
		HTTPTimeout:      timeout,
		ListenAddr:       getEnv("CONSOLE_ADDR", ":8080"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AuthorizedChatID: os.Getenv("AUTHORIZED_CHAT_ID"),
	}, nil
}

// LoadDevBackendConfig requires DEV_JWT_SECRET; the admin defaults to admin/admin
func LoadDevBackendConfig() (*DevBackendConfig, error) {
	loadEnv()

	secret := os.Getenv("DEV_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("DEV_JWT_SECRET is required")
	}
	return &DevBackendConfig{
		AdminUsername: getEnv("DEV_ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("DEV_ADMIN_PASSWORD", "admin"),
		JWTSecret:     secret,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
