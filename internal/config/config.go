package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	SecretKey         string
	AdminEmail        string
	AdminPasswordHash string
	InternalSecretKey string

	// Telegram notification sink. Both empty means notifications are disabled.
	TelegramBotToken string
	TelegramChatID   string

	DefaultCurrency   string
	ReservationWindow time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),

		SecretKey:         os.Getenv("SECRET_KEY"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		DefaultCurrency:   os.Getenv("DEFAULT_CURRENCY"),
		ReservationWindow: reservationWindow(),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "EUR"
	}

	return cfg
}

func reservationWindow() time.Duration {
	raw := os.Getenv("RESERVATION_WINDOW_MINUTES")
	if raw == "" {
		return 120 * time.Minute
	}

	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		log.Printf("invalid RESERVATION_WINDOW_MINUTES %q, falling back to 120", raw)
		return 120 * time.Minute
	}

	return time.Duration(minutes) * time.Minute
}
