package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	Port     string `yaml:"PORT"`
	Timezone string `yaml:"TIMEZONE"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	// Redis configuration; empty keeps quotas in memory
	RedisURL string `yaml:"REDIS_URL"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AI provider configuration
	OpenAIAPIKey      string `yaml:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `yaml:"OPENAI_BASE_URL"`
	OpenAIModel       string `yaml:"OPENAI_MODEL"`
	OpenAIVisionModel string `yaml:"OPENAI_VISION_MODEL"`
	AITimeoutSeconds  string `yaml:"AI_TIMEOUT_SECONDS"`
	AIRetryAttempts   string `yaml:"AI_RETRY_ATTEMPTS"`

	// Rate limiting
	RateLimitMax           string `yaml:"RATE_LIMIT_MAX"`
	RateLimitWindowSeconds string `yaml:"RATE_LIMIT_WINDOW_SECONDS"`
	DailyScanLimit         string `yaml:"DAILY_SCAN_LIMIT"`
	DailyRecipeLimit       string `yaml:"DAILY_RECIPE_LIMIT"`
	SweepIntervalSeconds   string `yaml:"SWEEP_INTERVAL_SECONDS"`

	// Notifications
	DigestHour              string `yaml:"DIGEST_HOUR"`
	DigestMinute            string `yaml:"DIGEST_MINUTE"`
	ReplanHour              string `yaml:"REPLAN_HOUR"`
	DispatchIntervalSeconds string `yaml:"DISPATCH_INTERVAL_SECONDS"`
}

var config Config

func LoadConfig() {
	LoadConfigFile("config.yaml")
}

// LoadConfigFile reads path into the global config. A missing file is not
// fatal: every key can also come from the environment.
func LoadConfigFile(path string) {
	file, err := os.ReadFile(path)
	if err != nil {
		log.Warnf("Error reading YAML file: %s", err)
		return
	}

	var loaded Config
	if err := yaml.Unmarshal(file, &loaded); err != nil {
		log.Errorf("Error parsing YAML file: %s", err)
		return
	}
	config = loaded
}

// GetConfig returns the value for key. An environment variable of the same
// name wins over the YAML file.
func GetConfig(key string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fromFile(key)
}

func fromFile(key string) string {
	switch key {
	case "PORT":
		return config.Port
	case "TIMEZONE":
		return config.Timezone
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "DB_SSLMODE":
		return config.DBSSLMode
	case "REDIS_URL":
		return config.RedisURL
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "OPENAI_API_KEY":
		return config.OpenAIAPIKey
	case "OPENAI_BASE_URL":
		return config.OpenAIBaseURL
	case "OPENAI_MODEL":
		return config.OpenAIModel
	case "OPENAI_VISION_MODEL":
		return config.OpenAIVisionModel
	case "AI_TIMEOUT_SECONDS":
		return config.AITimeoutSeconds
	case "AI_RETRY_ATTEMPTS":
		return config.AIRetryAttempts
	case "RATE_LIMIT_MAX":
		return config.RateLimitMax
	case "RATE_LIMIT_WINDOW_SECONDS":
		return config.RateLimitWindowSeconds
	case "DAILY_SCAN_LIMIT":
		return config.DailyScanLimit
	case "DAILY_RECIPE_LIMIT":
		return config.DailyRecipeLimit
	case "SWEEP_INTERVAL_SECONDS":
		return config.SweepIntervalSeconds
	case "DIGEST_HOUR":
		return config.DigestHour
	case "DIGEST_MINUTE":
		return config.DigestMinute
	case "REPLAN_HOUR":
		return config.ReplanHour
	case "DISPATCH_INTERVAL_SECONDS":
		return config.DispatchIntervalSeconds
	default:
		return ""
	}
}

// GetConfigInt parses key as an integer, falling back when it is missing or
// malformed.
func GetConfigInt(key string, fallback int) int {
	raw := GetConfig(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnw("invalid integer config, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return value
}

// GetConfigSeconds reads key as a whole number of seconds.
func GetConfigSeconds(key string, fallback time.Duration) time.Duration {
	seconds := GetConfigInt(key, -1)
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Location resolves TIMEZONE, defaulting to UTC.
func Location() *time.Location {
	name := GetConfig("TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warnw("unknown timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}
