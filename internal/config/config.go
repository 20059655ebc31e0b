package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	placeholderAPIKey   = "PLACEHOLDER_API_KEY"
	placeholderSheetURL = "PLACEHOLDER_SHEET_URL"

	StoreDriverSheet    = "sheet"
	StoreDriverPostgres = "postgres"
)

var defaultModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-1.5-flash-8b",
}

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModels         []string
	GeminiRequestsPerMin int
	GeminiConcurrentReqs int

	// Extraction
	ExtractionMaxRetries int
	ExtractionRetryDelay time.Duration
	ModelCooldown        time.Duration
	ExtractRateLimit     int
	TikTokAccount        string
	DefaultMainProduct   string

	// Record store
	StoreDriver       string
	SheetURL          string
	SheetStrictWrites bool
	DatabaseURL       string
	DatabaseMaxConns  int
	SeedSampleData    bool

	// Redis (optional notice fan-out)
	RedisURL string

	// Frontend
	FrontendURL string
}

// ConfigError reports a required setting that is missing or still holds
// its placeholder value.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration %s is missing or a placeholder", e.Setting)
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModels:         getEnvAsListOrDefault("GEMINI_MODELS", defaultModels),
		GeminiRequestsPerMin: getEnvAsIntOrDefault("GEMINI_REQUESTS_PER_MINUTE", 15),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 2),

		ExtractionMaxRetries: getEnvAsIntOrDefault("EXTRACTION_MAX_RETRIES", 2),
		ExtractionRetryDelay: getEnvAsMillisOrDefault("EXTRACTION_RETRY_DELAY_MS", 2000),
		ModelCooldown:        getEnvAsMillisOrDefault("MODEL_COOLDOWN_MS", 2000),
		ExtractRateLimit:     getEnvAsIntOrDefault("EXTRACT_RATE_LIMIT_PER_MIN", 20),
		TikTokAccount:        getEnvOrDefault("TIKTOK_ACCOUNT", "julaherbthailand"),
		DefaultMainProduct:   getEnvOrDefault("DEFAULT_MAIN_PRODUCT", "Julaherb"),

		StoreDriver:       strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverSheet)),
		SheetURL:          os.Getenv("SHEET_URL"),
		SheetStrictWrites: getEnvAsBoolOrDefault("SHEET_STRICT_WRITES", true),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DatabaseMaxConns:  getEnvAsIntOrDefault("DATABASE_MAX_CONNS", 5),
		SeedSampleData:    getEnvAsBoolOrDefault("SEED_SAMPLE_DATA", true),

		RedisURL:    os.Getenv("REDIS_URL"),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// ExtractionCheck reports whether screenshot extraction can run.
func (c *Config) ExtractionCheck() error {
	if isMissing(c.GeminiAPIKey, placeholderAPIKey) {
		return &ConfigError{Setting: "GEMINI_API_KEY"}
	}
	if len(c.GeminiModels) == 0 {
		return &ConfigError{Setting: "GEMINI_MODELS"}
	}
	return nil
}

// StoreCheck reports whether the configured record store can be reached.
func (c *Config) StoreCheck() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return &ConfigError{Setting: "DATABASE_URL"}
		}
	default:
		if isMissing(c.SheetURL, placeholderSheetURL) {
			return &ConfigError{Setting: "SHEET_URL"}
		}
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func isMissing(val, placeholder string) bool {
	val = strings.TrimSpace(val)
	return val == "" || val == placeholder
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsMillisOrDefault(key string, defaultMillis int) time.Duration {
	ms := getEnvAsIntOrDefault(key, defaultMillis)
	if ms <= 0 {
		ms = defaultMillis
	}
	return time.Duration(ms) * time.Millisecond
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), defaultVal...)
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
