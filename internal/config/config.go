package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port         string
	DatabasePath string
	SeedPath     string
	LocalesDir   string
	TemplatesDir string
	AdminCode    string
	Env          string
	DemoLogins   bool
}

// Load reads configuration from the environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by the caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabasePath = getEnv("DATABASE_PATH", "coursehub.db")
	cfg.SeedPath = getEnv("SEED_PATH", "data/seed.json")
	cfg.LocalesDir = getEnv("LOCALES_DIR", "locales")
	cfg.TemplatesDir = getEnv("TEMPLATES_DIR", "templates")
	cfg.AdminCode = getEnv("ADMIN_CODE", "admin2024")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.DemoLogins = ParseBool("DEMO_LOGINS", cfg.Env == "development")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
