package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabasePath string
	UploadDir    string
	JWTSecret    string
}

// Load reads configuration from the environment, after loading .env if one
// is present. JWT_SECRET has no default: tokens must be verifiable against
// the secret the identity issuer signs with.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		DatabasePath: getEnv("DATABASE_PATH", "database.db"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty (check your .env)")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
