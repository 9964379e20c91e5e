// Package config handles application configuration via environment variables.
package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configurable values for the client.
type Config struct {
	Env         string
	APIBase     string
	ProxyURL    string // register punches through a relay; empty means direct
	StateDir    string // session, device id and pending-punch ledger live here
	HTTPTimeout time.Duration
}

// Load reads a .env file if present, then environment variables, and
// populates a Config struct.
func Load() *Config {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		log.Panicf("Invalid HTTP_TIMEOUT: %v", err)
	}

	return &Config{
		Env:         getEnv("ENV", "development"),
		APIBase:     getEnv("PONTO_API_BASE", "https://api.pontomais.com.br"),
		ProxyURL:    os.Getenv("PUNCH_PROXY_URL"),
		StateDir:    getEnv("PONTO_STATE_DIR", defaultStateDir()),
		HTTPTimeout: timeout,
	}
}

func defaultStateDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "pontoctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pontoctl")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
