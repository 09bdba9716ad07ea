package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"nightfall/models"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP configuration
	HTTPPort    string
	MetricsPort string

	// Settlement configuration
	PlatformFeeAddress string          // wallet that collects playing fees
	DefaultPlayingFee  models.Lamports // charged to the winner only
	NetworkFeeEstimate models.Lamports // flat estimate reported to clients

	// Game configuration
	CancelCooldown    time.Duration // minimum wait before a creator may cancel
	DefaultMinPlayers int
	DefaultMaxPlayers int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9095"),

		PlatformFeeAddress: os.Getenv("PLATFORM_FEE_ADDRESS"),

		// Settlement defaults
		DefaultPlayingFee:  100_000, // 0.0001 SOL
		NetworkFeeEstimate: 5_000,   // 0.000005 SOL

		// Game defaults
		CancelCooldown:    5 * time.Minute,
		DefaultMinPlayers: 2,
		DefaultMaxPlayers: 8,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if fee := os.Getenv("DEFAULT_PLAYING_FEE"); fee != "" {
		parsed, err := models.ParseSOL(fee)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_PLAYING_FEE: %w", err)
		}
		config.DefaultPlayingFee = parsed
	}
	if cooldown := os.Getenv("CANCEL_COOLDOWN"); cooldown != "" {
		parsed, err := time.ParseDuration(cooldown)
		if err != nil {
			return nil, fmt.Errorf("invalid CANCEL_COOLDOWN: %w", err)
		}
		config.CancelCooldown = parsed
	}
	if min := os.Getenv("DEFAULT_MIN_PLAYERS"); min != "" {
		if parsed, err := strconv.Atoi(min); err == nil {
			config.DefaultMinPlayers = parsed
		}
	}
	if max := os.Getenv("DEFAULT_MAX_PLAYERS"); max != "" {
		if parsed, err := strconv.Atoi(max); err == nil {
			config.DefaultMaxPlayers = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.PlatformFeeAddress == "" {
			return nil, fmt.Errorf("PLATFORM_FEE_ADDRESS is required")
		}
	}

	return config, nil
}

// getEnv returns the environment variable value or the default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
