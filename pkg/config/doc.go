// Package config loads typed configuration from environment variables,
// wrapping github.com/joho/godotenv and github.com/caarlos0/env/v11. Each
// configuration type is parsed once and cached for the process lifetime.
//
//	type MeteringConfig struct {
//	    LimitsPath string `env:"QUOTA_LIMITS_PATH" envDefault:"limits.yaml"`
//	}
//
//	var cfg MeteringConfig
//	config.MustLoad(&cfg)
package config
