// Package config содержит логику чтения конфигурации сервиса начисления баллов.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const defaultVisionModel = "gemini-2.0-flash"

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress   string `env:"RUN_ADDRESS"`
	DatabaseURI  string `env:"DATABASE_URI"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	VisionModel  string `env:"VISION_MODEL"`
	AuthSecret   string `env:"AUTH_SECRET"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значение из окружения имеет приоритет над флагом.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envGeminiAPIKey := cfg.GeminiAPIKey
	envVisionModel := cfg.VisionModel
	envAuthSecret := cfg.AuthSecret

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.GeminiAPIKey, "k", "", "API key for the vision model")
	flag.StringVar(&cfg.VisionModel, "m", defaultVisionModel, "vision model name")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret key for auth cookies")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envGeminiAPIKey != "" {
		cfg.GeminiAPIKey = envGeminiAPIKey
	}
	if envVisionModel != "" {
		cfg.VisionModel = envVisionModel
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = defaultVisionModel
	}

	return cfg, nil
}
