// Package config содержит логику чтения конфигурации сервиса заказов.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса заказов.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	AMQPURL           string
	SessionSecret     string
	StrictTransitions bool
	SeedDemo          bool
}

// envConfig повторяет Config; булевы поля сделаны указателями, чтобы отличать
// отсутствующую переменную от явного false.
type envConfig struct {
	RunAddress        string `env:"RUN_ADDRESS"`
	DatabaseURI       string `env:"DATABASE_URI"`
	AMQPURL           string `env:"AMQP_URL"`
	SessionSecret     string `env:"SESSION_SECRET"`
	StrictTransitions *bool  `env:"STRICT_TRANSITIONS"`
	SeedDemo          *bool  `env:"SEED_DEMO"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI, in-memory store if empty")
	flag.StringVar(&cfg.AMQPURL, "q", "", "RabbitMQ URL for status events, disabled if empty")
	flag.StringVar(&cfg.SessionSecret, "s", "", "secret for signing session cookies")
	flag.BoolVar(&cfg.StrictTransitions, "strict", false, "allow only forward status transitions one step at a time")
	flag.BoolVar(&cfg.SeedDemo, "seed", true, "load demo orders, staff, customers and campaigns")

	flag.Parse()

	if e.RunAddress != "" {
		cfg.RunAddress = e.RunAddress
	}
	if e.DatabaseURI != "" {
		cfg.DatabaseURI = e.DatabaseURI
	}
	if e.AMQPURL != "" {
		cfg.AMQPURL = e.AMQPURL
	}
	if e.SessionSecret != "" {
		cfg.SessionSecret = e.SessionSecret
	}
	if e.StrictTransitions != nil {
		cfg.StrictTransitions = *e.StrictTransitions
	}
	if e.SeedDemo != nil {
		cfg.SeedDemo = *e.SeedDemo
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
