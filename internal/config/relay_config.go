package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RelayConfig holds what the outbox relay needs and nothing else.
type RelayConfig struct {
	Env          string `env:"APP_ENV" envDefault:"dev"`
	DatabaseURL  string `env:"DB_CONNECTION_STRING,required"`
	RabbitMQURL  string `env:"RABBITMQ_URL,required"`
	ExchangeName string `env:"EVENT_EXCHANGE_NAME" envDefault:"kinder.events"`
	HealthAddr   string `env:"RELAY_HEALTH_ADDR" envDefault:":8090"`
}

func LoadRelayConfig() (*RelayConfig, error) {
	var cfg RelayConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
