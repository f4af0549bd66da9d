package config

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"
)

// Config is the API server configuration, read from the environment.
type Config struct {
	Port              string   `env:"PORT" envDefault:"8080"`
	Env               string   `env:"APP_ENV" envDefault:"dev"`
	Version           string   `env:"APP_VERSION" envDefault:"unknown"`
	DatabaseURL       string   `env:"DB_CONNECTION_STRING,required"`
	RedisAddress      string   `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	RedisPassword     string   `env:"REDIS_PASSWORD"`
	PrivateKeyPath    string   `env:"PRIVATE_KEY_PATH" envDefault:"/etc/certs/private.pem"`
	PublicKeyPath     string   `env:"PUBLIC_KEY_PATH" envDefault:"/etc/certs/public.pem"`
	AdminEmail        string   `env:"ADMIN_EMAIL" envDefault:"admin@kinder.com"`
	AdminPasswordHash string   `env:"ADMIN_PASSWORD_HASH,required"`
	CORSOrigins       []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	RateLimitPerMin   int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"200"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// LoadKeys reads the RSA key pair used to sign session tokens.
func (c *Config) LoadKeys() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKey, err := loadPrivateKey(c.PrivateKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load private key: %w", err)
	}
	publicKey, err := loadPublicKey(c.PublicKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load public key: %w", err)
	}
	return privateKey, publicKey, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(keyData)
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(keyData)
}
