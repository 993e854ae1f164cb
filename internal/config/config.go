package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port          int    `envconfig:"PORT" default:"8080"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	Version       string `envconfig:"VERSION" default:"dev"`
	StoreEngine   string `envconfig:"STORE_ENGINE" default:"memory"`
	StoreFile     string `envconfig:"STORE_FILE" default:"bizdesk.json"`
	DatabaseURL   string `envconfig:"DATABASE_URL" default:""`
	KeyPrefix     string `envconfig:"KEY_PREFIX" default:"bizdesk"`
	BcryptCost    int    `envconfig:"BCRYPT_COST" default:"12"`
	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	SweepInterval int    `envconfig:"SWEEP_INTERVAL" default:"60"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
