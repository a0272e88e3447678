package config

import (
	"fmt"
	"os"
)

// Config holds everything a service needs at startup. Every key is required
// and has no default: a missing variable is a configuration error and the
// service must not start.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	AMQPURL     string
	RedisAddr   string
}

// Load reads the service configuration from the environment. withRedis adds
// the read-model cache address required by the accounts service.
func Load(withRedis bool) (*Config, error) {
	cfg := &Config{}

	var err error
	if cfg.Port, err = require("PORT"); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL, err = require("DATABASE_URL"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = require("JWT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.AMQPURL, err = require("AMQP_URL"); err != nil {
		return nil, err
	}
	if withRedis {
		if cfg.RedisAddr, err = require("REDIS_ADDR"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func require(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is required", key)
	}
	return value, nil
}
