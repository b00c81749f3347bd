package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env is the process environment of the odekit command.
type Env struct {
	DataDir   string `env:"ODEKIT_DATA_DIR"   envDefault:".odekit"`
	LogLevel  string `env:"ODEKIT_LOG_LEVEL"  envDefault:"warn"`
	LogFormat string `env:"ODEKIT_LOG_FORMAT" envDefault:"text"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var e Env
	err := ParseEnv(&e)
	return e, err
}
