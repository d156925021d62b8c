package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from environment variables.
// Non-empty values override project.json.
type Env struct {
	ProjectDir string `env:"SCENEKIT_PROJECT_DIR"`
	Scene      string `env:"SCENEKIT_SCENE"`
	LogLevel   string `env:"SCENEKIT_LOG_LEVEL" envDefault:"info"`
	DevLog     bool   `env:"SCENEKIT_DEV_LOG"`
}

// LoadEnv reads Env from the process environment
func LoadEnv() (Env, error) {
	cfg, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadEnvFrom reads Env from the given variables instead of the process environment
func LoadEnvFrom(vars map[string]string) (Env, error) {
	cfg, err := env.ParseAsWithOptions[Env](env.Options{Environment: vars})
	if err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Apply overrides project values with the ones set in the environment
func (e Env) Apply(cfg *ProjectConfig) {
	if e.Scene != "" {
		cfg.StartScene = e.Scene
	}
}
