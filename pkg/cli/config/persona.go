package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// Persona is one user's style profile definition in a seed file
type Persona struct {
	UserID  string   `toml:"user_id"`
	Samples []string `toml:"samples"`
}

// PersonaConfig is the root of a TOML persona seed file
type PersonaConfig struct {
	Personas []Persona `toml:"persona"`
}

// Validate checks the loaded personas for structural problems
func (c *PersonaConfig) Validate() error {
	if len(c.Personas) == 0 {
		return goerr.New("persona file contains no personas")
	}

	seen := make(map[string]bool)
	for _, p := range c.Personas {
		if p.UserID == "" {
			return goerr.New("persona user_id is required")
		}
		if seen[p.UserID] {
			return goerr.New("duplicate persona user_id", goerr.V("user_id", p.UserID))
		}
		seen[p.UserID] = true

		if len(p.Samples) == 0 {
			return goerr.New("persona has no samples", goerr.V("user_id", p.UserID))
		}
	}

	return nil
}

// LoadPersonaConfig loads persona definitions from a TOML file
func LoadPersonaConfig(path string) (*PersonaConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read persona file", goerr.V("path", path))
	}

	var config PersonaConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML persona file", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "persona validation failed", goerr.V("path", path))
	}

	return &config, nil
}
