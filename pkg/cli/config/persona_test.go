package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/stylemail-dev/stylemail/pkg/cli/config"
)

func writePersonaFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "personas.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadPersonaConfig(t *testing.T) {
	t.Run("loads personas with samples", func(t *testing.T) {
		path := writePersonaFile(t, `
[[persona]]
user_id = "user_123"
samples = [
  "Hi team, quick note on the sprint.",
  "Thanks for pushing this through. Best, Alex",
]

[[persona]]
user_id = "user_456"
samples = ["Dear colleagues,"]
`)

		cfg, err := config.LoadPersonaConfig(path)
		gt.NoError(t, err).Required()
		gt.Array(t, cfg.Personas).Length(2)
		gt.Value(t, cfg.Personas[0].UserID).Equal("user_123")
		gt.Array(t, cfg.Personas[0].Samples).Length(2)
	})

	t.Run("rejects empty file", func(t *testing.T) {
		path := writePersonaFile(t, "")
		_, err := config.LoadPersonaConfig(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("rejects persona without samples", func(t *testing.T) {
		path := writePersonaFile(t, `
[[persona]]
user_id = "user_123"
samples = []
`)
		_, err := config.LoadPersonaConfig(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("rejects duplicate user_id", func(t *testing.T) {
		path := writePersonaFile(t, `
[[persona]]
user_id = "user_123"
samples = ["a"]

[[persona]]
user_id = "user_123"
samples = ["b"]
`)
		_, err := config.LoadPersonaConfig(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := config.LoadPersonaConfig("/nonexistent/personas.toml")
		gt.Value(t, err).NotNil()
	})
}
