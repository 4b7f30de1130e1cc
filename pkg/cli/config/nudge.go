package config

import (
	"github.com/stylemail-dev/stylemail/pkg/service/nudge"
	"github.com/urfave/cli/v3"
)

// Nudge holds configuration for the external nudge data provider
type Nudge struct {
	baseURL string
}

// Flags returns CLI flags for nudge provider configuration
func (n *Nudge) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "nudge-api-url",
			Usage:       "Base URL of the external nudge data provider",
			Sources:     cli.EnvVars("STYLEMAIL_NUDGE_API_URL"),
			Destination: &n.baseURL,
		},
	}
}

// Configure creates a nudge provider client. Returns nil when no base
// URL is configured (nudge data endpoints will be disabled).
func (n *Nudge) Configure() (*nudge.Client, error) {
	if n.baseURL == "" {
		return nil, nil
	}
	return nudge.New(n.baseURL)
}
