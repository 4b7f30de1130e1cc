package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/cli/config"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"github.com/stylemail-dev/stylemail/pkg/service/style"
	"github.com/stylemail-dev/stylemail/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSeed() *cli.Command {
	var personaPath string
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "persona",
			Aliases:     []string{"p"},
			Usage:       "Path to persona TOML file",
			Required:    true,
			Sources:     cli.EnvVars("STYLEMAIL_PERSONA_FILE"),
			Destination: &personaPath,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Seed style profiles from a persona file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			personas, err := config.LoadPersonaConfig(personaPath)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}

			styleSvc, err := style.New(llmClient, repo.StyleSample())
			if err != nil {
				return err
			}

			success := color.New(color.FgGreen)
			for _, persona := range personas.Personas {
				samples, err := styleSvc.Seed(ctx, types.UserID(persona.UserID), persona.Samples)
				if err != nil {
					return goerr.Wrap(err, "failed to seed persona",
						goerr.V("userID", persona.UserID))
				}
				success.Printf("✓ seeded %d samples for %s\n", len(samples), persona.UserID)
			}

			return nil
		},
	}
}
