package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/stylemail-dev/stylemail/pkg/cli/config"
	httpctrl "github.com/stylemail-dev/stylemail/pkg/controller/http"
	"github.com/stylemail-dev/stylemail/pkg/service/style"
	"github.com/stylemail-dev/stylemail/pkg/usecase"
	"github.com/stylemail-dev/stylemail/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var genTimeout time.Duration
	var promptBudget int
	var retrieveCount int
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var nudgeCfg config.Nudge
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("STYLEMAIL_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "generation-timeout",
			Usage:       "Timeout for one LLM generation call",
			Value:       60 * time.Second,
			Sources:     cli.EnvVars("STYLEMAIL_GENERATION_TIMEOUT"),
			Destination: &genTimeout,
		},
		&cli.IntFlag{
			Name:        "prompt-budget",
			Usage:       "Maximum composed prompt size in characters",
			Value:       12000,
			Sources:     cli.EnvVars("STYLEMAIL_PROMPT_BUDGET"),
			Destination: &promptBudget,
		},
		&cli.IntFlag{
			Name:        "retrieve-count",
			Usage:       "Number of style samples retrieved per generation",
			Value:       5,
			Sources:     cli.EnvVars("STYLEMAIL_RETRIEVE_COUNT"),
			Destination: &retrieveCount,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, nudgeCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			sentryClose, err := sentryCfg.Configure(c.Root().Version)
			if err != nil {
				return goerr.Wrap(err, "failed to configure sentry")
			}
			defer sentryClose()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			styleSvc, err := style.New(llmClient, repo.StyleSample())
			if err != nil {
				return goerr.Wrap(err, "failed to create style service")
			}

			uc := usecase.New(repo, llmClient, styleSvc,
				usecase.WithGenerationTimeout(genTimeout),
				usecase.WithPromptBudget(promptBudget),
				usecase.WithRetrieveCount(retrieveCount),
			)

			var httpOpts []httpctrl.Options
			nudgeClient, err := nudgeCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure nudge provider client")
			}
			if nudgeClient != nil {
				httpOpts = append(httpOpts, httpctrl.WithNudgeClient(nudgeClient))
				logging.Default().Info("Nudge provider client enabled")
			} else {
				logging.Default().Info("Nudge provider not configured, nudge endpoints will use the local nudge store")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "backend", repoCfg.Backend())
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
