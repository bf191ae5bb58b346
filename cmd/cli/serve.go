package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/robfig/cron"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hookline/hookline/internal/server"
)

// NewServeCommand creates the HTTP server command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with scheduled tool refreshes",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return err
			}

			container := NewContainer(config)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if count, err := container.Registry.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("Initial tool refresh failed, serving with an empty registry until the next scheduled refresh")
			} else {
				log.Info().Int("tools", count).Msg("Tool registry ready")
			}

			scheduler := cron.New()

			err = scheduler.AddFunc(config.RefreshSchedule, func() {
				if _, err := container.Registry.Refresh(context.Background()); err != nil {
					log.Error().Err(err).Msg("Scheduled tool refresh failed")
				}
			})
			if err != nil {
				return err
			}

			scheduler.Start()
			defer scheduler.Stop()

			app := server.NewHTTPServer(ctx, server.HTTPServerDependencies{
				Registry: container.Registry,
				Executor: container.Executor,
				Agent:    container.Agent,
			})

			log.Info().Str("address", config.HTTPAddress).Msg("Starting HTTP server")

			if err := app.Listen(config.HTTPAddress, fiber.ListenConfig{
				GracefulContext:       ctx,
				DisableStartupMessage: true,
			}); err != nil {
				log.Error().Err(err).Msg("HTTP server failed")
				return err
			}

			log.Info().Msg("Server stopped")
			return nil
		},
	}
}
