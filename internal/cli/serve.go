package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hexwall/skirmish/internal/config"
	"github.com/hexwall/skirmish/internal/factory"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			slog.SetDefault(logger)

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			app, err := factory.New(cfg, logger)
			if err != nil {
				return err
			}

			if err := app.Gateway.Listen(); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				logger.Info("shutdown signal received")
				cancel()
			}()

			errCh := make(chan error, 1)
			go func() {
				errCh <- app.AdminRouter.Start()
			}()

			gwErr := app.Gateway.Run(ctx)

			if err := app.AdminRouter.Shutdown(context.Background()); err != nil {
				logger.Error("admin shutdown error", slog.String("error", err.Error()))
			}
			app.Pool.Close()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			default:
			}

			logger.Info("server stopped")
			return gwErr
		},
	}
}
