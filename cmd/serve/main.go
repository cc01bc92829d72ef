package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anrid/japan-population/pkg/config"
	"github.com/anrid/japan-population/pkg/server"
	"github.com/anrid/japan-population/pkg/stats"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "serve",
		Short:         "Run the proxy that holds the population API and model credentials",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.RequireServerCredentials(); err != nil {
				return err
			}

			log, err := config.NewLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			if !verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			backend, err := cfg.NewBackend(ctx)
			if err != nil {
				return err
			}

			srv := server.New(server.Options{
				Upstream:      stats.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, log),
				Backend:       backend,
				Timeout:       cfg.Generative.Timeout,
				AllowOrigins:  cfg.Server.AllowOrigins,
				RatePerSecond: cfg.Server.RatePerSecond,
				Burst:         cfg.Server.Burst,
				Log:           log,
			})

			log.Info("Starting server",
				zap.String("addr", cfg.Server.Addr),
				zap.String("provider", cfg.Generative.Provider))

			if err := srv.Run(ctx, cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "config.yaml", "config file")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
