package cli

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lunagic/odata/odataapp"
	"github.com/lunagic/odata/odataservices/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured collections over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(rootOpts)

			config, err := odataapp.LoadConfig(rootOpts.ConfigFile)
			if err != nil {
				return err
			}

			configFuncs := []odataapp.ConfigurationFunc{
				odataapp.WithLogger(logger),
				odataapp.WithMetrics(prometheus.NewRegistry()),
			}

			if config.AppCollectionsFile != "" {
				routes, err := odataapp.LoadCollections(config.AppCollectionsFile)
				if err != nil {
					return err
				}

				databaseService, err := config.Database(database.WithLogger(logger))
				if err != nil {
					return err
				}
				defer func() {
					_ = databaseService.Close()
				}()

				configFuncs = append(configFuncs,
					odataapp.WithDatabase(databaseService),
					odataapp.WithCollections(routes),
				)
			}

			cacheDriver, err := config.Cache()
			switch {
			case errors.Is(err, odataapp.ErrCacheDisabled):
			case err != nil:
				return err
			default:
				configFuncs = append(configFuncs, odataapp.WithCache(cacheDriver, config.AppCacheTTL))
			}

			app, err := odataapp.NewApp(ctx, config, configFuncs...)
			if err != nil {
				return err
			}

			return app.Serve(ctx)
		},
	}
}

func newLogger(rootOpts *RootOptions) *slog.Logger {
	if rootOpts.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}

	return slog.Default()
}
