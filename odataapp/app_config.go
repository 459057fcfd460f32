package odataapp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lunagic/odata/odataservices/cache"
	"github.com/lunagic/odata/odataservices/database"
	"github.com/lunagic/odata/odatahttp"
	"github.com/lunagic/poseidon/poseidon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ConfigurationFunc func(app *App) error

func WithLogger(logger *slog.Logger) ConfigurationFunc {
	return func(app *App) error {
		app.logger = logger

		return nil
	}
}

func WithHandler(path string, handler http.Handler) ConfigurationFunc {
	return func(app *App) error {
		app.handlers[path] = handler

		return nil
	}
}

func WithMiddlewares(middlewares poseidon.Middlewares) ConfigurationFunc {
	return func(app *App) error {
		app.middlewares = middlewares

		return nil
	}
}

func WithDatabase(databaseService *database.Service) ConfigurationFunc {
	return func(app *App) error {
		app.database = databaseService

		return nil
	}
}

func WithCollection(path string, collection database.Collection) ConfigurationFunc {
	return WithCollections([]CollectionRoute{{Path: path, Collection: collection}})
}

func WithCollections(routes []CollectionRoute) ConfigurationFunc {
	return func(app *App) error {
		app.collections = append(app.collections, routes...)

		return nil
	}
}

// WithCache caches collection pages for duration.
func WithCache(driver cache.Driver, duration time.Duration) ConfigurationFunc {
	return func(app *App) error {
		app.cacheDriver = driver
		app.cacheDuration = duration

		return nil
	}
}

// WithMetrics registers the OData metrics on registry and serves them at
// /metrics.
func WithMetrics(registry *prometheus.Registry) ConfigurationFunc {
	return func(app *App) error {
		app.metrics = odatahttp.NewMetrics(app.config.AppMetricsNamespace, registry)

		return WithHandler("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))(app)
	}
}
