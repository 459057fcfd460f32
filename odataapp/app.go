package odataapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/lunagic/odata/odata"
	"github.com/lunagic/odata/odataservices/cache"
	"github.com/lunagic/odata/odataservices/database"
	"github.com/lunagic/odata/odatahttp"
	"github.com/lunagic/poseidon/poseidon"
)

func NewApp(
	ctx context.Context,
	config AppConfig,
	configFuncs ...ConfigurationFunc,
) (
	*App,
	error,
) {
	app := &App{
		config:   config,
		handlers: map[string]http.Handler{},
		logger:   slog.Default(),
		typeScript: typeScriptConfig{
			typesMap:              map[string]reflect.Type{},
			argumentTypesToIgnore: map[reflect.Type]bool{},
		},
		autoRouter: autoRouterConfig{
			argumentMapping: map[reflect.Type]func(w http.ResponseWriter, r *http.Request) (reflect.Value, error){},
		},
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(app); err != nil {
			return nil, err
		}
	}

	if _, found := app.autoRouter.argumentMapping[reflect.TypeFor[odata.Query]()]; !found {
		if err := WithRouterArgumentProvider(odatahttp.ArgumentProvider(app.odataConfigFuncs()...))(app); err != nil {
			return nil, err
		}
	}

	if len(app.collections) > 0 && app.database == nil {
		return nil, ErrNoDatabase
	}

	for _, route := range app.collections {
		if _, found := app.handlers[route.Path]; found {
			return nil, fmt.Errorf("duplicate handler for path %s", route.Path)
		}

		app.handlers[route.Path] = app.collectionHandler(route.Collection)
	}

	if err := app.calculateTypeScript(); err != nil {
		return nil, err
	}

	return app, nil
}

type App struct {
	config        AppConfig
	logger        *slog.Logger
	handlers      map[string]http.Handler
	middlewares   poseidon.Middlewares
	collections   []CollectionRoute
	database      *database.Service
	cacheDriver   cache.Driver
	cacheDuration time.Duration
	metrics       *odatahttp.Metrics
	typeScript    typeScriptConfig
	autoRouter    autoRouterConfig
}

func (app *App) odataConfigFuncs() []odatahttp.ConfigFunc {
	return []odatahttp.ConfigFunc{
		odatahttp.WithDecoderConfig(app.config.DecoderConfigFuncs()...),
		odatahttp.WithLogger(app.logger),
		odatahttp.WithMetrics(app.metrics),
	}
}

// Serve the application over HTTP until ctx is cancelled
func (app *App) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", app.config.ListenAddr())
	if err != nil {
		return err
	}

	app.logger.Info(
		"Server Listen on HTTP",
		"addr", fmt.Sprintf("http://%s", strings.ReplaceAll(listener.Addr().String(), "[::]", "0.0.0.0")),
	)

	server := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: time.Second * 10,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("Server Shutdown", "error", err)
		}
	}()

	if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (app *App) Handler() http.Handler {
	mux := http.NewServeMux()

	for path, handler := range app.handlers {
		mux.Handle(path, handler)
	}

	return app.middlewares.Apply(mux)
}
