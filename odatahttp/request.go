package odatahttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lunagic/odata/odata"
)

type contextKey struct{}

type config struct {
	decoderConfigFuncs []odata.DecoderConfigFunc
	logger             *slog.Logger
	metrics            *Metrics
}

type ConfigFunc func(config *config)

func WithDecoderConfig(decoderConfigFuncs ...odata.DecoderConfigFunc) ConfigFunc {
	return func(config *config) {
		config.decoderConfigFuncs = append(config.decoderConfigFuncs, decoderConfigFuncs...)
	}
}

func WithLogger(logger *slog.Logger) ConfigFunc {
	return func(config *config) {
		config.logger = logger
	}
}

func WithMetrics(metrics *Metrics) ConfigFunc {
	return func(config *config) {
		config.metrics = metrics
	}
}

func newConfig(configFuncs []ConfigFunc) *config {
	c := &config{
		logger: slog.Default(),
	}

	for _, configFunc := range configFuncs {
		configFunc(c)
	}

	return c
}

func (c *config) decode(r *http.Request) (odata.Query, error) {
	query, err := FromRequest(r, c.decoderConfigFuncs...)
	c.metrics.RecordDecode(err)
	if err != nil {
		c.logger.InfoContext(r.Context(), "OData Query Rejected",
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"error", err,
		)
	}

	return query, err
}

// FromRequest decodes the OData parameters of the request URL.
func FromRequest(r *http.Request, configFuncs ...odata.DecoderConfigFunc) (odata.Query, error) {
	return odata.Decode(r.URL.RawQuery, configFuncs...)
}

func NewContext(ctx context.Context, query odata.Query) context.Context {
	return context.WithValue(ctx, contextKey{}, query)
}

// FromContext returns the query stored by Middleware.
func FromContext(ctx context.Context) (odata.Query, bool) {
	query, ok := ctx.Value(contextKey{}).(odata.Query)

	return query, ok
}

// Middleware decodes the query once per request and stores it in the request
// context. Requests with a malformed query are answered with a 400 and never
// reach next.
func Middleware(configFuncs ...ConfigFunc) func(next http.Handler) http.Handler {
	c := newConfig(configFuncs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query, err := c.decode(r)
			if err != nil {
				RespondError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), query)))
		})
	}
}

// ArgumentProvider supplies an odata.Query to router methods. The query
// stored by Middleware is reused when present. On failure the error response
// has already been written.
func ArgumentProvider(configFuncs ...ConfigFunc) func(w http.ResponseWriter, r *http.Request) (odata.Query, error) {
	c := newConfig(configFuncs)

	return func(w http.ResponseWriter, r *http.Request) (odata.Query, error) {
		if query, ok := FromContext(r.Context()); ok {
			return query, nil
		}

		query, err := c.decode(r)
		if err != nil {
			RespondError(w, r, err)
			return odata.Query{}, err
		}

		return query, nil
	}
}
