package odataapp_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/lunagic/odata/odata"
	"github.com/lunagic/odata/odataapp"
	"github.com/lunagic/odata/odataservices/cache"
	"github.com/lunagic/odata/odataservices/database"
	"github.com/lunagic/odata/odatahttp"
	"github.com/lunagic/odata/odatatest"
	"github.com/prometheus/client_golang/prometheus"
	"gotest.tools/v3/assert"
)

func NewTestConfig(t *testing.T) odataapp.AppConfig {
	config := odataapp.NewConfig()
	config.AppHTTPHost = "127.0.0.1"
	config.AppHTTPPort = 0
	config.SQLitePath = fmt.Sprintf("%s/database.sqlite", t.TempDir())

	return config
}

type testPerson struct {
	Name string
	City string
}

func insertPerson(t *testing.T, databaseService *database.Service, id int, person testPerson) {
	_, err := databaseService.Exec(
		t.Context(),
		"INSERT INTO people (id, name, city) VALUES (:id, :name, :city)",
		map[string]any{":id": id, ":name": person.Name, ":city": person.City},
	)
	assert.NilError(t, err)
}

func newTestDatabase(t *testing.T, config odataapp.AppConfig) *database.Service {
	databaseService, err := config.Database()
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = databaseService.Close()
	})

	_, err = databaseService.Exec(t.Context(), `
		CREATE TABLE people (
			id INTEGER NOT NULL PRIMARY KEY,
			name VARCHAR(64) NOT NULL,
			city VARCHAR(64) NOT NULL,
			password VARCHAR(64) NOT NULL DEFAULT ''
		)
	`, nil)
	assert.NilError(t, err)

	for i, person := range []testPerson{
		{Name: "alice", City: "paris"},
		{Name: "bob", City: "london"},
		{Name: "carol", City: "paris"},
	} {
		insertPerson(t, databaseService, i+1, person)
	}

	return databaseService
}

var peopleCollection = database.Collection{
	Name:    "people",
	Columns: []string{"id", "name", "city"},
	DefaultOrderBy: []odata.OrderBy{
		{Property: "id", Direction: odata.Ascending},
	},
	MaxTop: 50,
}

func TestCollectionEndpoint(t *testing.T) {
	t.Parallel()

	config := NewTestConfig(t)
	app, err := odataapp.NewApp(
		t.Context(),
		config,
		odataapp.WithDatabase(newTestDatabase(t, config)),
		odataapp.WithCollection("/people", peopleCollection),
	)
	assert.NilError(t, err)

	testCases := map[string]odatatest.HTTPTestCase{
		"filter with count": {
			Request: odatatest.HTTPTestCaseRequest{
				Path: "/people",
				Query: url.Values{
					"$filter": {"city eq 'paris'"},
					"$select": {"name"},
					"$count":  {"true"},
				},
			},
			Expected: odatatest.HTTPTestCaseResponse{
				Status: http.StatusOK,
				Body:   `{"@odata.count":2,"value":[{"name":"alice"},{"name":"carol"}]}`,
			},
		},
		"paging": {
			Request: odatatest.HTTPTestCaseRequest{
				Path: "/people",
				Query: url.Values{
					"$select":  {"name"},
					"$orderby": {"name desc"},
					"$top":     {"1"},
					"$skip":    {"1"},
				},
			},
			Expected: odatatest.HTTPTestCaseResponse{
				Status: http.StatusOK,
				Body:   `{"value":[{"name":"bob"}]}`,
			},
		},
		"no matches": {
			Request: odatatest.HTTPTestCaseRequest{
				Path:  "/people",
				Query: url.Values{"$filter": {"city in ('rome','oslo')"}},
			},
			Expected: odatatest.HTTPTestCaseResponse{
				Status: http.StatusOK,
				Body:   `{"value":[]}`,
			},
		},
		"malformed top": {
			Request: odatatest.HTTPTestCaseRequest{
				Path:  "/people",
				Query: url.Values{"$top": {"ten"}},
			},
			Expected: odatatest.HTTPTestCaseResponse{
				Status: http.StatusBadRequest,
				Body:   `{"error":{"code":"BadRequest","target":"top","message":"top should be an integer"}}`,
			},
		},
		"hidden column": {
			Request: odatatest.HTTPTestCaseRequest{
				Path:  "/people",
				Query: url.Values{"$filter": {"password eq 'x'"}},
			},
			Expected: odatatest.HTTPTestCaseResponse{
				Status: http.StatusBadRequest,
				Body: odatahttp.ErrorResponse{
					Error: odatahttp.ErrorDetail{
						Code:    odatahttp.CodeBadRequest,
						Message: `unknown column: "password"`,
					},
				},
			},
		},
		"wrong method": {
			Request: odatatest.HTTPTestCaseRequest{
				Method: http.MethodPost,
				Path:   "/people",
			},
			Expected: odatatest.HTTPTestCaseResponse{
				Status:  http.StatusMethodNotAllowed,
				Headers: http.Header{"Allow": {http.MethodGet}},
				Body:    "Method Not Allowed",
			},
		},
		"unknown path": {
			Request: odatatest.HTTPTestCaseRequest{Path: "/pets"},
			Expected: odatatest.HTTPTestCaseResponse{
				Status: http.StatusNotFound,
				Body:   "404 page not found",
			},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			odatatest.TestRequest(t, app.Handler(), testCase)
		})
	}
}

func TestCollectionEndpointWithoutDollar(t *testing.T) {
	t.Parallel()

	config := NewTestConfig(t)
	config.AppODataWithoutDollar = true

	app, err := odataapp.NewApp(
		t.Context(),
		config,
		odataapp.WithDatabase(newTestDatabase(t, config)),
		odataapp.WithCollection("/people", peopleCollection),
	)
	assert.NilError(t, err)

	odatatest.TestRequest(t, app.Handler(), odatatest.HTTPTestCase{
		Request: odatatest.HTTPTestCaseRequest{
			Path:  "/people",
			Query: url.Values{"select": {"name"}, "top": {"1"}, "$top": {"2"}},
		},
		Expected: odatatest.HTTPTestCaseResponse{
			Status: http.StatusOK,
			Body:   `{"value":[{"name":"alice"}]}`,
		},
	})
}

type downCacheDriver struct{}

func (downCacheDriver) Delete(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

func (downCacheDriver) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection refused")
}

func (downCacheDriver) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	return errors.New("connection refused")
}

func TestCollectionEndpointCacheDown(t *testing.T) {
	t.Parallel()

	config := NewTestConfig(t)
	databaseService := newTestDatabase(t, config)

	app, err := odataapp.NewApp(
		t.Context(),
		config,
		odataapp.WithDatabase(databaseService),
		odataapp.WithCache(downCacheDriver{}, time.Minute),
		odataapp.WithCollection("/people", peopleCollection),
	)
	assert.NilError(t, err)

	odatatest.TestRequest(t, app.Handler(), odatatest.HTTPTestCase{
		Request: odatatest.HTTPTestCaseRequest{
			Path:  "/people",
			Query: url.Values{"$select": {"name"}, "$filter": {"city eq 'paris'"}},
		},
		Expected: odatatest.HTTPTestCaseResponse{
			Status: http.StatusOK,
			Body:   `{"value":[{"name":"alice"},{"name":"carol"}]}`,
		},
	})
}

func TestCollectionEndpointCache(t *testing.T) {
	t.Parallel()

	config := NewTestConfig(t)
	databaseService := newTestDatabase(t, config)

	cacheDriver, err := cache.NewDriverMemory(16)
	assert.NilError(t, err)

	registry := prometheus.NewRegistry()

	app, err := odataapp.NewApp(
		t.Context(),
		config,
		odataapp.WithDatabase(databaseService),
		odataapp.WithCache(cacheDriver, time.Minute),
		odataapp.WithMetrics(registry),
		odataapp.WithCollection("/people", peopleCollection),
	)
	assert.NilError(t, err)

	request := odatatest.HTTPTestCaseRequest{
		Path:  "/people",
		Query: url.Values{"$select": {"name"}, "$filter": {"city eq 'paris'"}},
	}
	cached := odatatest.HTTPTestCaseResponse{
		Status: http.StatusOK,
		Body:   `{"value":[{"name":"alice"},{"name":"carol"}]}`,
	}

	odatatest.TestRequest(t, app.Handler(), odatatest.HTTPTestCase{Request: request, Expected: cached})

	// A new row does not show up until the cached page expires
	insertPerson(t, databaseService, 4, testPerson{Name: "dave", City: "paris"})
	odatatest.TestRequest(t, app.Handler(), odatatest.HTTPTestCase{Request: request, Expected: cached})

	// Equivalent spelling of the same query shares the cache entry
	odatatest.TestRequest(t, app.Handler(), odatatest.HTTPTestCase{
		Request: odatatest.HTTPTestCaseRequest{
			Path:     "/people",
			RawQuery: "$filter=city%20%20eq%20'paris'&$select=name",
		},
		Expected: cached,
	})

	families, err := registry.Gather()
	assert.NilError(t, err)

	totals := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			totals[family.GetName()] += metric.GetCounter().GetValue()
		}
	}

	assert.Equal(t, float64(2), totals["odata_odata_cache_hits_total"])
	assert.Equal(t, float64(1), totals["odata_odata_cache_misses_total"])
	assert.Equal(t, float64(3), totals["odata_odata_decodes_total"])

	odatatest.TestRequest(t, app.Handler(), odatatest.HTTPTestCase{
		Request:  odatatest.HTTPTestCaseRequest{Path: "/metrics"},
		Expected: odatatest.HTTPTestCaseResponse{Status: http.StatusOK},
	})
}

func TestNewAppNeedsDatabaseForCollections(t *testing.T) {
	t.Parallel()

	_, err := odataapp.NewApp(
		t.Context(),
		NewTestConfig(t),
		odataapp.WithCollection("/people", peopleCollection),
	)
	assert.ErrorIs(t, err, odataapp.ErrNoDatabase)
}

func TestServeStopsWithContext(t *testing.T) {
	t.Parallel()

	app, err := odataapp.NewApp(t.Context(), NewTestConfig(t))
	assert.NilError(t, err)

	serveCtx, stop := context.WithCancel(t.Context())
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- app.Serve(serveCtx)
	}()

	time.Sleep(time.Millisecond * 100)
	stop()

	select {
	case err := <-done:
		assert.NilError(t, err)
	case <-time.After(time.Second * 15):
		t.Fatal(errors.New("server did not stop"))
	}
}
