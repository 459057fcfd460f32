package odataapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/lunagic/odata/odata"
	"github.com/lunagic/odata/odataservices/cache"
	"github.com/lunagic/odata/odataservices/database"
	"github.com/lunagic/odata/odatahttp"
	"github.com/lunagic/poseidon/poseidon"
	"gopkg.in/yaml.v3"
)

var ErrNoDatabase = errors.New("collections need a database, see WithDatabase")

// CollectionRoute mounts a collection at an HTTP path.
type CollectionRoute struct {
	Path                string `yaml:"path"`
	database.Collection `yaml:",inline"`
}

type collectionsFile struct {
	Collections []CollectionRoute `yaml:"collections"`
}

// LoadCollections reads collection routes from a YAML file:
//
//	collections:
//	  - path: /people
//	    name: people
//	    columns: [id, name, age]
//	    defaultOrderBy:
//	      - property: id
//	        direction: asc
//	    maxTop: 100
func LoadCollections(path string) ([]CollectionRoute, error) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseCollections(fileBytes)
}

func ParseCollections(fileBytes []byte) ([]CollectionRoute, error) {
	file := collectionsFile{}
	if err := yaml.Unmarshal(fileBytes, &file); err != nil {
		return nil, err
	}

	for i, route := range file.Collections {
		if route.Name == "" {
			return nil, fmt.Errorf("collection %d: name is required", i)
		}

		if route.Path == "" {
			file.Collections[i].Path = "/" + route.Name
		}

		if !strings.HasPrefix(file.Collections[i].Path, "/") {
			return nil, fmt.Errorf("collection %s: path should start with a slash, got %q", route.Name, route.Path)
		}

		for _, orderBy := range route.DefaultOrderBy {
			if !orderBy.Direction.Valid() {
				return nil, fmt.Errorf("collection %s: %w: %q", route.Name, odata.ErrInvalidDirection, orderBy.Direction)
			}
		}
	}

	return file.Collections, nil
}

func (app *App) collectionHandler(collection database.Collection) http.Handler {
	provider := odatahttp.ArgumentProvider(app.odataConfigFuncs()...)

	var pages *cache.PageCache[database.Page]
	if app.cacheDriver != nil {
		pages = cache.NewPageCache[database.Page](app.cacheDriver, "odata", app.cacheDuration,
			cache.WithErrorHandler[database.Page](func(ctx context.Context, key string, err error) {
				app.logger.WarnContext(ctx, "Cache Unavailable",
					"key", key,
					"error", err,
				)
			}),
		)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		query, err := provider(w, r)
		if err != nil {
			return
		}

		load := func(ctx context.Context) (database.Page, error) {
			return collection.Find(ctx, app.database, query)
		}

		var page database.Page
		if pages == nil {
			page, err = load(r.Context())
		} else {
			var hit bool
			page, hit, err = pages.Fetch(r.Context(), collection.Name, query, load)
			app.metrics.RecordCache(collection.Name, hit)
		}

		if err != nil {
			app.respondError(w, r, err)
			return
		}

		poseidon.RespondJSON(w, http.StatusOK, page)
	})
}

func (app *App) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if odatahttp.StatusFor(err) == http.StatusInternalServerError {
		app.logger.ErrorContext(r.Context(), "Request Failed",
			"path", r.URL.Path,
			"error", err,
		)
	}

	odatahttp.RespondError(w, r, err)
}
