package odataapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/lunagic/poseidon/poseidon"
	"github.com/lunagic/typescript-go/typescript"
)

const autoRouterQueryParamName = "method"

var ErrInvalidRouterMethod = errors.New("router methods should return a value and an optional error")

type Validator interface {
	Validate(r *http.Request) error
}

type autoRouterConfig struct {
	Prefix          string
	Type            reflect.Type
	argumentMapping map[reflect.Type]func(w http.ResponseWriter, r *http.Request) (reflect.Value, error)
}

// WithRouter exposes every exported method of T at prefix?method=<Name>.
// Arguments with a registered provider (odata.Query always has one) are
// injected, any other argument is decoded from the JSON body of a POST.
func WithRouter[T any](
	prefix string,
	router T,
	middlewares ...poseidon.Middleware,
) ConfigurationFunc {
	return func(app *App) error {
		app.autoRouter.Type = reflect.TypeFor[T]()
		app.autoRouter.Prefix = prefix

		for methodIndex := range app.autoRouter.Type.NumMethod() {
			method := app.autoRouter.Type.Method(methodIndex)
			if !method.IsExported() {
				continue
			}

			if err := validateRouterMethod(method.Type); err != nil {
				return fmt.Errorf("%s: %w", method.Name, err)
			}
		}

		return WithHandler(
			app.autoRouter.Prefix,
			poseidon.Middlewares(middlewares).Apply(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					app.serveRouter(w, r, reflect.ValueOf(router))
				}),
			),
		)(app)
	}
}

func validateRouterMethod(methodType reflect.Type) error {
	switch methodType.NumOut() {
	case 1:
		return nil
	case 2:
		if methodType.Out(1) == reflect.TypeFor[error]() {
			return nil
		}
	}

	return ErrInvalidRouterMethod
}

func (app *App) serveRouter(w http.ResponseWriter, r *http.Request, router reflect.Value) {
	methodDef, found := app.autoRouter.Type.MethodByName(r.URL.Query().Get(autoRouterQueryParamName))
	if !found || !methodDef.IsExported() {
		http.NotFound(w, r)
		return
	}

	method := router.MethodByName(methodDef.Name)

	in := []reflect.Value{}
	for inIndex := range methodDef.Type.NumIn() {
		inType := methodDef.Type.In(inIndex)

		// For struct methods index 0 is the receiver
		if inType == app.autoRouter.Type {
			continue
		}

		if provider, found := app.autoRouter.argumentMapping[inType]; found {
			value, err := provider(w, r)
			if err != nil {
				return
			}
			in = append(in, value)
			continue
		}

		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		payload := reflect.New(inType).Interface()
		if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
			poseidon.RespondJSON(w, http.StatusBadRequest, "request body should be valid json")
			return
		}

		if validator, ok := payload.(Validator); ok {
			if err := validator.Validate(r); err != nil {
				app.respondError(w, r, err)
				return
			}
		}

		in = append(in, reflect.ValueOf(payload).Elem())
	}

	outArgs := method.Call(in)
	if len(outArgs) > 1 {
		if err, _ := outArgs[1].Interface().(error); err != nil {
			app.respondError(w, r, err)
			return
		}
	}

	poseidon.RespondJSON(w, http.StatusOK, outArgs[0].Interface())
}

func WithRouterArgumentProvider[T any](customArgumentProvider func(w http.ResponseWriter, r *http.Request) (T, error)) ConfigurationFunc {
	return func(app *App) error {
		newType := reflect.TypeFor[T]()
		if _, found := app.autoRouter.argumentMapping[newType]; found {
			return errors.New("duplicate CustomArgumentProvider type, it was already registered")
		}

		app.typeScript.argumentTypesToIgnore[newType] = true
		app.autoRouter.argumentMapping[newType] = func(w http.ResponseWriter, r *http.Request) (reflect.Value, error) {
			result, err := customArgumentProvider(w, r)

			return reflect.ValueOf(result), err
		}

		return nil
	}
}

func (app *App) routerTypeScriptRoutes() map[string]typescript.Route {
	routes := map[string]typescript.Route{}
	if app.autoRouter.Prefix == "" {
		return routes
	}

	for methodIndex := range app.autoRouter.Type.NumMethod() {
		method := app.autoRouter.Type.Method(methodIndex)
		if !method.IsExported() {
			continue
		}

		httpMethod := http.MethodGet
		var httpRequest reflect.Type

		for inIndex := range method.Type.NumIn() {
			in := method.Type.In(inIndex)

			if in == app.autoRouter.Type {
				continue
			}

			if app.typeScript.argumentTypesToIgnore[in] {
				continue
			}

			httpMethod = http.MethodPost
			httpRequest = in
			break
		}

		routes[method.Name] = typescript.Route{
			Path:         fmt.Sprintf("%s?%s=%s", app.autoRouter.Prefix, autoRouterQueryParamName, method.Name),
			Method:       httpMethod,
			RequestBody:  httpRequest,
			ResponseBody: method.Type.Out(0),
		}
	}

	return routes
}
