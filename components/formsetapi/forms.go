package formsetapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/renderers/vanilla"
)

const indexParam = "index"

// FormsHandler builds the forms handler with default options plus any
// overrides. Paths are resolved relative to Options.FormsPath.
func FormsHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return FormsHandlerWithOptions(opts, opts.FormsPath)
}

// FormsHandlerWithOptions builds the forms handler for requests whose path
// starts with prefix.
func FormsHandlerWithOptions(opts Options, prefix string) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	prefix = strings.TrimRight(prefix, "/")

	renderer := opts.Renderer
	var initErr error
	if renderer == nil {
		renderer, initErr = vanilla.New(vanilla.WithDocument(true))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			writeError(w, StatusError{Code: http.StatusMethodNotAllowed})
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		if initErr != nil {
			opts.Logger.Error("Renderer unavailable", zap.Error(initErr))
			writeError(w, initErr)
			return
		}

		route, err := parseFormRoute(strings.TrimPrefix(r.URL.Path, prefix))
		if err != nil {
			writeError(w, err)
			return
		}
		form, ok := opts.Forms[route.formID]
		if !ok {
			writeError(w, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("form %q not found", route.formID)})
			return
		}

		query := r.URL.Query()
		renderOpts := render.RenderOptions{Values: queryValues(query)}

		var body []byte
		if route.prefix == "" {
			body, err = renderer.Render(r.Context(), form, renderOpts)
		} else {
			body, err = renderEntry(r, renderer, form, route.prefix, query.Get(indexParam), renderOpts)
		}
		if err != nil {
			opts.Logger.Warn("Form render failed",
				zap.String("form", route.formID),
				zap.String("formset", route.prefix),
				zap.Error(err))
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", renderer.ContentType())
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	})
}

func renderEntry(r *http.Request, renderer EntryRenderer, form model.Form, prefix, rawIndex string, opts render.RenderOptions) ([]byte, error) {
	if _, ok := form.Formset(prefix); !ok {
		return nil, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("formset %q not found", prefix)}
	}
	index, err := strconv.Atoi(strings.TrimSpace(rawIndex))
	if err != nil || index < 0 {
		return nil, StatusError{Code: http.StatusBadRequest, Err: errors.New("index must be a non-negative integer")}
	}
	delete(opts.Values, indexParam)
	return renderer.RenderEntry(r.Context(), form, prefix, index, opts)
}

type formRoute struct {
	formID string
	prefix string
}

// parseFormRoute accepts "/{id}" and "/{id}/formsets/{prefix}/entry".
func parseFormRoute(path string) (formRoute, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(segments) == 1 && segments[0] != "":
		return formRoute{formID: segments[0]}, nil
	case len(segments) == 4 && segments[0] != "" && segments[1] == "formsets" && segments[2] != "" && segments[3] == "entry":
		return formRoute{formID: segments[0], prefix: segments[2]}, nil
	default:
		return formRoute{}, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("no route for %q", path)}
	}
}

func queryValues(query map[string][]string) map[string]any {
	if len(query) == 0 {
		return nil
	}
	values := make(map[string]any, len(query))
	for key, raw := range query {
		if len(raw) == 0 {
			continue
		}
		values[key] = raw[0]
	}
	return values
}
