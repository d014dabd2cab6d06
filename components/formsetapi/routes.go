package formsetapi

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux and chi routers.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full mount path for routePath under basePath.
func MountPath(basePath, routePath string) string {
	return mountPath(basePath, routePath)
}

// RegisterRoutes registers the replicate and forms handlers under basePath
// on mux and returns the registered patterns.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) ([]string, error) {
	return RegisterRoutesWithOptions(mux, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions registers handlers using a pre-built Options
// value.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) ([]string, error) {
	if mux == nil {
		return nil, fmt.Errorf("formsetapi: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })

	replicatePattern := mountPath(basePath, opts.ReplicatePath)
	mux.Handle(replicatePattern, ReplicateHandlerWithOptions(opts))

	formsPrefix := mountPath(basePath, opts.FormsPath)
	formsPattern := strings.TrimRight(formsPrefix, "/") + "/" + opts.Wildcard
	mux.Handle(formsPattern, FormsHandlerWithOptions(opts, formsPrefix))

	return []string{replicatePattern, formsPattern}, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
