package formsetapi

import "net/http"

// Component bundles the formset handlers, their configuration, and routing
// helpers.
type Component struct {
	opts Options
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// ReplicateHandler returns the replicate handler.
func (c *Component) ReplicateHandler() http.Handler {
	if c == nil {
		return ReplicateHandler()
	}
	return ReplicateHandlerWithOptions(c.opts)
}

// FormsHandler returns the forms handler resolving paths below FormsPath.
func (c *Component) FormsHandler() http.Handler {
	if c == nil {
		return FormsHandler()
	}
	return FormsHandlerWithOptions(c.opts, c.opts.FormsPath)
}

// RegisterRoutes registers the component handlers under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) ([]string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath)
	}
	return RegisterRoutesWithOptions(mux, basePath, c.opts)
}
