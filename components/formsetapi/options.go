package formsetapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/render"
)

// GuardFunc rejects requests before they are handled. Returning an HTTPError
// selects the response status; other errors produce 403.
type GuardFunc func(r *http.Request) error

// EntryRenderer renders whole forms and single formset entries.
type EntryRenderer interface {
	render.Renderer
	RenderEntry(ctx context.Context, form model.Form, prefix string, index int, opts render.RenderOptions) ([]byte, error)
}

const (
	defaultReplicatePath = "/replicate"
	defaultFormsPath     = "/forms"
	defaultMaxBodyBytes  = 1 << 20
	defaultMaxTimes      = 100
)

type Options struct {
	ReplicatePath string
	FormsPath     string
	// Wildcard is appended to the forms prefix pattern: "" for
	// http.ServeMux (trailing slash), "*" for chi.
	Wildcard     string
	MaxBodyBytes int64
	MaxTimes     int
	Guard        GuardFunc
	Renderer     EntryRenderer
	Logger       *zap.Logger

	Forms map[string]model.Form
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		ReplicatePath: defaultReplicatePath,
		FormsPath:     defaultFormsPath,
		MaxBodyBytes:  defaultMaxBodyBytes,
		MaxTimes:      defaultMaxTimes,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.ReplicatePath == "" {
		opts.ReplicatePath = defaultReplicatePath
	}
	if opts.FormsPath == "" {
		opts.FormsPath = defaultFormsPath
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.MaxTimes <= 0 {
		opts.MaxTimes = defaultMaxTimes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Forms != nil {
		forms := make(map[string]model.Form, len(opts.Forms))
		for id, form := range opts.Forms {
			forms[id] = form
		}
		opts.Forms = forms
	}
	return opts
}

func WithReplicatePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ReplicatePath = path
	}
}

func WithFormsPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FormsPath = path
	}
}

func WithWildcard(wildcard string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Wildcard = wildcard
	}
}

func WithMaxBodyBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = limit
	}
}

func WithMaxTimes(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxTimes = limit
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithRenderer(renderer EntryRenderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = renderer
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithForms registers forms served by the forms routes, keyed by form id.
func WithForms(forms ...model.Form) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if o.Forms == nil {
			o.Forms = make(map[string]model.Form, len(forms))
		}
		for _, form := range forms {
			o.Forms[form.ID] = form
		}
	}
}
