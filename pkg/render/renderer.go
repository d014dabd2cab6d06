package render

import (
	"context"

	"github.com/goliatone/go-formset/pkg/model"
)

// Renderer converts a form definition into a byte representation (HTML,
// form-encoded payloads collected from a terminal, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.Form, options RenderOptions) ([]byte, error)
}
