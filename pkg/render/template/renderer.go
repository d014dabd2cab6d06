package template

import (
	"io"
)

// TemplateRenderer executes a named template with view data. The rendered
// output is returned and also copied to every non-nil writer.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
