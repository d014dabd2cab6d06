// Package template defines the renderer-agnostic template seam. Renderers
// depend on TemplateRenderer so the pongo2 engine in the gotemplate
// subpackage can be swapped for a stub in tests or a custom engine in
// applications.
package template
