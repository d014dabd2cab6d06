package behaviors

import (
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/widgets"
)

// WidgetAttr marks initialised widget triggers with their kind.
const WidgetAttr = "data-fg-widget"

// Widgets initialises every third-party widget trigger (tooltips, popovers
// and custom registrations) found on the page.
type Widgets struct {
	Registry *widgets.Registry
	// Init, when set, is called for each discovered widget.
	Init func(widgets.Widget)
}

func (w *Widgets) Name() string {
	return "widgets"
}

func (w *Widgets) Attach(page *Page) bool {
	found := w.initialise(page.doc)
	if len(found) == 0 {
		return false
	}
	counts := make(map[string]int)
	for _, widget := range found {
		counts[widget.Kind]++
	}
	page.Logger().Debug("Widgets initialised",
		zap.Int("tooltips", counts[widgets.WidgetTooltip]),
		zap.Int("popovers", counts[widgets.WidgetPopover]),
		zap.Int("total", len(found)))
	return true
}

// initialise marks and initialises every trigger below root.
func (w *Widgets) initialise(root *html.Node) []widgets.Widget {
	registry := w.Registry
	if registry == nil {
		registry = widgets.NewRegistry()
	}
	found := registry.Discover(root)
	for _, widget := range found {
		formset.SetAttr(widget.Node, WidgetAttr, widget.Kind)
		if w.Init != nil {
			w.Init(widget)
		}
	}
	return found
}

// unmark drops WidgetAttr below root. Replicated entries copy the marker from
// the template although their triggers were never initialised.
func unmark(root *html.Node) {
	formset.Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			formset.RemoveAttr(n, WidgetAttr)
		}
		return true
	})
}
