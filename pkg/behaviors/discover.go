package behaviors

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/visibility"
	"github.com/goliatone/go-formset/pkg/widgets"
)

// Markup attributes emitted by the vanilla renderer.
const (
	AttrFormset           = "data-formset"
	AttrFormsetAdd        = "data-formset-add"
	AttrEntryClass        = formset.EntryClassAttr
	AttrCounter           = formset.CounterAttr
	AttrVisibilityControl = "data-visibility-control"
	AttrVisibilityName    = "data-visibility-name"
	AttrVisibilityRule    = "data-visibility-rule"
	AttrSubmitSpinner     = "data-submit-spinner"
	AttrBusyLabel         = "data-busy-label"
)

// DiscoverOption tunes the behaviours built by Discover.
type DiscoverOption func(*discoverConfig)

type discoverConfig struct {
	evaluator     visibility.Evaluator
	registry      *widgets.Registry
	insertedClass *string
}

// WithEvaluator sets the evaluator used by discovered toggles.
func WithEvaluator(evaluator visibility.Evaluator) DiscoverOption {
	return func(cfg *discoverConfig) {
		cfg.evaluator = evaluator
	}
}

// WithWidgetRegistry sets the registry used for widget discovery.
func WithWidgetRegistry(registry *widgets.Registry) DiscoverOption {
	return func(cfg *discoverConfig) {
		cfg.registry = registry
	}
}

// WithInsertedClass overrides the class added to replicated entries.
func WithInsertedClass(class string) DiscoverOption {
	return func(cfg *discoverConfig) {
		cfg.insertedClass = &class
	}
}

// Discover builds the behaviours advertised by data attributes in the
// page markup, attaches them, and returns those that attached.
func Discover(page *Page, opts ...DiscoverOption) []Behavior {
	var cfg discoverConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	entryWidgets := &Widgets{Registry: cfg.registry}
	candidates := []Behavior{entryWidgets}

	for _, section := range page.Query(hasAttr(AttrVisibilityRule)) {
		candidates = append(candidates, &Toggle{
			ControlID: formset.Attr(section, AttrVisibilityControl),
			SectionID: formset.Attr(section, "id"),
			Field:     formset.Attr(section, AttrVisibilityName),
			Rule:      formset.Attr(section, AttrVisibilityRule),
			Evaluator: cfg.evaluator,
		})
	}

	for _, button := range page.Query(hasAttr(AttrFormsetAdd)) {
		prefix := formset.Attr(button, AttrFormsetAdd)
		container := findContainer(page, prefix)
		if container == nil {
			continue
		}
		counterID := formset.Attr(container, AttrCounter)
		if counterID == "" {
			counterID = formset.CounterID(prefix)
		}
		replicatorOpts := []formset.Option{formset.WithPrefix(prefix)}
		if class := formset.Attr(container, AttrEntryClass); class != "" {
			replicatorOpts = append(replicatorOpts, formset.WithEntryClass(class))
		}
		if cfg.insertedClass != nil {
			replicatorOpts = append(replicatorOpts, formset.WithInsertedClass(*cfg.insertedClass))
		}
		candidates = append(candidates, &FormsetAdd{
			ButtonID:    formset.Attr(button, "id"),
			ContainerID: formset.Attr(container, "id"),
			CounterID:   counterID,
			Replicator:  formset.NewReplicator(replicatorOpts...),
			Widgets:     entryWidgets,
		})
	}

	for _, form := range page.Query(hasAttr(AttrSubmitSpinner)) {
		if form.Data != "form" {
			continue
		}
		label := ""
		if button := formset.FindFirst(form, hasAttr(AttrBusyLabel)); button != nil {
			label = formset.Attr(button, AttrBusyLabel)
		}
		candidates = append(candidates, &SubmitFeedback{
			FormID:    formset.Attr(form, "id"),
			SpinnerID: formset.Attr(form, AttrSubmitSpinner),
			BusyLabel: label,
		})
	}

	var attached []Behavior
	for _, b := range candidates {
		if page.Attach(b) != nil {
			attached = append(attached, b)
		}
	}
	return attached
}

func findContainer(page *Page, prefix string) *html.Node {
	containers := page.Query(func(n *html.Node) bool {
		return n.Type == html.ElementNode && formset.Attr(n, AttrFormset) == prefix && strings.TrimSpace(formset.Attr(n, "id")) != ""
	})
	if len(containers) == 0 {
		return nil
	}
	return containers[0]
}

func hasAttr(key string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		_, ok := formset.LookupAttr(n, key)
		return ok
	}
}
