package widgets

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
)

// Built-in widget kinds exposed by the registry.
const (
	WidgetTooltip = "tooltip"
	WidgetPopover = "popover"
)

// ToggleAttr is the attribute Bootstrap-style markup uses to request a widget.
const ToggleAttr = "data-bs-toggle"

// Matcher decides whether an element should be initialised as a widget.
type Matcher func(n *html.Node) bool

// Widget is an element resolved to a widget kind.
type Widget struct {
	Kind string
	Node *html.Node
}

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry resolves widget kinds for elements based on registered matchers.
// Higher priority wins; ties fall back to registration order. An empty
// registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in tooltip and popover
// matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget kind for an element.
func (r *Registry) Resolve(n *html.Node) (string, bool) {
	if r == nil || n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, entry := range r.sorted() {
		if entry.match(n) {
			return entry.name, true
		}
	}
	return "", false
}

// Discover walks root and returns every element resolving to a widget, in
// document order.
func (r *Registry) Discover(root *html.Node) []Widget {
	if r == nil || root == nil {
		return nil
	}
	rules := r.sorted()
	if len(rules) == 0 {
		return nil
	}
	var out []Widget
	formset.Walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		for _, entry := range rules {
			if entry.match(n) {
				out = append(out, Widget{Kind: entry.name, Node: n})
				break
			}
		}
		return true
	})
	return out
}

func (r *Registry) sorted() []rule {
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	return rules
}

// ToggleMatcher matches elements whose data-bs-toggle equals kind.
func ToggleMatcher(kind string) Matcher {
	return func(n *html.Node) bool {
		return strings.EqualFold(strings.TrimSpace(formset.Attr(n, ToggleAttr)), kind)
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetPopover, 90, ToggleMatcher(WidgetPopover))
	r.Register(WidgetTooltip, 80, ToggleMatcher(WidgetTooltip))
}
