package behaviors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/visibility"
)

// EventType names the DOM events behaviours listen for.
type EventType string

const (
	EventClick  EventType = "click"
	EventChange EventType = "change"
	EventSubmit EventType = "submit"
)

// ErrElementNotFound is returned when an event targets an unknown id.
var ErrElementNotFound = errors.New("behaviors: element not found")

// Event is delivered to listeners registered on Target.
type Event struct {
	Type   EventType
	Target *html.Node
}

// Listener handles an event. Listeners run while the page lock is held and
// must not dispatch further events.
type Listener func(ctx context.Context, event Event) error

// Behavior is an optional page behaviour. Attach wires listeners and reports
// false, leaving the page untouched, when a required element is missing.
type Behavior interface {
	Name() string
	Attach(page *Page) bool
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithLogger routes behaviour logs to logger.
func WithLogger(logger *zap.Logger) PageOption {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

type binding struct {
	target   *html.Node
	typ      EventType
	listener Listener
}

// Page wraps a parsed document. Events are dispatched one at a time, in the
// order they are received, like a browser's single event queue.
type Page struct {
	mu       sync.Mutex
	doc      *html.Node
	bindings []binding
	logger   *zap.Logger
}

// NewPage wraps doc.
func NewPage(doc *html.Node, opts ...PageOption) *Page {
	p := &Page{doc: doc, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// ParsePage parses r and wraps the resulting document.
func ParsePage(r io.Reader, opts ...PageOption) (*Page, error) {
	doc, err := formset.ParseDocument(r)
	if err != nil {
		return nil, err
	}
	return NewPage(doc, opts...), nil
}

// Logger returns the page logger.
func (p *Page) Logger() *zap.Logger {
	return p.logger
}

// Element returns the element with id. Attach-time helper; not synchronised
// with Dispatch.
func (p *Page) Element(id string) *html.Node {
	return formset.FindByID(p.doc, id)
}

// Query returns the elements below the document matching pred.
func (p *Page) Query(pred func(*html.Node) bool) []*html.Node {
	return formset.FindAll(p.doc, pred)
}

// On registers listener for typ events on target.
func (p *Page) On(target *html.Node, typ EventType, listener Listener) {
	if target == nil || listener == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindings = append(p.bindings, binding{target: target, typ: typ, listener: listener})
}

// Attach attaches every behaviour and returns the names of those that
// found their elements.
func (p *Page) Attach(behaviors ...Behavior) []string {
	var attached []string
	for _, b := range behaviors {
		if b == nil {
			continue
		}
		if !b.Attach(p) {
			p.logger.Debug("Behavior skipped, elements missing", zap.String("behavior", b.Name()))
			continue
		}
		attached = append(attached, b.Name())
	}
	return attached
}

// Dispatch delivers event to the listeners bound to its target, in
// registration order. The first listener error stops delivery.
func (p *Page) Dispatch(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispatchLocked(ctx, event)
}

func (p *Page) dispatchLocked(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, b := range p.bindings {
		if b.target != event.Target || b.typ != event.Type {
			continue
		}
		if err := b.listener(ctx, event); err != nil {
			return fmt.Errorf("behaviors: %s listener: %w", event.Type, err)
		}
	}
	return nil
}

// Click dispatches a click on the element with id.
func (p *Page) Click(ctx context.Context, id string) error {
	return p.dispatchByID(ctx, id, EventClick, nil)
}

// Submit dispatches a submit event on the form with id.
func (p *Page) Submit(ctx context.Context, id string) error {
	return p.dispatchByID(ctx, id, EventSubmit, nil)
}

// Change sets the control value and dispatches a change event. Checkboxes
// and radios treat a truthy value as checked; selects mark the matching
// option selected.
func (p *Page) Change(ctx context.Context, id, value string) error {
	return p.dispatchByID(ctx, id, EventChange, func(n *html.Node) {
		SetControlValue(n, value)
	})
}

func (p *Page) dispatchByID(ctx context.Context, id string, typ EventType, mutate func(*html.Node)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := formset.FindByID(p.doc, id)
	if target == nil {
		return fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	if mutate != nil {
		mutate(target)
	}
	return p.dispatchLocked(ctx, Event{Type: typ, Target: target})
}

// Render writes the current document.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return formset.RenderNode(w, p.doc)
}

// String renders the current document.
func (p *Page) String() string {
	var b strings.Builder
	if err := p.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// ControlValue reads a form control the way a browser reports it in a
// change handler: checked boxes report "on" (or their value), unchecked ""
// and selects their selected option.
func ControlValue(n *html.Node) string {
	if n == nil {
		return ""
	}
	switch n.Data {
	case "select":
		options := formset.FindAll(n, formset.ByTag("option"))
		for _, option := range options {
			if _, ok := formset.LookupAttr(option, "selected"); ok {
				return optionValue(option)
			}
		}
		if len(options) > 0 {
			return optionValue(options[0])
		}
		return ""
	case "textarea":
		return formset.TextContent(n)
	case "input":
		switch strings.ToLower(formset.Attr(n, "type")) {
		case "checkbox", "radio":
			if _, ok := formset.LookupAttr(n, "checked"); !ok {
				return ""
			}
			if value, ok := formset.LookupAttr(n, "value"); ok {
				return value
			}
			return "on"
		}
	}
	return formset.Attr(n, "value")
}

// SetControlValue writes value into a form control.
func SetControlValue(n *html.Node, value string) {
	if n == nil {
		return
	}
	switch n.Data {
	case "select":
		for _, option := range formset.FindAll(n, formset.ByTag("option")) {
			if optionValue(option) == value {
				formset.SetAttr(option, "selected", "")
			} else {
				formset.RemoveAttr(option, "selected")
			}
		}
	case "textarea":
		formset.SetTextContent(n, value)
	case "input":
		switch strings.ToLower(formset.Attr(n, "type")) {
		case "checkbox", "radio":
			if visibility.Truthy(value) {
				formset.SetAttr(n, "checked", "")
			} else {
				formset.RemoveAttr(n, "checked")
			}
			return
		}
		formset.SetAttr(n, "value", value)
	default:
		formset.SetAttr(n, "value", value)
	}
}

func optionValue(option *html.Node) string {
	if value, ok := formset.LookupAttr(option, "value"); ok {
		return value
	}
	return strings.TrimSpace(formset.TextContent(option))
}
