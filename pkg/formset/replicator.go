package formset

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const (
	// DefaultEntryClass marks entry blocks inside a formset container.
	DefaultEntryClass = "formset-entry"
	// DefaultInsertedClass is added to freshly appended entries so stylesheets
	// can run an entrance transition.
	DefaultInsertedClass = "fade-in"
)

var (
	// ErrContainerMissing is returned when Replicate receives a nil container.
	ErrContainerMissing = errors.New("formset: container is required")
	// ErrTemplateMissing is returned when the container holds no entry block to
	// clone. The tree is left untouched.
	ErrTemplateMissing = errors.New("formset: container has no template entry")
	// ErrCounterMissing is returned when Replicate receives a nil counter field.
	ErrCounterMissing = errors.New("formset: counter field is required")
)

// Option configures a Replicator.
type Option func(*Replicator)

// WithEntryClass overrides the class marking entry blocks.
func WithEntryClass(class string) Option {
	return func(r *Replicator) {
		if trimmed := strings.TrimSpace(class); trimmed != "" {
			r.entryClass = trimmed
		}
	}
}

// WithInsertedClass overrides the class added to new entries. An empty value
// disables marking.
func WithInsertedClass(class string) Option {
	return func(r *Replicator) {
		r.insertedClass = strings.TrimSpace(class)
	}
}

// WithPrefix restricts renumbering to identifiers of one formset prefix, so
// nested or sibling formsets sharing a block are never rewritten.
func WithPrefix(prefix string) Option {
	return func(r *Replicator) {
		r.prefix = strings.TrimSpace(prefix)
	}
}

// WithTemplateIndex sets the index carried by the template entry.
func WithTemplateIndex(index int) Option {
	return func(r *Replicator) {
		if index >= 0 {
			r.templateIndex = index
		}
	}
}

// Replicator clones the template entry of a formset container.
type Replicator struct {
	entryClass    string
	insertedClass string
	prefix        string
	templateIndex int
}

// Result describes a successful replication.
type Result struct {
	// Entry is the appended block.
	Entry *html.Node
	// Index is the index assigned to every field of Entry.
	Index int
	// Count is the number of entry blocks after the call (also written to the
	// counter).
	Count int
	// StoredCount is the counter value read before the call, -1 when it was not
	// a valid integer.
	StoredCount int
	// Drifted reports that StoredCount disagreed with the live block count.
	Drifted bool
}

// NewReplicator constructs a Replicator applying options over the defaults.
func NewReplicator(options ...Option) *Replicator {
	r := &Replicator{
		entryClass:    DefaultEntryClass,
		insertedClass: DefaultInsertedClass,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// EntryClass reports the configured entry marker class.
func (r *Replicator) EntryClass() string {
	return r.entryClass
}

// Entries returns the entry blocks inside container in document order.
func (r *Replicator) Entries(container *html.Node) []*html.Node {
	if container == nil {
		return nil
	}
	return FindByClass(container, r.entryClass)
}

// Replicate appends a renumbered copy of the template entry to container and
// writes the new block count into counter.
func (r *Replicator) Replicate(container, counter *html.Node) (Result, error) {
	if container == nil {
		return Result{}, ErrContainerMissing
	}
	if counter == nil {
		return Result{}, ErrCounterMissing
	}

	entries := r.Entries(container)
	if len(entries) == 0 {
		return Result{}, ErrTemplateMissing
	}
	n := len(entries)

	stored := -1
	if value, err := strconv.Atoi(strings.TrimSpace(Attr(counter, "value"))); err == nil && value >= 0 {
		stored = value
	}

	entry := CloneNode(entries[0])
	r.renumber(entry, n)

	if r.insertedClass != "" {
		AddClass(entry, r.insertedClass)
	}
	container.AppendChild(entry)
	SetAttr(counter, "value", strconv.Itoa(n+1))

	return Result{
		Entry:       entry,
		Index:       n,
		Count:       n + 1,
		StoredCount: stored,
		Drifted:     stored != n,
	}, nil
}

func (r *Replicator) renumber(entry *html.Node, index int) {
	Walk(entry, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.Data {
		case "input", "select", "textarea":
			clearValue(n)
			r.rewriteAttr(n, "id", index)
			r.rewriteAttr(n, "name", index)
		case "label":
			r.rewriteAttr(n, "for", index)
		}
		return true
	})
}

func (r *Replicator) rewriteAttr(n *html.Node, key string, index int) {
	value, ok := LookupAttr(n, key)
	if !ok || value == "" {
		return
	}
	if rewritten, ok := reindex(value, r.prefix, r.templateIndex, index); ok {
		SetAttr(n, key, rewritten)
	}
}

func clearValue(n *html.Node) {
	switch n.Data {
	case "input":
		switch strings.ToLower(Attr(n, "type")) {
		case "checkbox", "radio":
			RemoveAttr(n, "checked")
		case "button", "submit", "reset", "image":
		default:
			SetAttr(n, "value", "")
		}
	case "select":
		for _, option := range FindAll(n, ByTag("option")) {
			RemoveAttr(option, "selected")
		}
	case "textarea":
		SetTextContent(n, "")
	}
}
