package formset

import (
	"strings"

	"golang.org/x/net/html"
)

const (
	// CounterAttr on a container names the id of its counter field.
	CounterAttr = "data-counter"
	// EntryClassAttr on a container overrides the entry marker class.
	EntryClassAttr = "data-entry-class"
)

// Target locates a formset in a parsed tree by element ids. Counter and
// EntryClass fall back to the container's data attributes, and Counter
// further to the management form id derived from Prefix.
type Target struct {
	Container  string
	Counter    string
	Prefix     string
	EntryClass string
}

// Resolve finds the container and counter nodes and builds the replicator
// matching t. Missing nodes are returned as nil so Replicate reports them.
func (t Target) Resolve(root *html.Node, options ...Option) (container, counter *html.Node, replicator *Replicator) {
	container = FindByID(root, strings.TrimSpace(t.Container))

	counterID := strings.TrimSpace(t.Counter)
	if counterID == "" && container != nil {
		counterID = Attr(container, CounterAttr)
	}
	prefix := strings.TrimSpace(t.Prefix)
	if counterID == "" && prefix != "" {
		counterID = CounterID(prefix)
	}
	counter = FindByID(root, counterID)

	entryClass := strings.TrimSpace(t.EntryClass)
	if entryClass == "" && container != nil {
		entryClass = Attr(container, EntryClassAttr)
	}

	opts := make([]Option, 0, len(options)+2)
	if entryClass != "" {
		opts = append(opts, WithEntryClass(entryClass))
	}
	if prefix != "" {
		opts = append(opts, WithPrefix(prefix))
	}
	opts = append(opts, options...)
	return container, counter, NewReplicator(opts...)
}

// ReplicateIn replicates the target formset times times (at least once) and
// returns the result of the last call. It stops at the first error.
func ReplicateIn(root *html.Node, t Target, times int, options ...Option) (Result, error) {
	container, counter, replicator := t.Resolve(root, options...)
	if times <= 0 {
		times = 1
	}
	var result Result
	for range times {
		var err error
		result, err = replicator.Replicate(container, counter)
		if err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

// LooksLikeDocument reports whether markup is a full document rather than a
// fragment.
func LooksLikeDocument(markup string) bool {
	head := strings.ToLower(strings.TrimSpace(markup))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}
