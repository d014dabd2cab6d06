package tui

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/visibility"
)

// State tracks collected values keyed by submitted input name, the
// server-provided errors, and the management form of every prompted formset.
type State struct {
	values     map[string]string
	errors     map[string][]string
	management map[string]formset.ManagementForm
}

// NewState seeds the state with prefilled values and errors. Entry count
// requests ("<prefix>.count") are not treated as values.
func NewState(opts render.RenderOptions) *State {
	s := &State{
		values:     make(map[string]string, len(opts.Values)),
		errors:     make(map[string][]string, len(opts.Errors)),
		management: make(map[string]formset.ManagementForm),
	}
	for name := range opts.Values {
		if strings.HasSuffix(name, ".count") {
			continue
		}
		if value, ok := opts.Value(name); ok {
			s.values[strings.TrimSpace(name)] = value
		}
	}
	for name, messages := range opts.Errors {
		s.errors[name] = append([]string(nil), messages...)
	}
	return s
}

// Get returns the value stored for name.
func (s *State) Get(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	value, ok := s.values[name]
	return value, ok
}

// Set stores value under name.
func (s *State) Set(name, value string) {
	s.values[name] = value
}

// Delete drops name, matching how browsers omit unchecked checkboxes.
func (s *State) Delete(name string) {
	delete(s.values, name)
}

// ErrorsFor returns the errors attached to name.
func (s *State) ErrorsFor(name string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[name]
}

// SetManagement records the counters for a prompted formset.
func (s *State) SetManagement(m formset.ManagementForm) {
	s.management[m.Prefix] = m
}

// Management returns the recorded counters for prefix.
func (s *State) Management(prefix string) (formset.ManagementForm, bool) {
	m, ok := s.management[prefix]
	return m, ok
}

// Existing counts the entries already carried for prefix (highest submitted
// index plus one).
func (s *State) Existing(prefix string) int {
	highest := -1
	for name := range s.values {
		id, ok := formset.ParseIdentifierWithPrefix(name, prefix)
		if !ok || id.Prefix != prefix {
			continue
		}
		highest = max(highest, id.Index)
	}
	return highest + 1
}

// Form returns the collected values plus every management form as
// url.Values.
func (s *State) Form() url.Values {
	out := make(url.Values, len(s.values))
	for name, value := range s.values {
		out.Set(name, value)
	}
	for _, m := range s.management {
		for name, values := range m.Values() {
			out[name] = values
		}
	}
	return out
}

func (s *State) visibilityContext() visibility.Context {
	values := make(map[string]string, len(s.values))
	for name, value := range s.values {
		values[name] = value
	}
	return visibility.Context{Values: values}
}
