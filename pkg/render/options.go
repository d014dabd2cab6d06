package render

import (
	"fmt"
	"strings"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form definition.
type RenderOptions struct {
	// Values pre-populates controls. Top-level fields use their name, formset
	// fields the submitted `prefix-index-field` name. The special key
	// "<prefix>.count" requests a number of formset entries.
	Values map[string]any
	// Errors surfaces server-side feedback keyed by field name; renderers show
	// it inline next to the control.
	Errors map[string][]string
	// Hidden adds extra hidden inputs (CSRF tokens and friends).
	Hidden []HiddenField
}

// Value returns the string form of Values[name].
func (o RenderOptions) Value(name string) (string, bool) {
	if o.Values == nil {
		return "", false
	}
	raw, ok := o.Values[strings.TrimSpace(name)]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return v[0], true
	default:
		return fmt.Sprint(v), true
	}
}

// CountKey is the Values key requesting an entry count for a formset prefix.
func CountKey(prefix string) string {
	return strings.TrimSpace(prefix) + ".count"
}
