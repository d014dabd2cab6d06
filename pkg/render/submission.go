package render

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// HiddenField is an <input type="hidden"> carried with a submission: the
// formset management counters, a CSRF token, or caller supplied state.
type HiddenField struct {
	Name  string
	Value string
}

func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken names the token input the way the backend expects it, for
// example "csrfmiddlewaretoken".
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// HiddenFields normalises a set of hidden inputs for output. Blank names are
// dropped, a repeated name keeps its last value, and the result is ordered by
// name so rendered markup is stable.
func HiddenFields(fields ...HiddenField) []HiddenField {
	out := make([]HiddenField, 0, len(fields))
	seen := make(map[string]int, len(fields))
	for _, field := range fields {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			continue
		}
		if at, dup := seen[field.Name]; dup {
			out[at].Value = field.Value
			continue
		}
		seen[field.Name] = len(out)
		out = append(out, field)
	}
	if len(out) == 0 {
		return nil
	}
	slices.SortFunc(out, func(a, b HiddenField) int { return cmp.Compare(a.Name, b.Name) })
	return out
}
