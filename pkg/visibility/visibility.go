// Package visibility decides whether conditional form sections are shown.
// Rules are evaluated against the current values of the page's controls.
package visibility

// Evaluator determines whether a section should be visible based on a rule
// string and the current control values.
type Evaluator interface {
	Eval(sectionID, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds control values keyed
// by field name; checkboxes report "on" when checked and "" otherwise. Extras
// lets callers inject flags that are not form controls.
type Context struct {
	Values map[string]string
	Extras map[string]string
}

// Lookup returns the value for name, falling back to Extras for names using
// the `extras.` prefix.
func (c Context) Lookup(name string) (string, bool) {
	if rest, ok := cutExtras(name); ok {
		value, found := c.Extras[rest]
		return value, found
	}
	value, found := c.Values[name]
	return value, found
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(sectionID, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(sectionID, rule string, ctx Context) (bool, error) {
	return fn(sectionID, rule, ctx)
}

func cutExtras(name string) (string, bool) {
	const prefix = "extras."
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):], true
	}
	return "", false
}
