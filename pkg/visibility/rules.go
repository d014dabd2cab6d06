package visibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRule is returned for rules the Rules evaluator cannot parse.
var ErrInvalidRule = errors.New("visibility: invalid rule")

// Rules evaluates single-condition rules:
//
//	strategy == "custom"   equality against a quoted or bare literal
//	strategy != "fixed"    inequality
//	is_parameter_sweep     truthy check
//	!is_parameter_sweep    negated truthy check
//
// An empty rule is always visible. Missing values compare as "".
type Rules struct{}

// NewRules returns the default rule evaluator.
func NewRules() Rules { return Rules{} }

// Eval implements Evaluator.
func (Rules) Eval(sectionID, rule string, ctx Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	for _, op := range []string{"==", "!="} {
		left, right, found := strings.Cut(trimmed, op)
		if !found {
			continue
		}
		name := strings.TrimSpace(left)
		if !validName(name) {
			return false, fmt.Errorf("%w for %q: %q", ErrInvalidRule, sectionID, rule)
		}
		literal, err := parseLiteral(strings.TrimSpace(right))
		if err != nil {
			return false, fmt.Errorf("%w for %q: %v", ErrInvalidRule, sectionID, err)
		}
		value, _ := ctx.Lookup(name)
		equal := value == literal
		if op == "!=" {
			return !equal, nil
		}
		return equal, nil
	}

	negate := false
	name := trimmed
	if strings.HasPrefix(name, "!") {
		negate = true
		name = strings.TrimSpace(name[1:])
	}
	if !validName(name) {
		return false, fmt.Errorf("%w for %q: %q", ErrInvalidRule, sectionID, rule)
	}
	value, _ := ctx.Lookup(name)
	visible := Truthy(value)
	if negate {
		return !visible, nil
	}
	return visible, nil
}

// Truthy reports whether a control value counts as set. Empty strings and
// the usual false spellings are falsy.
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

func parseLiteral(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("missing right-hand value")
	}
	if raw[0] == '"' || raw[0] == '\'' {
		if raw[0] == '\'' {
			if len(raw) < 2 || raw[len(raw)-1] != '\'' {
				return "", fmt.Errorf("unterminated string %s", raw)
			}
			return raw[1 : len(raw)-1], nil
		}
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return "", fmt.Errorf("bad string %s", raw)
		}
		return unquoted, nil
	}
	if strings.ContainsAny(raw, " \t=!") {
		return "", fmt.Errorf("bad literal %s", raw)
	}
	return raw, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}
