package visibility

import (
	"errors"
	"testing"
)

func TestRules_Eval(t *testing.T) {
	ctx := Context{
		Values: map[string]string{
			"strategy":           "custom",
			"is_parameter_sweep": "on",
			"unchecked":          "",
		},
		Extras: map[string]string{"beta": "true"},
	}

	cases := []struct {
		rule string
		want bool
	}{
		{"", true},
		{`strategy == "custom"`, true},
		{`strategy == 'kelly'`, false},
		{`strategy != fixed`, true},
		{"is_parameter_sweep", true},
		{"!is_parameter_sweep", false},
		{"unchecked", false},
		{"!missing", true},
		{`missing == ""`, true},
		{"extras.beta", true},
	}

	eval := NewRules()
	for _, tc := range cases {
		got, err := eval.Eval("section", tc.rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestRules_InvalidRules(t *testing.T) {
	eval := NewRules()
	for _, rule := range []string{`== "x"`, `a == `, `a == "open`, `a b`, `a == b c`} {
		if _, err := eval.Eval("section", rule, Context{}); !errors.Is(err, ErrInvalidRule) {
			t.Fatalf("Eval(%q) expected ErrInvalidRule, got %v", rule, err)
		}
	}
}

func TestEvaluatorFunc(t *testing.T) {
	var called string
	eval := EvaluatorFunc(func(sectionID, rule string, _ Context) (bool, error) {
		called = sectionID + ":" + rule
		return false, nil
	})
	if ok, _ := eval.Eval("s", "r", Context{}); ok || called != "s:r" {
		t.Fatalf("unexpected delegation result ok=%v called=%q", ok, called)
	}
}
