package formset

import (
	"errors"
	"strings"
	"testing"
)

const targetMarkup = `<form>
<input type="hidden" name="outcomes-TOTAL_FORMS" id="id_outcomes-TOTAL_FORMS" value="1">
<div id="outcome-formset" data-entry-class="outcome-form">
  <div class="outcome-form">
    <label for="id_outcomes-0-name">Name</label>
    <input type="text" name="outcomes-0-name" id="id_outcomes-0-name" value="Win">
  </div>
</div>
</form>`

func TestReplicateInFallsBackToPrefixCounter(t *testing.T) {
	root, err := ParseFragment(strings.NewReader(targetMarkup))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	result, err := ReplicateIn(root, Target{Container: "outcome-formset", Prefix: "outcomes"}, 2)
	if err != nil {
		t.Fatalf("replicate: %v", err)
	}
	if result.Index != 2 || result.Count != 3 {
		t.Fatalf("expected index 2 count 3, got %+v", result)
	}
	if got := Attr(FindByID(root, "id_outcomes-TOTAL_FORMS"), "value"); got != "3" {
		t.Fatalf("expected counter 3, got %q", got)
	}
	if FindByID(root, "id_outcomes-2-name") == nil {
		t.Fatalf("expected renumbered entry in %s", RenderString(root))
	}
}

func TestReplicateInUsesDataCounter(t *testing.T) {
	markup := `<div id="c" data-counter="n"><div class="formset-entry"><input name="x-0-a"></div></div><input id="n" value="1">`
	root, err := ParseFragment(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	result, err := ReplicateIn(root, Target{Container: "c"}, 0)
	if err != nil {
		t.Fatalf("replicate: %v", err)
	}
	if result.Index != 1 || Attr(FindByID(root, "n"), "value") != "2" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestReplicateInMissingNodes(t *testing.T) {
	root, err := ParseFragment(strings.NewReader(targetMarkup))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := ReplicateIn(root, Target{Container: "nope", Prefix: "outcomes"}, 1); !errors.Is(err, ErrContainerMissing) {
		t.Fatalf("expected ErrContainerMissing, got %v", err)
	}
	if _, err := ReplicateIn(root, Target{Container: "outcome-formset"}, 1); !errors.Is(err, ErrCounterMissing) {
		t.Fatalf("expected ErrCounterMissing, got %v", err)
	}
}

func TestLooksLikeDocument(t *testing.T) {
	cases := map[string]bool{
		"<!DOCTYPE html><html></html>": true,
		"  <html><body></body></html>": true,
		"<div></div>":                  false,
	}
	for markup, want := range cases {
		if got := LooksLikeDocument(markup); got != want {
			t.Fatalf("LooksLikeDocument(%q) = %v, want %v", markup, got, want)
		}
	}
}
