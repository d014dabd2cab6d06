package formset

import (
	"strings"
	"testing"
)

func TestClassHelpers(t *testing.T) {
	root, err := ParseFragment(strings.NewReader(`<div id="a" class="one  two"></div>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	node := FindByID(root, "a")

	AddClass(node, "two")
	AddClass(node, "three")
	if got := Attr(node, "class"); got != "one  two three" {
		t.Fatalf("unexpected class after add: %q", got)
	}
	RemoveClass(node, "two")
	if got := Attr(node, "class"); got != "one three" {
		t.Fatalf("unexpected class after remove: %q", got)
	}
	if HasClass(node, "two") || !HasClass(node, "three") {
		t.Fatalf("HasClass out of sync with class attribute")
	}
}

func TestCloneNodeIsDetachedAndDeep(t *testing.T) {
	root, err := ParseFragment(strings.NewReader(`<div id="src"><span title="x">hi</span></div>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	src := FindByID(root, "src")
	clone := CloneNode(src)

	if clone.Parent != nil || clone.NextSibling != nil {
		t.Fatalf("clone should be detached")
	}
	span := FindFirst(clone, ByTag("span"))
	SetAttr(span, "title", "y")
	SetTextContent(span, "bye")

	if got := Attr(FindFirst(src, ByTag("span")), "title"); got != "x" {
		t.Fatalf("source attribute changed to %q", got)
	}
	if got := TextContent(src); got != "hi" {
		t.Fatalf("source text changed to %q", got)
	}
	if got := RenderString(clone); got != `<div id="src"><span title="y">bye</span></div>` {
		t.Fatalf("unexpected clone markup %q", got)
	}
}

func TestRemoveAttrAndRenderChildren(t *testing.T) {
	root, err := ParseFragment(strings.NewReader(`<input id="i" disabled value="1"><b>x</b>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	RemoveAttr(FindByID(root, "i"), "disabled")

	var b strings.Builder
	if err := RenderChildren(&b, root); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := b.String(); got != `<input id="i" value="1"/><b>x</b>` {
		t.Fatalf("unexpected markup %q", got)
	}
}
