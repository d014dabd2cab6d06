package gotemplate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formset/pkg/render/template/gotemplate"
)

func newEngine(t *testing.T, opts ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()
	files := fstest.MapFS{
		"hello.tmpl":  {Data: []byte(`Hello {{ name|trim }}!`)},
		"entry.tmpl":  {Data: []byte(`{% for f in entry.fields %}[{{ f.name }}]{% endfor %}`)},
		"global.tmpl": {Data: []byte(`{{ settings.env }}/{{ total }}`)},
		"shout.tmpl":  {Data: []byte(`{{ word|formset_shout }}`)},
	}
	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplateWritesToOutputs(t *testing.T) {
	engine := newEngine(t)

	var buf strings.Builder
	out, err := engine.RenderTemplate("hello", map[string]any{"name": "  Ada "}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hello Ada!" {
		t.Fatalf("unexpected output %q", out)
	}
	if buf.String() != out {
		t.Fatalf("writer received %q, want %q", buf.String(), out)
	}
}

func TestEngine_ViewsUseJSONNames(t *testing.T) {
	type field struct {
		Name string `json:"name"`
	}
	type entry struct {
		Fields []field `json:"fields"`
	}
	engine := newEngine(t)

	out, err := engine.RenderTemplate("entry.tmpl", map[string]any{
		"entry": entry{Fields: []field{{Name: "outcomes-0-name"}, {Name: "outcomes-0-probability"}}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[outcomes-0-name][outcomes-0-probability]" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngine_GlobalDataAndNumbers(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))

	out, err := engine.RenderTemplate("global", map[string]any{"total": 3})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "staging/3" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngine_CustomFilter(t *testing.T) {
	shout := func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(strings.ToUpper(in.String())), nil
	}
	engine := newEngine(t, gotemplate.WithFilter("formset_shout", shout))

	out, err := engine.RenderTemplate("shout", map[string]any{"word": "add"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "ADD" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngine_BaseDirOverridesFS(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.tmpl"), []byte(`Hi {{ name }}`), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	engine := newEngine(t, gotemplate.WithBaseDir(dir))

	out, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hi Ada" {
		t.Fatalf("expected directory override, got %q", out)
	}
}

func TestEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}

func TestEngine_MissingTemplate(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("nope", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}
