package main

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/renderers/tui"
	"github.com/goliatone/go-formset/pkg/testsupport"
)

// scriptedDriver answers prompts by message, consuming answers in order and
// falling back to the prompt default once a script runs out.
type scriptedDriver struct {
	inputs   map[string][]string
	confirms map[string][]bool
	selects  map[string][]string
	infos    []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	if answers := d.inputs[cfg.Message]; len(answers) > 0 {
		d.inputs[cfg.Message] = answers[1:]
		return answers[0], nil
	}
	return cfg.Default, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	if answers := d.confirms[cfg.Message]; len(answers) > 0 {
		d.confirms[cfg.Message] = answers[1:]
		return answers[0], nil
	}
	return false, nil
}

func (d *scriptedDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	if answers := d.selects[cfg.Message]; len(answers) > 0 {
		d.selects[cfg.Message] = answers[1:]
		return slices.Index(cfg.Options, answers[0]), nil
	}
	return cfg.DefaultIndex, nil
}

func (d *scriptedDriver) TextArea(ctx context.Context, cfg tui.TextAreaConfig) (string, error) {
	return d.Input(ctx, tui.InputConfig{Message: cfg.Message, Default: cfg.Default})
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func execute(t *testing.T, c *cli, stdin string, args ...string) (string, error) {
	t.Helper()
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	defs := writeFixture(t, "forms.yaml", testsupport.FixtureBytes(t, testsupport.SimulationFixture))

	out, err := execute(t, &cli{}, "", "render", defs, "--form", "simulation", "--document=false", "--set", "outcomes.count=3", "--set", "name=Run")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	root := testsupport.MustParseHTML(t, out)
	if formset.FindByID(root, "id_outcomes-2-name") == nil {
		t.Fatalf("expected third outcome entry, got %s", out)
	}
	if got := formset.Attr(formset.FindByID(root, "id_outcomes-TOTAL_FORMS"), "value"); got != "3" {
		t.Fatalf("expected TOTAL_FORMS 3, got %q", got)
	}
	if got := formset.Attr(formset.FindByID(root, "id_name"), "value"); got != "Run" {
		t.Fatalf("expected name value Run, got %q", got)
	}
	if strings.Contains(out, "<!DOCTYPE") {
		t.Fatal("expected a bare form without --document")
	}
}

func TestRenderThenReplicate(t *testing.T) {
	defs := writeFixture(t, "forms.yaml", testsupport.FixtureBytes(t, testsupport.SimulationFixture))
	page, err := execute(t, &cli{}, "", "render", defs)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	pagePath := writeFixture(t, "page.html", []byte(page))

	out, err := execute(t, &cli{}, "", "replicate", pagePath, "--container", "outcome-formset", "--prefix", "outcomes", "--times", "2")
	if err != nil {
		t.Fatalf("replicate: %v", err)
	}
	if !strings.HasPrefix(strings.ToLower(out), "<!doctype html>") {
		t.Fatalf("expected a full document back, got %.80s", out)
	}

	root := testsupport.MustParseHTML(t, out)
	for _, id := range []string{"id_outcomes-2-name", "id_outcomes-3-probability"} {
		if formset.FindByID(root, id) == nil {
			t.Fatalf("expected %s after replication", id)
		}
	}
	if got := formset.Attr(formset.FindByID(root, "id_outcomes-TOTAL_FORMS"), "value"); got != "4" {
		t.Fatalf("expected TOTAL_FORMS 4, got %q", got)
	}
}

func TestReplicateFromStdin(t *testing.T) {
	fragment := `<div id="c" data-counter="n"><div class="formset-entry"><label for="id_x-0-a">A</label><input id="id_x-0-a" name="x-0-a" value="kept"></div></div><input id="n" value="1">`

	out, err := execute(t, &cli{}, fragment, "replicate", "-", "--container", "c")
	if err != nil {
		t.Fatalf("replicate: %v", err)
	}
	want := `<div id="c" data-counter="n"><div class="formset-entry"><label for="id_x-0-a">A</label><input id="id_x-0-a" name="x-0-a" value="kept"/></div>` +
		`<div class="formset-entry fade-in"><label for="id_x-1-a">A</label><input id="id_x-1-a" name="x-1-a" value=""/></div></div><input id="n" value="2"/>`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestReplicateErrors(t *testing.T) {
	if _, err := execute(t, &cli{}, "<div></div>", "replicate", "-"); err == nil {
		t.Fatal("expected missing --container to fail")
	}
	if _, err := execute(t, &cli{}, `<div id="c"></div><input id="n">`, "replicate", "-", "--container", "c", "--counter", "n"); err == nil {
		t.Fatal("expected empty container to fail")
	}
}

func TestFillCommand(t *testing.T) {
	defs := writeFixture(t, "contact.yaml", []byte(`forms:
  - id: contact
    title: Contact
    fields:
      - name: name
        required: true
    formsets:
      - prefix: phones
        fields:
          - name: number
`))
	driver := &scriptedDriver{
		inputs: map[string][]string{
			"Name":             {"Ada"},
			"Phones #1 Number": {"555"},
			"Phones #2 Number": {"777"},
		},
		confirms: map[string][]bool{"Phones: add another entry?": {true, false}},
	}

	out, err := execute(t, &cli{driver: driver}, "", "fill", defs)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	got, err := url.ParseQuery(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("parse output %q: %v", out, err)
	}

	want := map[string]string{
		"name":                 "Ada",
		"phones-0-number":      "555",
		"phones-1-number":      "777",
		"phones-TOTAL_FORMS":   "2",
		"phones-INITIAL_FORMS": "0",
	}
	for key, value := range want {
		if got.Get(key) != value {
			t.Fatalf("expected %s=%s, got %q (%s)", key, value, got.Get(key), out)
		}
	}
	if !slices.Contains(driver.infos, "Contact") {
		t.Fatalf("expected form title info, got %v", driver.infos)
	}
}

func TestFillRejectsUnknownFormat(t *testing.T) {
	if _, err := execute(t, &cli{driver: &scriptedDriver{}}, "", "fill", "missing.yaml", "--format", "xml"); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestInitWizard(t *testing.T) {
	driver := &scriptedDriver{
		inputs: map[string][]string{
			"Form id":         {"contact"},
			"Field name":      {"email", "number"},
			"Formset prefix":  {"phones"},
			"Minimum entries": {"2"},
			"Options":         {"home, work"},
		},
		confirms: map[string][]bool{
			"Add a field?":        {true, false},
			"Required?":           {true, false},
			"Add a formset?":      {true, false},
			"Add an entry field?": {false},
		},
		selects: map[string][]string{"Field type": {"text", "select"}},
	}

	out, err := execute(t, &cli{driver: driver}, "", "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	forms, err := model.Decode(strings.NewReader(out))
	if err != nil {
		t.Fatalf("decode wizard output: %v\n%s", err, out)
	}
	if len(forms) != 1 {
		t.Fatalf("expected one form, got %d", len(forms))
	}
	form := forms[0]
	if form.ID != "contact" || form.Title != "Contact" {
		t.Fatalf("unexpected form header: %+v", form)
	}
	if len(form.Fields) != 1 || form.Fields[0].Name != "email" || !form.Fields[0].Required {
		t.Fatalf("unexpected fields: %+v", form.Fields)
	}

	set, ok := form.Formset("phones")
	if !ok {
		t.Fatalf("expected phones formset in %s", out)
	}
	if set.MinNum != 2 || set.ContainerID != "phones-formset" {
		t.Fatalf("unexpected formset: %+v", set)
	}
	wantOptions := []model.Option{{Value: "home", Label: "Home"}, {Value: "work", Label: "Work"}}
	if diff := cmp.Diff(wantOptions, set.Fields[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadForm(t *testing.T) {
	defs := writeFixture(t, "forms.yaml", testsupport.FixtureBytes(t, testsupport.SimulationFixture))

	form, err := loadForm(defs, "")
	if err != nil || form.ID != "simulation" {
		t.Fatalf("expected the only form, got %q (%v)", form.ID, err)
	}
	if _, err := loadForm(defs, "other"); err == nil || !strings.Contains(err.Error(), "simulation") {
		t.Fatalf("expected error listing known forms, got %v", err)
	}
}

func TestParseValues(t *testing.T) {
	values, err := parseValues([]string{"a=1", "b=x=y"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": "1", "b": "x=y"}, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseValues([]string{"novalue"}); err == nil {
		t.Fatal("expected error for missing =")
	}
}
