package testsupport

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
)

//go:embed testdata/*.yaml
var fixtures embed.FS

// SimulationFixture is the bundled definition exercising fields, conditional
// sections and the outcomes formset.
const SimulationFixture = "testdata/simulation.yaml"

// FixtureBytes returns the raw bytes of a bundled fixture.
func FixtureBytes(t *testing.T, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(name)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// LoadForms decodes every form in a bundled fixture, returning an error for
// callers managing setup outside of *testing.T.
func LoadForms(name string) ([]model.Form, error) {
	data, err := fixtures.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	forms, err := model.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode %s: %w", name, err)
	}
	return forms, nil
}

// MustLoadForm returns the form with id from the simulation fixture.
func MustLoadForm(t *testing.T, id string) model.Form {
	t.Helper()

	forms, err := LoadForms(SimulationFixture)
	if err != nil {
		t.Fatalf("load forms: %v", err)
	}
	for _, form := range forms {
		if form.ID == id {
			return form
		}
	}
	t.Fatalf("form %q not found in %s", id, SimulationFixture)
	return model.Form{}
}

// MustParseHTML parses markup as a full document.
func MustParseHTML(t *testing.T, markup string) *html.Node {
	t.Helper()

	doc, err := formset.ParseDocument(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// MustFindByID fails the test when id is absent below root.
func MustFindByID(t *testing.T, root *html.Node, id string) *html.Node {
	t.Helper()

	node := formset.FindByID(root, id)
	if node == nil {
		t.Fatalf("element #%s not found", id)
	}
	return node
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
