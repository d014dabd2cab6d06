package behaviors_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/behaviors"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/renderers/vanilla"
	"github.com/goliatone/go-formset/pkg/testsupport"
	"github.com/goliatone/go-formset/pkg/widgets"
)

const simulationPage = `<!DOCTYPE html>
<html><body>
<form class="run-simulation-form" method="post">
  <label for="strategy-select">Strategy</label>
  <select id="strategy-select" name="strategy">
    <option value="fixed" selected>Fixed</option>
    <option value="custom">Custom</option>
  </select>
  <div id="custom-strategy-container" style="margin-top: 1rem">
    <select name="custom_strategy" id="id_custom_strategy"><option value="1">Mine</option></select>
  </div>
  <input type="checkbox" id="is-parameter-sweep" name="is_parameter_sweep">
  <div id="parameter-sweep-container"><input name="sweep_start"></div>
  <span data-bs-toggle="tooltip" title="Rounds">?</span>
  <a data-bs-toggle="popover" data-bs-content="More">info</a>
  <input type="hidden" name="outcomes-TOTAL_FORMS" id="id_outcomes-TOTAL_FORMS" value="1">
  <div id="outcome-formset">
    <div class="outcome-form">
      <label for="id_outcomes-0-name">Name</label>
      <input type="text" name="outcomes-0-name" id="id_outcomes-0-name" value="Win">
      <label for="id_outcomes-0-probability">Probability</label>
      <input type="number" name="outcomes-0-probability" id="id_outcomes-0-probability" value="0.5">
    </div>
  </div>
  <button type="button" id="add-outcome-btn">Add outcome</button>
  <button type="submit" class="btn">Run</button>
</form>
<span id="run-spinner" class="spinner-border d-none"></span>
</body></html>`

func loadPage(t *testing.T, markup string, opts ...behaviors.PageOption) *behaviors.Page {
	t.Helper()
	page, err := behaviors.ParsePage(strings.NewReader(markup), opts...)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return page
}

func outcomeAdd() *behaviors.FormsetAdd {
	return &behaviors.FormsetAdd{
		ButtonID:    "add-outcome-btn",
		ContainerID: "outcome-formset",
		CounterID:   "id_outcomes-TOTAL_FORMS",
		Replicator:  formset.NewReplicator(formset.WithEntryClass("outcome-form")),
	}
}

func TestFormsetAdd_ClickReplicates(t *testing.T) {
	page := loadPage(t, simulationPage)
	var results []formset.Result
	add := outcomeAdd()
	add.OnReplicate = func(r formset.Result) { results = append(results, r) }

	if got := page.Attach(add); len(got) != 1 {
		t.Fatalf("formset add should attach, got %v", got)
	}
	ctx := context.Background()
	for range 2 {
		if err := page.Click(ctx, "add-outcome-btn"); err != nil {
			t.Fatalf("click: %v", err)
		}
	}

	if len(results) != 2 || results[0].Index != 1 || results[1].Index != 2 {
		t.Fatalf("unexpected results %+v", results)
	}
	counter := page.Element("id_outcomes-TOTAL_FORMS")
	if got := formset.Attr(counter, "value"); got != "3" {
		t.Fatalf("counter = %q", got)
	}
	for i := 1; i <= 2; i++ {
		input := page.Element(formset.FieldID("outcomes", i, "name"))
		if input == nil {
			t.Fatalf("missing entry %d", i)
		}
		if formset.Attr(input, "value") != "" {
			t.Fatalf("entry %d value not cleared", i)
		}
		if !formset.HasClass(input.Parent, "fade-in") {
			t.Fatalf("entry %d missing fade-in", i)
		}
	}
	if got := formset.Attr(page.Element("id_outcomes-0-name"), "value"); got != "Win" {
		t.Fatalf("template mutated: %q", got)
	}
}

func TestAttach_MissingElementsAreSkipped(t *testing.T) {
	page := loadPage(t, `<html><body><p>nothing here</p></body></html>`)

	attached := page.Attach(
		outcomeAdd(),
		&behaviors.Toggle{ControlID: "strategy-select", SectionID: "custom-strategy-container", Rule: `strategy == "custom"`},
		&behaviors.SubmitFeedback{FormClass: "run-simulation-form", SpinnerID: "run-spinner"},
		&behaviors.Widgets{},
	)
	if len(attached) != 0 {
		t.Fatalf("nothing should attach, got %v", attached)
	}
	if err := page.Click(context.Background(), "add-outcome-btn"); !errors.Is(err, behaviors.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}

func TestToggle_InitialStateAndChange(t *testing.T) {
	page := loadPage(t, simulationPage)
	attached := page.Attach(
		&behaviors.Toggle{
			ControlID: "strategy-select",
			SectionID: "custom-strategy-container",
			Field:     "strategy",
			Rule:      `strategy == "custom"`,
		},
		&behaviors.Toggle{
			ControlID: "is-parameter-sweep",
			SectionID: "parameter-sweep-container",
			Rule:      "is-parameter-sweep",
		},
	)
	if len(attached) != 2 {
		t.Fatalf("expected both toggles, got %v", attached)
	}

	custom := page.Element("custom-strategy-container")
	sweep := page.Element("parameter-sweep-container")
	if behaviors.Visible(custom) || behaviors.Visible(sweep) {
		t.Fatalf("sections should start hidden")
	}
	if got := formset.Attr(custom, "style"); got != "margin-top: 1rem; display: none" {
		t.Fatalf("existing style not kept: %q", got)
	}

	ctx := context.Background()
	if err := page.Change(ctx, "strategy-select", "custom"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if !behaviors.Visible(custom) {
		t.Fatalf("custom section should be visible")
	}
	if err := page.Change(ctx, "is-parameter-sweep", "on"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if !behaviors.Visible(sweep) {
		t.Fatalf("sweep section should be visible")
	}
	if err := page.Change(ctx, "strategy-select", "fixed"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if behaviors.Visible(custom) {
		t.Fatalf("custom section should hide again")
	}
}

func TestSubmitFeedback_ShowsSpinner(t *testing.T) {
	page := loadPage(t, simulationPage)
	if got := page.Attach(&behaviors.SubmitFeedback{FormClass: "run-simulation-form", SpinnerID: "run-spinner"}); len(got) != 1 {
		t.Fatalf("submit feedback should attach")
	}
	form := page.Query(func(n *html.Node) bool { return n.Data == "form" })[0]
	formset.SetAttr(form, "id", "run-form")

	if err := page.Submit(context.Background(), "run-form"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	spinner := page.Element("run-spinner")
	if formset.HasClass(spinner, "d-none") {
		t.Fatalf("spinner still hidden")
	}
	button := spinner.Parent
	if button == nil || button.Data != "button" || button.FirstChild != spinner {
		t.Fatalf("spinner should be prepended to the submit button")
	}
	if _, ok := formset.LookupAttr(button, "disabled"); !ok {
		t.Fatalf("submit button not disabled")
	}
	if got := formset.TextContent(button); got != behaviors.DefaultBusyLabel {
		t.Fatalf("button text = %q", got)
	}
}

func TestWidgets_MarksTriggers(t *testing.T) {
	page := loadPage(t, simulationPage)
	var initialised []string
	w := &behaviors.Widgets{Init: func(widget widgets.Widget) {
		initialised = append(initialised, widget.Kind)
	}}
	if got := page.Attach(w); len(got) != 1 {
		t.Fatalf("widgets should attach")
	}
	var kinds []string
	for _, n := range page.Query(func(n *html.Node) bool {
		_, ok := formset.LookupAttr(n, behaviors.WidgetAttr)
		return ok
	}) {
		kinds = append(kinds, formset.Attr(n, behaviors.WidgetAttr))
	}
	want := []string{"tooltip", "popover"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("widget kinds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, initialised); diff != "" {
		t.Fatalf("init callbacks mismatch (-want +got):\n%s", diff)
	}
}

func TestFormsetAdd_LogsDrift(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	markup := strings.Replace(simulationPage, `id="id_outcomes-TOTAL_FORMS" value="1"`, `id="id_outcomes-TOTAL_FORMS" value="4"`, 1)
	page := loadPage(t, markup, behaviors.WithLogger(zap.New(core)))
	page.Attach(outcomeAdd())

	if err := page.Click(context.Background(), "add-outcome-btn"); err != nil {
		t.Fatalf("click: %v", err)
	}
	drift := logs.FilterMessage("Formset counter drifted from entry count").All()
	if len(drift) != 1 {
		t.Fatalf("expected one drift warning, got %d", len(drift))
	}
	if got := drift[0].ContextMap()["stored"]; got != int64(4) {
		t.Fatalf("stored = %v", got)
	}
	if got := formset.Attr(page.Element("id_outcomes-TOTAL_FORMS"), "value"); got != "2" {
		t.Fatalf("counter should follow the DOM count, got %q", got)
	}
}

func TestDispatch_SerialisesConcurrentClicks(t *testing.T) {
	page := loadPage(t, simulationPage)
	page.Attach(outcomeAdd())

	const clicks = 16
	var wg sync.WaitGroup
	errs := make(chan error, clicks)
	for range clicks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- page.Click(context.Background(), "add-outcome-btn")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("click: %v", err)
		}
	}

	for i := 0; i <= clicks; i++ {
		id := formset.FieldID("outcomes", i, "name")
		if page.Element(id) == nil {
			t.Fatalf("missing %s", id)
		}
	}
	if got := formset.Attr(page.Element("id_outcomes-TOTAL_FORMS"), "value"); got != fmt.Sprint(clicks+1) {
		t.Fatalf("counter = %q", got)
	}
}

func TestDiscover_RenderedSimulation(t *testing.T) {
	renderer, err := vanilla.New(vanilla.WithDocument(true))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(testsupport.Context(), testsupport.MustLoadForm(t, "simulation"), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := loadPage(t, string(out))

	var names []string
	for _, b := range behaviors.Discover(page) {
		names = append(names, b.Name())
	}
	want := []string{
		"widgets",
		"toggle#custom-strategy-container",
		"toggle#parameter-sweep-container",
		"formset-add#add-outcome-btn",
		"submit-feedback#simulation",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("discovered behaviours mismatch (-want +got):\n%s", diff)
	}

	ctx := context.Background()
	if err := page.Click(ctx, "add-outcome-btn"); err != nil {
		t.Fatalf("click: %v", err)
	}
	if page.Element("id_outcomes-2-probability") == nil {
		t.Fatalf("third outcome entry missing")
	}
	if got := formset.Attr(page.Element("id_outcomes-TOTAL_FORMS"), "value"); got != "3" {
		t.Fatalf("TOTAL_FORMS = %q", got)
	}

	if err := page.Change(ctx, "strategy-select", "custom"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if !behaviors.Visible(page.Element("custom-strategy-container")) {
		t.Fatalf("custom strategy section should be visible")
	}

	if err := page.Submit(ctx, "simulation"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := page.Element("run-spinner").Parent.Data; got != "button" {
		t.Fatalf("spinner parent = %q", got)
	}
}

func TestFormsetAdd_ClonedWidgetsAreInitialised(t *testing.T) {
	markup := strings.Replace(simulationPage,
		`<label for="id_outcomes-0-name">Name</label>`,
		`<label for="id_outcomes-0-name">Name</label><span class="hint" data-bs-toggle="tooltip" title="Outcome">?</span>`, 1)

	hints := func(page *behaviors.Page) []string {
		var marks []string
		for _, n := range page.Query(func(n *html.Node) bool { return formset.HasClass(n, "hint") }) {
			mark, _ := formset.LookupAttr(n, behaviors.WidgetAttr)
			marks = append(marks, mark)
		}
		return marks
	}

	t.Run("with widgets", func(t *testing.T) {
		page := loadPage(t, markup)
		var initialised int
		w := &behaviors.Widgets{Init: func(widgets.Widget) { initialised++ }}
		add := outcomeAdd()
		add.Widgets = w
		page.Attach(w, add)
		before := initialised

		if err := page.Click(context.Background(), "add-outcome-btn"); err != nil {
			t.Fatalf("click: %v", err)
		}
		if initialised != before+1 {
			t.Fatalf("expected the cloned tooltip to be initialised once, got %d new", initialised-before)
		}
		if diff := cmp.Diff([]string{"tooltip", "tooltip"}, hints(page)); diff != "" {
			t.Fatalf("widget marks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("without widgets", func(t *testing.T) {
		page := loadPage(t, markup)
		page.Attach(&behaviors.Widgets{}, outcomeAdd())

		if err := page.Click(context.Background(), "add-outcome-btn"); err != nil {
			t.Fatalf("click: %v", err)
		}
		if diff := cmp.Diff([]string{"tooltip", ""}, hints(page)); diff != "" {
			t.Fatalf("clone should not carry the init marker (-want +got):\n%s", diff)
		}
	})
}
