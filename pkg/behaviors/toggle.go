package behaviors

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/visibility"
)

// Toggle shows or hides a section depending on a control's value. The
// initial state is applied on attach and re-evaluated on every change.
type Toggle struct {
	ControlID string
	SectionID string
	// Field is the identifier the rule uses for the control value; defaults
	// to ControlID.
	Field string
	Rule  string
	// Evaluator defaults to visibility.NewRules().
	Evaluator visibility.Evaluator
}

func (t *Toggle) Name() string {
	return "toggle#" + t.SectionID
}

func (t *Toggle) Attach(page *Page) bool {
	control := page.Element(t.ControlID)
	section := page.Element(t.SectionID)
	if control == nil || section == nil {
		return false
	}
	evaluator := t.Evaluator
	if evaluator == nil {
		evaluator = visibility.NewRules()
	}
	name := t.Field
	if name == "" {
		name = t.ControlID
	}

	apply := func() error {
		visible, err := evaluator.Eval(t.SectionID, t.Rule, visibility.Context{
			Values: map[string]string{name: ControlValue(control)},
		})
		if err != nil {
			return err
		}
		SetVisible(section, visible)
		page.Logger().Debug("Section visibility updated",
			zap.String("section", t.SectionID),
			zap.Bool("visible", visible))
		return nil
	}

	if err := apply(); err != nil {
		page.Logger().Warn("Section rule failed", zap.String("section", t.SectionID), zap.Error(err))
		return false
	}
	page.On(control, EventChange, func(context.Context, Event) error {
		return apply()
	})
	return true
}

// SetVisible sets the inline display style of n to block or none, keeping
// other declarations.
func SetVisible(n *html.Node, visible bool) {
	display := "display: none"
	if visible {
		display = "display: block"
	}
	var kept []string
	for _, decl := range strings.Split(formset.Attr(n, "style"), ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(prop), "display") {
			continue
		}
		kept = append(kept, decl)
	}
	kept = append(kept, display)
	formset.SetAttr(n, "style", strings.Join(kept, "; "))
}

// Visible reports whether n's inline style leaves it displayed.
func Visible(n *html.Node) bool {
	for _, decl := range strings.Split(formset.Attr(n, "style"), ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(prop), "display") {
			return strings.TrimSpace(value) != "none"
		}
	}
	return true
}
