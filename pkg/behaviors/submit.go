package behaviors

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
)

// DefaultBusyLabel replaces the submit button text while a run is pending.
const DefaultBusyLabel = "Running..."

// SubmitFeedback shows a spinner inside the submit button and disables it
// when the form is submitted.
type SubmitFeedback struct {
	// FormID selects the form; FormClass is used when FormID is empty.
	FormID    string
	FormClass string
	SpinnerID string
	BusyLabel string
}

func (s *SubmitFeedback) Name() string {
	if s.FormID != "" {
		return "submit-feedback#" + s.FormID
	}
	return "submit-feedback." + s.FormClass
}

func (s *SubmitFeedback) Attach(page *Page) bool {
	form := s.form(page)
	spinner := page.Element(s.SpinnerID)
	if form == nil || spinner == nil {
		return false
	}
	button := formset.FindFirst(form, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "button" &&
			strings.EqualFold(formset.Attr(n, "type"), "submit")
	})
	if button == nil {
		return false
	}
	label := s.BusyLabel
	if label == "" {
		label = DefaultBusyLabel
	}

	page.On(form, EventSubmit, func(context.Context, Event) error {
		formset.RemoveClass(spinner, "d-none")
		formset.SetAttr(button, "disabled", "")
		formset.SetTextContent(button, label)
		formset.Detach(spinner)
		button.InsertBefore(spinner, button.FirstChild)
		page.Logger().Debug("Submit feedback shown", zap.String("spinner", s.SpinnerID))
		return nil
	})
	return true
}

func (s *SubmitFeedback) form(page *Page) *html.Node {
	if s.FormID != "" {
		form := page.Element(s.FormID)
		if form == nil || form.Data != "form" {
			return nil
		}
		return form
	}
	if s.FormClass == "" {
		return nil
	}
	forms := page.Query(func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "form" && formset.HasClass(n, s.FormClass)
	})
	if len(forms) == 0 {
		return nil
	}
	return forms[0]
}
