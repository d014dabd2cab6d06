package behaviors

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
)

// FormsetAdd replicates the template entry of a formset whenever its add
// button is clicked.
type FormsetAdd struct {
	ButtonID    string
	ContainerID string
	CounterID   string
	Replicator  *formset.Replicator
	// Widgets, when set, initialises the widget triggers of every new entry.
	Widgets *Widgets

	// OnReplicate, when set, observes every successful replication.
	OnReplicate func(formset.Result)
}

func (f *FormsetAdd) Name() string {
	return "formset-add#" + f.ButtonID
}

func (f *FormsetAdd) Attach(page *Page) bool {
	button := page.Element(f.ButtonID)
	container := page.Element(f.ContainerID)
	counter := page.Element(f.CounterID)
	if button == nil || container == nil || counter == nil {
		return false
	}
	replicator := f.Replicator
	if replicator == nil {
		replicator = formset.NewReplicator()
	}

	page.On(button, EventClick, func(_ context.Context, _ Event) error {
		return f.replicate(page, replicator, container, counter)
	})
	return true
}

func (f *FormsetAdd) replicate(page *Page, replicator *formset.Replicator, container, counter *html.Node) error {
	result, err := replicator.Replicate(container, counter)
	if err != nil {
		return err
	}
	unmark(result.Entry)
	if f.Widgets != nil {
		if found := f.Widgets.initialise(result.Entry); len(found) > 0 {
			page.Logger().Debug("Widgets initialised in new entry",
				zap.String("container", f.ContainerID),
				zap.Int("total", len(found)))
		}
	}
	if result.Drifted {
		page.Logger().Warn("Formset counter drifted from entry count",
			zap.String("container", f.ContainerID),
			zap.Int("stored", result.StoredCount),
			zap.Int("entries", result.Index))
	}
	page.Logger().Debug("Formset entry added",
		zap.String("container", f.ContainerID),
		zap.Int("index", result.Index),
		zap.Int("count", result.Count))
	if f.OnReplicate != nil {
		f.OnReplicate(result)
	}
	return nil
}
