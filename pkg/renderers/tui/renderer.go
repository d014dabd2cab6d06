package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/visibility"
)

const noneOption = "---------"

// Renderer implements render.Renderer for terminal-driven sessions: it
// prompts for every field, every visible section and every formset entry,
// then serialises the collected submission.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	evaluator         visibility.Evaluator
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, form-urlencoded
// output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       NewSurveyDriver(nil),
		outputFormat: OutputFormatFormURLEncoded,
		evaluator:    visibility.NewRules(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatJSON:
		return "application/json"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/x-www-form-urlencoded"
	}
}

// Render prompts for the form and returns the serialised submission.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	state := NewState(opts)

	if form.Title != "" {
		if err := r.driver.Info(ctx, form.Title); err != nil {
			return nil, err
		}
	}
	for _, field := range form.Fields {
		if err := r.promptField(ctx, field, field.Name, state); err != nil {
			return nil, err
		}
	}
	for _, section := range form.Sections {
		visible, err := r.evaluator.Eval(section.ID, section.Rule, state.visibilityContext())
		if err != nil {
			return nil, err
		}
		if !visible {
			continue
		}
		if section.Title != "" {
			if err := r.driver.Info(ctx, section.Title); err != nil {
				return nil, err
			}
		}
		for _, field := range section.Fields {
			if err := r.promptField(ctx, field, field.Name, state); err != nil {
				return nil, err
			}
		}
	}
	for _, set := range form.Formsets {
		if err := r.promptFormset(ctx, set, opts, state); err != nil {
			return nil, err
		}
	}

	values := state.Form()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	switch r.outputFormat {
	case OutputFormatJSON:
		return jsonBytes(form, values, state)
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return []byte(values.Encode()), nil
	}
}

// promptFormset fills the initial entries and then keeps offering another
// entry until declined or the formset maximum is reached.
func (r *Renderer) promptFormset(ctx context.Context, set model.Formset, opts render.RenderOptions, state *State) error {
	existing := state.Existing(set.Prefix)
	count := set.InitialEntries(existing)
	if raw, ok := opts.Value(render.CountKey(set.Prefix)); ok {
		if requested, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && requested > 0 {
			count = requested
		}
	}

	title := set.Title
	if title == "" {
		title = model.Labelize(set.Prefix)
	}
	if err := r.driver.Info(ctx, title); err != nil {
		return err
	}

	for i := range count {
		if err := r.promptEntry(ctx, set, i, state); err != nil {
			return err
		}
	}
	for set.MaxNum == 0 || count < set.MaxNum {
		more, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("%s: add another entry?", title),
		})
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if err := r.promptEntry(ctx, set, count, state); err != nil {
			return err
		}
		count++
	}

	state.SetManagement(formset.ManagementForm{
		Prefix:  set.Prefix,
		Total:   count,
		Initial: existing,
		Min:     set.MinNum,
		Max:     set.MaxNum,
	})
	return nil
}

func (r *Renderer) promptEntry(ctx context.Context, set model.Formset, index int, state *State) error {
	for _, field := range set.Fields {
		entryField := field
		entryField.Label = fmt.Sprintf("%s #%d %s", model.Labelize(set.Prefix), index+1, field.Label)
		if err := r.promptField(ctx, entryField, formset.FieldName(set.Prefix, index, field.Name), state); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, name string, state *State) error {
	for _, message := range state.ErrorsFor(name) {
		if err := r.driver.Info(ctx, fmt.Sprintf("%s: %s", field.Label, message)); err != nil {
			return err
		}
	}

	current, ok := state.Get(name)
	if !ok {
		current = field.Default
	}
	help := displayHelp(field)

	switch field.Type {
	case model.FieldTypeHidden:
		if current != "" {
			state.Set(name, current)
		}
		return nil

	case model.FieldTypeCheckbox:
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: field.Label,
			Default: visibility.Truthy(current),
			Help:    help,
		})
		if err != nil {
			return err
		}
		if checked {
			state.Set(name, "on")
		} else {
			state.Delete(name)
		}
		return nil

	case model.FieldTypeSelect:
		return r.promptSelect(ctx, field, name, current, help, state)

	case model.FieldTypeTextarea:
		for {
			value, err := r.driver.TextArea(ctx, TextAreaConfig{
				Message: field.Label,
				Default: current,
				Help:    help,
			})
			if err != nil {
				return err
			}
			if field.Required && strings.TrimSpace(value) == "" {
				_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: required", name))
				continue
			}
			state.Set(name, value)
			return nil
		}

	default:
		validate := validatorFor(field)
		for {
			value, err := r.driver.Input(ctx, InputConfig{
				Message:   field.Label,
				Default:   current,
				Help:      help,
				Validator: validate,
			})
			if err != nil {
				return err
			}
			if err := validate(value); err != nil {
				_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", name, err))
				continue
			}
			state.Set(name, strings.TrimSpace(value))
			return nil
		}
	}
}

func (r *Renderer) promptSelect(ctx context.Context, field model.Field, name, current, help string, state *State) error {
	labels := make([]string, 0, len(field.Options)+1)
	values := make([]string, 0, len(field.Options)+1)
	if !field.Required {
		labels = append(labels, noneOption)
		values = append(values, "")
	}
	for _, option := range field.Options {
		label := option.Label
		if label == "" {
			label = option.Value
		}
		labels = append(labels, label)
		values = append(values, option.Value)
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      labels,
			DefaultIndex: slices.Index(values, current),
			Help:         help,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", name))
			continue
		}
		if values[idx] == "" {
			state.Delete(name)
			return nil
		}
		state.Set(name, values[idx])
		return nil
	}
}

func validatorFor(field model.Field) func(string) error {
	return func(value string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			if field.Required {
				return errors.New("required")
			}
			return nil
		}
		if field.Type == model.FieldTypeNumber {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return fmt.Errorf("%q is not a number", value)
			}
		}
		return nil
	}
}

func displayHelp(field model.Field) string {
	if field.Tooltip != "" {
		return field.Tooltip
	}
	return field.HelpText
}
