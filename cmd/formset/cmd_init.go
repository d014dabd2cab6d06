package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/renderers/tui"
)

var fieldTypes = []string{
	string(model.FieldTypeText),
	string(model.FieldTypeNumber),
	string(model.FieldTypeSelect),
	string(model.FieldTypeCheckbox),
	string(model.FieldTypeTextarea),
	string(model.FieldTypeHidden),
}

func newInitCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a form definition with an interactive wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver := c.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
			}

			form, err := (&wizard{driver: driver}).run(cmd.Context())
			if err != nil {
				return err
			}
			if err := form.Normalize().Validate(); err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := model.Encode(&buf, form); err != nil {
				return err
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	return cmd
}

type wizard struct {
	driver tui.PromptDriver
}

func (w *wizard) run(ctx context.Context) (model.Form, error) {
	var form model.Form
	var err error

	if form.ID, err = w.driver.Input(ctx, tui.InputConfig{Message: "Form id", Validator: requiredValue}); err != nil {
		return form, err
	}
	if form.Title, err = w.driver.Input(ctx, tui.InputConfig{Message: "Title", Default: model.Labelize(form.ID)}); err != nil {
		return form, err
	}
	if form.Action, err = w.driver.Input(ctx, tui.InputConfig{Message: "Action URL", Help: "Leave empty to post back to the page"}); err != nil {
		return form, err
	}

	if form.Fields, err = w.fields(ctx, "Add a field?", false); err != nil {
		return form, err
	}

	for {
		more, err := w.driver.Confirm(ctx, tui.ConfirmConfig{Message: "Add a formset?"})
		if err != nil {
			return form, err
		}
		if !more {
			break
		}
		set, err := w.formset(ctx)
		if err != nil {
			return form, err
		}
		form.Formsets = append(form.Formsets, set)
	}
	return form, nil
}

func (w *wizard) formset(ctx context.Context) (model.Formset, error) {
	var set model.Formset
	var err error

	if set.Prefix, err = w.driver.Input(ctx, tui.InputConfig{
		Message:   "Formset prefix",
		Help:      "Field names become <prefix>-<index>-<field>",
		Validator: prefixValue,
	}); err != nil {
		return set, err
	}
	if set.Title, err = w.driver.Input(ctx, tui.InputConfig{Message: "Formset title", Default: model.Labelize(set.Prefix)}); err != nil {
		return set, err
	}
	raw, err := w.driver.Input(ctx, tui.InputConfig{Message: "Minimum entries", Default: "1", Validator: countValue})
	if err != nil {
		return set, err
	}
	set.MinNum, _ = strconv.Atoi(strings.TrimSpace(raw))

	set.Fields, err = w.fields(ctx, "Add an entry field?", true)
	return set, err
}

// fields prompts for field definitions until declined. With atLeastOne the
// first field is asked without confirmation.
func (w *wizard) fields(ctx context.Context, question string, atLeastOne bool) ([]model.Field, error) {
	var fields []model.Field
	for {
		if !atLeastOne || len(fields) > 0 {
			more, err := w.driver.Confirm(ctx, tui.ConfirmConfig{Message: question})
			if err != nil {
				return nil, err
			}
			if !more {
				return fields, nil
			}
		}
		field, err := w.field(ctx)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
}

func (w *wizard) field(ctx context.Context) (model.Field, error) {
	var field model.Field
	var err error

	if field.Name, err = w.driver.Input(ctx, tui.InputConfig{Message: "Field name", Validator: prefixValue}); err != nil {
		return field, err
	}
	idx, err := w.driver.Select(ctx, tui.SelectConfig{Message: "Field type", Options: fieldTypes})
	if err != nil {
		return field, err
	}
	if idx < 0 || idx >= len(fieldTypes) {
		return field, fmt.Errorf("invalid field type selection %d", idx)
	}
	field.Type = model.FieldType(fieldTypes[idx])

	if field.Type == model.FieldTypeSelect {
		raw, err := w.driver.Input(ctx, tui.InputConfig{
			Message:   "Options",
			Help:      "Comma separated values",
			Validator: requiredValue,
		})
		if err != nil {
			return field, err
		}
		for _, value := range strings.Split(raw, ",") {
			if value = strings.TrimSpace(value); value != "" {
				field.Options = append(field.Options, model.Option{Value: value, Label: model.Labelize(value)})
			}
		}
	}
	if field.Type != model.FieldTypeHidden && field.Type != model.FieldTypeCheckbox {
		if field.Required, err = w.driver.Confirm(ctx, tui.ConfirmConfig{Message: "Required?"}); err != nil {
			return field, err
		}
	}
	return field, nil
}

func requiredValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func prefixValue(value string) error {
	if err := requiredValue(value); err != nil {
		return err
	}
	if strings.ContainsAny(strings.TrimSpace(value), " -") {
		return errors.New("spaces and dashes are not allowed")
	}
	return nil
}

func countValue(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return errors.New("enter a non-negative whole number")
	}
	return nil
}
