package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/render/template"
	"github.com/goliatone/go-formset/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formset/pkg/visibility"
)

const (
	fieldTemplate   = "templates/field.tmpl"
	entryTemplate   = "templates/entry.tmpl"
	sectionTemplate = "templates/section.tmpl"
	formsetTemplate = "templates/formset.tmpl"
	formTemplate    = "templates/form.tmpl"
	pageTemplate    = "templates/page.tmpl"
)

// ErrUnknownFormset is returned by RenderEntry for prefixes the form does not
// declare.
var ErrUnknownFormset = errors.New("vanilla: unknown formset prefix")

// Option configures the vanilla renderer.
type Option func(*config)

type config struct {
	templatesFS  fs.FS
	templatesDir string
	templates    template.TemplateRenderer
	evaluator    visibility.Evaluator
	document     bool
	stylesheet   string
	inlineCSS    bool
}

// WithTemplatesFS overrides the embedded template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templatesFS = files
		}
	}
}

// WithTemplatesDir loads templates from disk, falling back to the embedded
// bundle for files the directory does not provide.
func WithTemplatesDir(dir string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(dir)
	}
}

// WithTemplateRenderer supplies a ready template engine; the FS and
// directory options are ignored when set.
func WithTemplateRenderer(renderer template.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templates = renderer
		}
	}
}

// WithVisibilityEvaluator replaces the default rule evaluator used to decide
// which conditional sections start visible.
func WithVisibilityEvaluator(evaluator visibility.Evaluator) Option {
	return func(cfg *config) {
		if evaluator != nil {
			cfg.evaluator = evaluator
		}
	}
}

// WithDocument wraps the form in a complete HTML page.
func WithDocument(enabled bool) Option {
	return func(cfg *config) {
		cfg.document = enabled
	}
}

// WithStylesheet overrides the CSS inlined into full documents. An empty
// value disables inline CSS.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = css
		cfg.inlineCSS = strings.TrimSpace(css) != ""
	}
}

// Renderer renders forms to HTML markup understood by the formset replicator
// and the page behaviours.
type Renderer struct {
	templates  template.TemplateRenderer
	evaluator  visibility.Evaluator
	document   bool
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a vanilla renderer backed by the embedded templates.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templatesFS: TemplatesFS(),
		evaluator:   visibility.NewRules(),
		stylesheet:  defaultStylesheet(),
		inlineCSS:   true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templates
	if templates == nil {
		engineOptions := []gotemplate.Option{gotemplate.WithFS(cfg.templatesFS)}
		if cfg.templatesDir != "" {
			engineOptions = append(engineOptions, gotemplate.WithBaseDir(cfg.templatesDir))
		}
		engine, err := gotemplate.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("vanilla: init templates: %w", err)
		}
		templates = engine
	}

	stylesheet := ""
	if cfg.inlineCSS {
		stylesheet = cfg.stylesheet
	}

	return &Renderer{
		templates:  templates,
		evaluator:  cfg.evaluator,
		document:   cfg.document,
		stylesheet: stylesheet,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form markup, or a full page when WithDocument is set.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	body, err := r.renderBody(ctx, form, opts)
	if err != nil {
		return nil, err
	}

	hidden := make([]hiddenView, 0, len(opts.Hidden))
	for _, field := range render.HiddenFields(opts.Hidden...) {
		hidden = append(hidden, hiddenView{Name: field.Name, Value: field.Value})
	}

	markup, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"form": map[string]any{
			"id":          form.ID,
			"class":       strings.TrimSpace("formset-form " + form.Class),
			"method":      form.Method,
			"action":      form.Action,
			"title":       form.Title,
			"spinnerId":   form.Submit.SpinnerID,
			"submitLabel": form.Submit.Label,
			"busyLabel":   form.Submit.BusyLabel,
			"hidden":      hidden,
			"errors":      opts.Errors[""],
			"body":        body,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla: render form %q: %w", form.ID, err)
	}

	if !r.document {
		return []byte(markup), nil
	}

	title := form.Title
	if title == "" {
		title = form.ID
	}
	page, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"title":      title,
		"stylesheet": r.stylesheet,
		"body":       markup,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla: render page: %w", err)
	}
	return []byte(page), nil
}

// RenderEntry renders a single formset entry at index, the server-side
// counterpart of replicating the template entry in the browser.
func (r *Renderer) RenderEntry(ctx context.Context, form model.Form, prefix string, index int, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, fmt.Errorf("vanilla: entry index %d is negative", index)
	}
	set, ok := form.Normalize().Formset(prefix)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormset, prefix)
	}
	entry, err := r.renderEntry(set, index, opts)
	if err != nil {
		return nil, err
	}
	return []byte(entry), nil
}

func (r *Renderer) renderBody(ctx context.Context, form model.Form, opts render.RenderOptions) (string, error) {
	var body strings.Builder

	placed := make(map[string]bool, len(form.Sections))
	controlled := make(map[string][]model.Section)
	known := make(map[string]bool, len(form.Fields))
	for _, field := range form.Fields {
		known[field.Name] = true
	}
	for _, section := range form.Sections {
		if known[section.Control] {
			controlled[section.Control] = append(controlled[section.Control], section)
		}
	}

	visCtx := visibilityContext(form, opts)

	for _, field := range form.Fields {
		out, err := r.renderField(buildFieldView(field, topLevelID(field), field.Name, opts))
		if err != nil {
			return "", err
		}
		body.WriteString(out)
		body.WriteString("\n")

		for _, section := range controlled[field.Name] {
			out, err := r.renderSection(form, section, visCtx, opts)
			if err != nil {
				return "", err
			}
			body.WriteString(out)
			body.WriteString("\n")
			placed[section.ID] = true
		}
	}

	for _, section := range form.Sections {
		if placed[section.ID] {
			continue
		}
		out, err := r.renderSection(form, section, visCtx, opts)
		if err != nil {
			return "", err
		}
		body.WriteString(out)
		body.WriteString("\n")
	}

	for _, set := range form.Formsets {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := r.renderFormset(set, opts)
		if err != nil {
			return "", err
		}
		body.WriteString(out)
		body.WriteString("\n")
	}
	return body.String(), nil
}

func (r *Renderer) renderField(view fieldView) (string, error) {
	out, err := r.templates.RenderTemplate(fieldTemplate, map[string]any{"field": view})
	if err != nil {
		return "", fmt.Errorf("vanilla: render field %q: %w", view.Name, err)
	}
	return out, nil
}

func (r *Renderer) renderSection(form model.Form, section model.Section, visCtx visibility.Context, opts render.RenderOptions) (string, error) {
	visible, err := r.evaluator.Eval(section.ID, section.Rule, visCtx)
	if err != nil {
		return "", err
	}

	controlID := formset.IDPrefix + section.Control
	if control, ok := form.Field(section.Control); ok {
		controlID = topLevelID(control)
	}

	var body strings.Builder
	for _, field := range section.Fields {
		out, err := r.renderField(buildFieldView(field, topLevelID(field), field.Name, opts))
		if err != nil {
			return "", err
		}
		body.WriteString(out)
		body.WriteString("\n")
	}

	out, err := r.templates.RenderTemplate(sectionTemplate, map[string]any{
		"section": map[string]any{
			"id":        section.ID,
			"title":     section.Title,
			"control":   section.Control,
			"controlId": controlID,
			"rule":      section.Rule,
			"visible":   visible,
			"body":      body.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("vanilla: render section %q: %w", section.ID, err)
	}
	return out, nil
}

func (r *Renderer) renderFormset(set model.Formset, opts render.RenderOptions) (string, error) {
	existing, explicit := existingEntries(set.Prefix, opts)
	total, initial := max(existing, 1), 0
	if !explicit {
		total, initial = set.InitialEntries(existing), existing
	}

	var entries strings.Builder
	for i := range total {
		out, err := r.renderEntry(set, i, opts)
		if err != nil {
			return "", err
		}
		entries.WriteString(out)
		entries.WriteString("\n")
	}

	management := formset.ManagementForm{
		Prefix:  set.Prefix,
		Total:   total,
		Initial: initial,
		Min:     set.MinNum,
		Max:     set.MaxNum,
	}
	hidden := make([]hiddenView, 0, 4)
	for _, field := range management.HiddenFields() {
		hidden = append(hidden, hiddenView{
			ID:    formset.IDPrefix + field.Name,
			Name:  field.Name,
			Value: field.Value,
		})
	}

	out, err := r.templates.RenderTemplate(formsetTemplate, map[string]any{
		"formset": map[string]any{
			"prefix":      set.Prefix,
			"title":       set.Title,
			"containerId": set.ContainerID,
			"entryClass":  set.EntryClass,
			"counterId":   formset.CounterID(set.Prefix),
			"addButtonId": set.AddButtonID,
			"addLabel":    set.AddLabel,
			"management":  hidden,
			"entries":     entries.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("vanilla: render formset %q: %w", set.Prefix, err)
	}
	return out, nil
}

func (r *Renderer) renderEntry(set model.Formset, index int, opts render.RenderOptions) (string, error) {
	var body strings.Builder
	for _, field := range set.Fields {
		view := buildFieldView(field,
			formset.FieldID(set.Prefix, index, field.Name),
			formset.FieldName(set.Prefix, index, field.Name),
			opts,
		)
		out, err := r.renderField(view)
		if err != nil {
			return "", err
		}
		body.WriteString(out)
		body.WriteString("\n")
	}

	out, err := r.templates.RenderTemplate(entryTemplate, map[string]any{
		"entry": map[string]any{
			"class": set.EntryClass,
			"body":  body.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("vanilla: render %s entry %d: %w", set.Prefix, index, err)
	}
	return out, nil
}
