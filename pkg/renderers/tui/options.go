package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-formset/pkg/visibility"
)

// OutputFormat selects how a filled form is written out.
type OutputFormat string

const (
	// OutputFormatFormURLEncoded is a POST-ready body with the management
	// form of every formset. It is the default.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatJSON groups formset entries into arrays under their prefix.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText is a readable name: value listing.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// OutputFormats lists the accepted formats in flag help order.
var OutputFormats = []OutputFormat{OutputFormatFormURLEncoded, OutputFormatJSON, OutputFormatPrettyText}

// ParseOutputFormat accepts the flag spelling of a format, ignoring case.
func ParseOutputFormat(name string) (OutputFormat, error) {
	for _, format := range OutputFormats {
		if strings.EqualFold(strings.TrimSpace(name), string(format)) {
			return format, nil
		}
	}
	return "", fmt.Errorf("tui: unknown output format %q (want form, json or pretty)", name)
}

// SubmitTransformer rewrites the collected submission before it is encoded,
// for example to add a CSRF token.
type SubmitTransformer func(url.Values) (url.Values, error)

type Option func(*Renderer)

// WithPromptDriver replaces the survey terminal driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) { r.submitTransformer = fn }
}

// WithVisibilityEvaluator decides which conditional sections get prompted.
// The default is visibility.NewRules.
func WithVisibilityEvaluator(evaluator visibility.Evaluator) Option {
	return func(r *Renderer) {
		if evaluator != nil {
			r.evaluator = evaluator
		}
	}
}
