package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
)

// jsonBytes nests formset entries under their prefix and types checkbox and
// number values:
//
//	{"name": "run", "outcomes": [{"name": "Win", "probability": 0.4}]}
func jsonBytes(form model.Form, values url.Values, state *State) ([]byte, error) {
	doc := make(map[string]any)

	fields := append([]model.Field(nil), form.Fields...)
	for _, section := range form.Sections {
		fields = append(fields, section.Fields...)
	}
	for _, field := range fields {
		if value, ok := typedValue(field, values, field.Name); ok {
			doc[field.Name] = value
		}
	}

	for _, set := range form.Formsets {
		total := 0
		if m, ok := state.Management(set.Prefix); ok {
			total = m.Total
		}
		entries := make([]map[string]any, 0, total)
		for i := range total {
			entry := make(map[string]any, len(set.Fields))
			for _, field := range set.Fields {
				if value, ok := typedValue(field, values, formset.FieldName(set.Prefix, i, field.Name)); ok {
					entry[field.Name] = value
				}
			}
			entries = append(entries, entry)
		}
		doc[set.Prefix] = entries
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: encode json: %w", err)
	}
	return out, nil
}

func typedValue(field model.Field, values url.Values, name string) (any, bool) {
	raw, present := values[name]
	switch field.Type {
	case model.FieldTypeCheckbox:
		return present && len(raw) > 0 && raw[0] != "", true
	case model.FieldTypeNumber:
		if !present || len(raw) == 0 || strings.TrimSpace(raw[0]) == "" {
			return nil, false
		}
		if number, err := strconv.ParseFloat(strings.TrimSpace(raw[0]), 64); err == nil {
			return number, true
		}
		return raw[0], true
	default:
		if !present || len(raw) == 0 {
			return nil, false
		}
		return raw[0], true
	}
}

func prettyPrint(values url.Values) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, values.Get(name))
	}
	return b.String()
}
