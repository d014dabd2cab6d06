package vanilla

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/visibility"
)

type attrView struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type fieldView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Type        string       `json:"type"`
	Value       string       `json:"value"`
	Placeholder string       `json:"placeholder"`
	Tooltip     string       `json:"tooltip"`
	Help        string       `json:"help"`
	Required    bool         `json:"required"`
	Checked     bool         `json:"checked"`
	Hidden      bool         `json:"hidden"`
	Checkbox    bool         `json:"checkbox"`
	Select      bool         `json:"select"`
	Textarea    bool         `json:"textarea"`
	Attrs       []attrView   `json:"attrs"`
	Options     []optionView `json:"options"`
	Errors      []string     `json:"errors"`
}

type hiddenView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// reservedAttrs are emitted by the templates themselves.
var reservedAttrs = map[string]struct{}{
	"id": {}, "name": {}, "type": {}, "value": {}, "class": {}, "checked": {},
}

func buildFieldView(field model.Field, id, name string, opts render.RenderOptions) fieldView {
	value, ok := opts.Value(name)
	if !ok {
		value = field.Default
	}

	view := fieldView{
		ID:          id,
		Name:        name,
		Label:       field.Label,
		Type:        string(field.Type),
		Value:       value,
		Placeholder: field.Placeholder,
		Tooltip:     strings.TrimSpace(field.Tooltip),
		Help:        sanitizeHelpText(field.HelpText),
		Required:    field.Required,
		Errors:      opts.Errors[name],
		Attrs:       sortedAttrs(field.Attrs),
	}

	switch field.Type {
	case model.FieldTypeHidden:
		view.Hidden = true
	case model.FieldTypeCheckbox:
		view.Checkbox = true
		view.Checked = visibility.Truthy(value)
	case model.FieldTypeSelect:
		view.Select = true
		view.Options = make([]optionView, 0, len(field.Options))
		for _, option := range field.Options {
			label := option.Label
			if label == "" {
				label = option.Value
			}
			view.Options = append(view.Options, optionView{
				Value:    option.Value,
				Label:    label,
				Selected: value != "" && option.Value == value,
			})
		}
	case model.FieldTypeTextarea:
		view.Textarea = true
	}
	return view
}

func sortedAttrs(attrs map[string]string) []attrView {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, reserved := reservedAttrs[key]; reserved {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]attrView, 0, len(keys))
	for _, key := range keys {
		out = append(out, attrView{Key: key, Value: lookupFold(attrs, key)})
	}
	return out
}

func lookupFold(attrs map[string]string, key string) string {
	if value, ok := attrs[key]; ok {
		return value
	}
	for k, v := range attrs {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return v
		}
	}
	return ""
}

// topLevelID honours an explicit id attribute so page scripts and behaviours
// can address well-known controls (for example strategy-select).
func topLevelID(field model.Field) string {
	if id := strings.TrimSpace(lookupFold(field.Attrs, "id")); id != "" {
		return id
	}
	return formset.IDPrefix + field.Name
}

// existingEntries counts the entries carried by opts for prefix: an explicit
// "<prefix>.count" wins, otherwise the highest submitted index plus one.
func existingEntries(prefix string, opts render.RenderOptions) (int, bool) {
	if raw, ok := opts.Value(render.CountKey(prefix)); ok {
		if count, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && count >= 0 {
			return count, true
		}
	}
	highest := -1
	for key := range opts.Values {
		id, ok := formset.ParseIdentifierWithPrefix(key, prefix)
		if !ok || id.Prefix != prefix {
			continue
		}
		highest = max(highest, id.Index)
	}
	return highest + 1, false
}

func visibilityContext(form model.Form, opts render.RenderOptions) visibility.Context {
	values := make(map[string]string)
	collect := func(fields []model.Field) {
		for _, field := range fields {
			value, ok := opts.Value(field.Name)
			if !ok {
				value = field.Default
			}
			if field.Type == model.FieldTypeCheckbox {
				if visibility.Truthy(value) {
					value = "on"
				} else {
					value = ""
				}
			}
			values[field.Name] = value
		}
	}
	collect(form.Fields)
	for _, section := range form.Sections {
		collect(section.Fields)
	}
	return visibility.Context{Values: values}
}
