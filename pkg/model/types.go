package model

import "strings"

// FieldType enumerates the controls renderers know how to emit.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeHidden   FieldType = "hidden"
)

// Option is a select choice.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes a single control.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Type        FieldType         `json:"type,omitempty" yaml:"type,omitempty"`
	HelpText    string            `json:"helpText,omitempty" yaml:"help_text,omitempty"`
	Tooltip     string            `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Default     string            `json:"default,omitempty" yaml:"default,omitempty"`
	Required    bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Options     []Option          `json:"options,omitempty" yaml:"options,omitempty"`
}

// Section groups fields shown only while Rule holds for the Control field.
type Section struct {
	ID      string  `json:"id" yaml:"id"`
	Title   string  `json:"title,omitempty" yaml:"title,omitempty"`
	Control string  `json:"control" yaml:"control"`
	Rule    string  `json:"rule" yaml:"rule"`
	Fields  []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Formset is a repeatable block of fields.
type Formset struct {
	Prefix      string  `json:"prefix" yaml:"prefix"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	EntryClass  string  `json:"entryClass,omitempty" yaml:"entry_class,omitempty"`
	ContainerID string  `json:"containerId,omitempty" yaml:"container_id,omitempty"`
	AddButtonID string  `json:"addButtonId,omitempty" yaml:"add_button_id,omitempty"`
	AddLabel    string  `json:"addLabel,omitempty" yaml:"add_label,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
	Extra       int     `json:"extra,omitempty" yaml:"extra,omitempty"`
	MinNum      int     `json:"minNum,omitempty" yaml:"min_num,omitempty"`
	MaxNum      int     `json:"maxNum,omitempty" yaml:"max_num,omitempty"`
}

// Submit configures the submit button and its busy feedback.
type Submit struct {
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
	BusyLabel string `json:"busyLabel,omitempty" yaml:"busy_label,omitempty"`
	SpinnerID string `json:"spinnerId,omitempty" yaml:"spinner_id,omitempty"`
}

// Form is the root definition rendered into a page.
type Form struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Action   string    `json:"action,omitempty" yaml:"action,omitempty"`
	Method   string    `json:"method,omitempty" yaml:"method,omitempty"`
	Class    string    `json:"class,omitempty" yaml:"class,omitempty"`
	Fields   []Field   `json:"fields,omitempty" yaml:"fields,omitempty"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
	Formsets []Formset `json:"formsets,omitempty" yaml:"formsets,omitempty"`
	Submit   Submit    `json:"submit,omitempty" yaml:"submit,omitempty"`
}

// Formset returns the formset registered under prefix.
func (f Form) Formset(prefix string) (Formset, bool) {
	prefix = strings.TrimSpace(prefix)
	for _, fs := range f.Formsets {
		if fs.Prefix == prefix {
			return fs, true
		}
	}
	return Formset{}, false
}

// Field returns the top-level or section field named name.
func (f Form) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	for _, section := range f.Sections {
		for _, field := range section.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return Field{}, false
}
