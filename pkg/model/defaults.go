package model

import (
	"errors"
	"fmt"
	"strings"
)

// Defaults applied by Normalize.
const (
	DefaultEntryClass = "formset-entry"
	DefaultAddLabel   = "Add another"
	DefaultMethod     = "post"
	DefaultSubmit     = "Submit"
	DefaultBusyLabel  = "Running..."
)

var (
	// ErrMissingID is returned for forms without an id.
	ErrMissingID = errors.New("model: form id is required")
	// ErrMissingPrefix is returned for formsets without a prefix.
	ErrMissingPrefix = errors.New("model: formset prefix is required")
	// ErrMissingFieldName is returned for fields without a name.
	ErrMissingFieldName = errors.New("model: field name is required")
)

// Normalize fills presentation defaults.
func (fs Formset) Normalize() Formset {
	fs.Prefix = strings.TrimSpace(fs.Prefix)
	if strings.TrimSpace(fs.EntryClass) == "" {
		fs.EntryClass = DefaultEntryClass
	}
	if strings.TrimSpace(fs.ContainerID) == "" {
		fs.ContainerID = fs.Prefix + "-formset"
	}
	if strings.TrimSpace(fs.AddButtonID) == "" {
		fs.AddButtonID = fs.Prefix + "-add-btn"
	}
	if strings.TrimSpace(fs.AddLabel) == "" {
		fs.AddLabel = DefaultAddLabel
	}
	if fs.Extra < 0 {
		fs.Extra = 0
	}
	if fs.MinNum < 0 {
		fs.MinNum = 0
	}
	if fs.MaxNum < 0 {
		fs.MaxNum = 0
	}
	fs.Fields = normalizeFields(fs.Fields)
	return fs
}

// InitialEntries is the number of entries rendered for a formset holding
// existing saved entries: max(existing, MinNum) + Extra, capped by MaxNum
// when set. At least one entry is always rendered so replication has a
// template to clone.
func (fs Formset) InitialEntries(existing int) int {
	total := max(existing, fs.MinNum) + fs.Extra
	if fs.MaxNum > 0 && total > fs.MaxNum {
		total = max(fs.MaxNum, existing)
	}
	return max(total, 1)
}

// Normalize fills defaults across the form.
func (f Form) Normalize() Form {
	f.ID = strings.TrimSpace(f.ID)
	if strings.TrimSpace(f.Method) == "" {
		f.Method = DefaultMethod
	}
	f.Method = strings.ToLower(f.Method)
	if strings.TrimSpace(f.Submit.Label) == "" {
		f.Submit.Label = DefaultSubmit
	}
	if strings.TrimSpace(f.Submit.BusyLabel) == "" {
		f.Submit.BusyLabel = DefaultBusyLabel
	}
	if strings.TrimSpace(f.Submit.SpinnerID) == "" && f.ID != "" {
		f.Submit.SpinnerID = f.ID + "-spinner"
	}
	f.Fields = normalizeFields(f.Fields)
	if len(f.Sections) > 0 {
		sections := make([]Section, len(f.Sections))
		for i, section := range f.Sections {
			section.Fields = normalizeFields(section.Fields)
			sections[i] = section
		}
		f.Sections = sections
	}
	if len(f.Formsets) > 0 {
		formsets := make([]Formset, len(f.Formsets))
		for i, fs := range f.Formsets {
			formsets[i] = fs.Normalize()
		}
		f.Formsets = formsets
	}
	return f
}

// Validate checks the structural requirements renderers rely on.
func (f Form) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return ErrMissingID
	}
	if err := validateFields(f.Fields, ""); err != nil {
		return err
	}
	for _, section := range f.Sections {
		if strings.TrimSpace(section.ID) == "" {
			return fmt.Errorf("model: section of form %q: id is required", f.ID)
		}
		if strings.TrimSpace(section.Control) == "" {
			return fmt.Errorf("model: section %q: control is required", section.ID)
		}
		if err := validateFields(section.Fields, section.ID); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(f.Formsets))
	for _, fs := range f.Formsets {
		prefix := strings.TrimSpace(fs.Prefix)
		if prefix == "" {
			return ErrMissingPrefix
		}
		if strings.Contains(prefix, " ") {
			return fmt.Errorf("model: formset prefix %q may not contain spaces", prefix)
		}
		if _, dup := seen[prefix]; dup {
			return fmt.Errorf("model: duplicate formset prefix %q", prefix)
		}
		seen[prefix] = struct{}{}
		if len(fs.Fields) == 0 {
			return fmt.Errorf("model: formset %q has no fields", prefix)
		}
		if err := validateFields(fs.Fields, prefix); err != nil {
			return err
		}
	}
	return nil
}

func normalizeFields(fields []Field) []Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		field.Name = strings.TrimSpace(field.Name)
		if field.Type == "" {
			field.Type = FieldTypeText
			if len(field.Options) > 0 {
				field.Type = FieldTypeSelect
			}
		}
		if strings.TrimSpace(field.Label) == "" {
			field.Label = Labelize(field.Name)
		}
		out[i] = field
	}
	return out
}

func validateFields(fields []Field, scope string) error {
	for _, field := range fields {
		if strings.TrimSpace(field.Name) == "" {
			if scope == "" {
				return ErrMissingFieldName
			}
			return fmt.Errorf("%w (in %q)", ErrMissingFieldName, scope)
		}
	}
	return nil
}

// Labelize turns snake_case or kebab-case names into a title-cased label.
func Labelize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
