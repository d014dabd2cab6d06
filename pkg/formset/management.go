package formset

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/render"
)

// Management form field suffixes.
const (
	TotalFormsSuffix   = "TOTAL_FORMS"
	InitialFormsSuffix = "INITIAL_FORMS"
	MinNumFormsSuffix  = "MIN_NUM_FORMS"
	MaxNumFormsSuffix  = "MAX_NUM_FORMS"
)

// DefaultMaxNum mirrors the upper bound Django advertises when a formset does
// not declare one.
const DefaultMaxNum = 1000

// ErrManagementForm is returned when submitted values lack a usable
// TOTAL_FORMS counter.
var ErrManagementForm = errors.New("formset: management form data is missing or has been tampered with")

// ManagementForm carries the hidden counters submitted alongside a formset.
type ManagementForm struct {
	Prefix  string
	Total   int
	Initial int
	Min     int
	Max     int
}

// ManagementName returns `<prefix>-<suffix>`.
func ManagementName(prefix, suffix string) string {
	return strings.TrimSpace(prefix) + "-" + suffix
}

// CounterName returns the TOTAL_FORMS input name for prefix.
func CounterName(prefix string) string {
	return ManagementName(prefix, TotalFormsSuffix)
}

// CounterID returns the TOTAL_FORMS element id for prefix.
func CounterID(prefix string) string {
	return IDPrefix + CounterName(prefix)
}

// HiddenFields lists the management inputs in deterministic order.
func (m ManagementForm) HiddenFields() []render.HiddenField {
	maxNum := m.Max
	if maxNum <= 0 {
		maxNum = DefaultMaxNum
	}
	return render.HiddenFields(
		render.Hidden(ManagementName(m.Prefix, TotalFormsSuffix), m.Total),
		render.Hidden(ManagementName(m.Prefix, InitialFormsSuffix), m.Initial),
		render.Hidden(ManagementName(m.Prefix, MinNumFormsSuffix), m.Min),
		render.Hidden(ManagementName(m.Prefix, MaxNumFormsSuffix), maxNum),
	)
}

// Values encodes the management form into url.Values.
func (m ManagementForm) Values() url.Values {
	values := url.Values{}
	for _, field := range m.HiddenFields() {
		values.Set(field.Name, field.Value)
	}
	return values
}

// ReadManagementForm extracts the management counters for prefix from
// submitted values. TOTAL_FORMS is mandatory; the remaining counters default
// to zero (or DefaultMaxNum) when absent.
func ReadManagementForm(prefix string, values url.Values) (ManagementForm, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ManagementForm{}, fmt.Errorf("%w: prefix is required", ErrManagementForm)
	}
	total, ok := readCounter(values, ManagementName(prefix, TotalFormsSuffix))
	if !ok {
		return ManagementForm{}, fmt.Errorf("%w: %s", ErrManagementForm, CounterName(prefix))
	}
	form := ManagementForm{Prefix: prefix, Total: total, Max: DefaultMaxNum}
	if initial, ok := readCounter(values, ManagementName(prefix, InitialFormsSuffix)); ok {
		form.Initial = initial
	}
	if minNum, ok := readCounter(values, ManagementName(prefix, MinNumFormsSuffix)); ok {
		form.Min = minNum
	}
	if maxNum, ok := readCounter(values, ManagementName(prefix, MaxNumFormsSuffix)); ok {
		form.Max = maxNum
	}
	return form, nil
}

// EntryValues groups submitted `prefix-i-field` values by entry index for the
// first total entries. Entries without any submitted field yield an empty map.
func EntryValues(prefix string, total int, values url.Values) []map[string]string {
	if total <= 0 {
		return nil
	}
	entries := make([]map[string]string, total)
	for i := range entries {
		entries[i] = make(map[string]string)
	}
	for key, submitted := range values {
		id, ok := ParseIdentifierWithPrefix(key, prefix)
		if !ok || id.Prefix != prefix || id.Index >= total {
			continue
		}
		if len(submitted) == 0 {
			continue
		}
		entries[id.Index][id.Field] = submitted[0]
	}
	return entries
}

func readCounter(values url.Values, key string) (int, bool) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, false
	}
	if _, ok := parseIndex(raw); !ok {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
