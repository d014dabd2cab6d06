package formset

import (
	"strconv"
	"strings"
)

// IDPrefix is the prefix Django-style renderers prepend to element ids
// (`id_outcomes-0-name` for the field named `outcomes-0-name`).
const IDPrefix = "id_"

// Identifier is a structured `prefix-index-fieldname` string.
type Identifier struct {
	Prefix string
	Index  int
	Field  string
}

// String reassembles the identifier.
func (id Identifier) String() string {
	return id.Prefix + "-" + strconv.Itoa(id.Index) + "-" + id.Field
}

// WithIndex returns a copy of id pointing at index.
func (id Identifier) WithIndex(index int) Identifier {
	id.Index = index
	return id
}

// FieldName builds the submitted name for a field of entry index.
func FieldName(prefix string, index int, field string) string {
	return Identifier{Prefix: prefix, Index: index, Field: field}.String()
}

// FieldID builds the element id for a field of entry index.
func FieldID(prefix string, index int, field string) string {
	return IDPrefix + FieldName(prefix, index, field)
}

// ParseIdentifier splits s at its first decimal segment bounded by dashes.
// Prefix and field must be non-empty and the index may not carry leading
// zeros, so `a-00-b` or `-0-b` do not parse.
func ParseIdentifier(s string) (Identifier, bool) {
	return splitAt(s, func(int) bool { return true })
}

// parseIdentifierIndex splits s at the first segment equal to index, so
// numeric segments of a nested prefix (`step-1-legs-0-odds`) stay in Prefix.
func parseIdentifierIndex(s string, index int) (Identifier, bool) {
	return splitAt(s, func(n int) bool { return n == index })
}

func splitAt(s string, match func(int) bool) (Identifier, bool) {
	parts := strings.Split(s, "-")
	if len(parts) < 3 {
		return Identifier{}, false
	}
	for i := 1; i < len(parts)-1; i++ {
		index, ok := parseIndex(parts[i])
		if !ok || !match(index) {
			continue
		}
		prefix := strings.Join(parts[:i], "-")
		field := strings.Join(parts[i+1:], "-")
		if prefix == "" || field == "" {
			return Identifier{}, false
		}
		return Identifier{Prefix: prefix, Index: index, Field: field}, true
	}
	return Identifier{}, false
}

// ParseIdentifierWithPrefix parses s only when it starts with prefix (or the
// `id_`-qualified form of prefix) followed by an index segment. The returned
// Prefix keeps the `id_` qualifier when present so String round-trips.
func ParseIdentifierWithPrefix(s, prefix string) (Identifier, bool) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ParseIdentifier(s)
	}
	for _, candidate := range []string{prefix, IDPrefix + prefix} {
		rest, ok := strings.CutPrefix(s, candidate+"-")
		if !ok {
			continue
		}
		rawIndex, field, ok := strings.Cut(rest, "-")
		if !ok || field == "" {
			continue
		}
		index, ok := parseIndex(rawIndex)
		if !ok {
			continue
		}
		return Identifier{Prefix: candidate, Index: index, Field: field}, true
	}
	return Identifier{}, false
}

// Reindex rewrites the first dash-bounded segment of s equal to `from` into
// `to`. Strings without such a segment are returned unchanged with false.
func Reindex(s string, from, to int) (string, bool) {
	return reindex(s, "", from, to)
}

func reindex(s, prefix string, from, to int) (string, bool) {
	var (
		id Identifier
		ok bool
	)
	if strings.TrimSpace(prefix) == "" {
		id, ok = parseIdentifierIndex(s, from)
	} else {
		id, ok = ParseIdentifierWithPrefix(s, prefix)
	}
	if !ok || id.Index != from {
		return s, false
	}
	return id.WithIndex(to).String(), true
}

func parseIndex(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	if len(raw) > 1 && raw[0] == '0' {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return index, true
}
