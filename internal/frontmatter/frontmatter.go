// Package frontmatter parses and serializes the restricted key/value header
// embedded at the top of vault documents.
//
// The supported grammar is intentionally minimal to keep parsing
// deterministic and avoid the complexity of full YAML:
//
//	---
//	reminder_datetime: "2024-01-15T09:00:00"
//	reminder_recurrent: daily
//	tags: [inbox, urgent]
//	---
//
// Scalar values are strings; values wrapped in matching single or double
// quotes have the quotes stripped; values wrapped in [...] are single-level
// string arrays split on commas. Lines without a colon are ignored rather
// than rejected, because vault documents are hand-edited and a broken header
// line must never make a document unreadable.
package frontmatter

import (
	"slices"
	"strings"
)

// Delimiter is the fence line that opens and closes a header block.
const Delimiter = "---"

// Value is a frontmatter value: either a scalar string or a single-level
// string array.
type Value struct {
	Str    string
	List   []string
	IsList bool
}

// String creates a scalar Value.
func String(s string) Value {
	return Value{Str: s}
}

// List creates an array Value.
func List(items ...string) Value {
	return Value{List: items, IsList: true}
}

// Equal reports whether two values are identical.
func (v Value) Equal(other Value) bool {
	if v.IsList != other.IsList {
		return false
	}

	if v.IsList {
		return slices.Equal(v.List, other.List)
	}

	return v.Str == other.Str
}

// Fields holds parsed header fields in document order. The zero value is an
// empty, usable field set.
type Fields struct {
	keys []string
	vals map[string]Value
}

// NewFields returns an empty field set.
func NewFields() *Fields {
	return &Fields{vals: make(map[string]Value)}
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}

	return len(f.keys)
}

// Keys returns the field keys in document order. The returned slice is a
// copy.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}

	return slices.Clone(f.keys)
}

// Get returns the value for key.
func (f *Fields) Get(key string) (Value, bool) {
	if f == nil || f.vals == nil {
		return Value{}, false
	}

	v, ok := f.vals[key]

	return v, ok
}

// GetString returns the scalar string for key.
// Returns ("", false) if key is missing or holds an array.
func (f *Fields) GetString(key string) (string, bool) {
	v, ok := f.Get(key)
	if !ok || v.IsList {
		return "", false
	}

	return v.Str, true
}

// GetList returns the string array for key.
// Returns (nil, false) if key is missing or holds a scalar.
func (f *Fields) GetList(key string) ([]string, bool) {
	v, ok := f.Get(key)
	if !ok || !v.IsList {
		return nil, false
	}

	return v.List, true
}

// Set stores value under key, preserving the key's existing position or
// appending it at the end.
func (f *Fields) Set(key string, value Value) {
	if f.vals == nil {
		f.vals = make(map[string]Value)
	}

	if _, exists := f.vals[key]; !exists {
		f.keys = append(f.keys, key)
	}

	f.vals[key] = value
}

// Delete removes key. Deleting a missing key is a no-op.
func (f *Fields) Delete(key string) {
	if f == nil || f.vals == nil {
		return
	}

	if _, exists := f.vals[key]; !exists {
		return
	}

	delete(f.vals, key)

	f.keys = slices.DeleteFunc(f.keys, func(k string) bool { return k == key })
}

// Equal reports whether two field sets hold the same keys in the same order
// with equal values.
func (f *Fields) Equal(other *Fields) bool {
	if f.Len() != other.Len() {
		return false
	}

	for i, key := range f.keys {
		if other.keys[i] != key {
			return false
		}

		ov := other.vals[key]
		if !f.vals[key].Equal(ov) {
			return false
		}
	}

	return true
}

// Parse splits a document into header fields and body.
//
// The header is a leading block fenced by "---" lines. Each line inside is
// split on the first colon into key and value; the value keeps any further
// colons (timestamps contain them). Parse is lenient and never fails: if no
// delimiter block is found, it returns empty fields and the whole text,
// trimmed, as body.
func Parse(document string) (*Fields, string) {
	fields := NewFields()

	inner, tail, ok := splitHeader(document)
	if !ok {
		return fields, strings.TrimSpace(document)
	}

	for _, line := range strings.Split(inner, "\n") {
		key, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		fields.Set(key, parseValue(strings.TrimSpace(rest)))
	}

	return fields, strings.TrimSpace(tail)
}

// splitHeader extracts the raw header block and the remaining tail.
// The opening delimiter must be the very first line of the document.
func splitHeader(document string) (inner, tail string, ok bool) {
	rest, found := strings.CutPrefix(document, Delimiter+"\n")
	if !found {
		return "", "", false
	}

	idx := strings.Index(rest, "\n"+Delimiter)
	if idx < 0 {
		return "", "", false
	}

	inner = rest[:idx]

	tail = rest[idx+len("\n"+Delimiter):]
	if after, hasNewline := strings.CutPrefix(tail, "\n"); hasNewline {
		tail = after
	}

	return inner, tail, true
}

func parseValue(raw string) Value {
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") && len(raw) >= 2 {
		inner := strings.TrimSpace(raw[1 : len(raw)-1])
		if inner == "" {
			return Value{List: []string{}, IsList: true}
		}

		parts := strings.Split(inner, ",")

		items := make([]string, 0, len(parts))
		for _, part := range parts {
			items = append(items, stripQuotes(strings.TrimSpace(part)))
		}

		return Value{List: items, IsList: true}
	}

	return Value{Str: stripQuotes(raw)}
}

// stripQuotes removes one pair of matching single or double quotes.
func stripQuotes(s string) string {
	if len(s) < 2 {
		return s
	}

	first, last := s[0], s[len(s)-1]
	if first != last {
		return s
	}

	if first == '"' || first == '\'' {
		return s[1 : len(s)-1]
	}

	return s
}

// Serialize re-emits fields wrapped in delimiter lines, followed by body.
// If fields is empty, only the body is emitted (no empty delimiter block).
func Serialize(fields *Fields, body string) string {
	if fields.Len() == 0 {
		return body
	}

	var builder strings.Builder

	builder.WriteString(Delimiter)
	builder.WriteString("\n")

	for _, key := range fields.keys {
		value := fields.vals[key]

		builder.WriteString(key)
		builder.WriteString(": ")

		if value.IsList {
			builder.WriteString("[")
			builder.WriteString(strings.Join(value.List, ", "))
			builder.WriteString("]")
		} else {
			builder.WriteString(quoteIfNeeded(value.Str))
		}

		builder.WriteString("\n")
	}

	builder.WriteString(Delimiter)
	builder.WriteString("\n")
	builder.WriteString(body)

	return builder.String()
}

// quoteIfNeeded wraps a scalar in double quotes when re-parsing it bare
// would change its meaning.
func quoteIfNeeded(s string) string {
	if s == "" {
		return s
	}

	if strings.TrimSpace(s) != s {
		return `"` + s + `"`
	}

	switch s[0] {
	case '[', '"', '\'':
		return `"` + s + `"`
	}

	return s
}

// Update parses the document, applies each update, and re-serializes. A nil
// update value deletes the key; a non-nil value sets it. Applying the same
// updates twice yields the same result as once.
//
// Updates are applied in sorted key order so the result is deterministic
// regardless of map iteration order.
func Update(document string, updates map[string]*Value) string {
	fields, body := Parse(document)

	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		value := updates[key]
		if value == nil {
			fields.Delete(key)

			continue
		}

		fields.Set(key, *value)
	}

	return Serialize(fields, body)
}
