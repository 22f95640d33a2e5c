package feed

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NewRecord builds a record from alternating key/value string pairs, in order.
func NewRecord(kv ...string) *Record {
	r := &Record{fields: orderedmap.New[string, json.RawMessage]()}
	for i := 0; i+1 < len(kv); i += 2 {
		value, _ := json.Marshal(kv[i+1])
		r.fields.Set(kv[i], value)
	}
	r.nick = NewNick(r.String(FieldNick))
	return r
}

func decodeRecord(data []byte) (*Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected JSON object, got %s", preview(trimmed))
	}

	fields := orderedmap.New[string, json.RawMessage]()
	if err := fields.UnmarshalJSON(trimmed); err != nil {
		return nil, err
	}

	r := &Record{fields: fields}
	r.nick = NewNick(r.String(FieldNick))
	return r, nil
}

// String returns the value of a string field, or "" when the field is
// missing or holds something other than a string.
func (r *Record) String(key string) string {
	raw, ok := r.fields.Get(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (r *Record) Name() string { return r.String(FieldName) }
func (r *Record) URL() string  { return r.String(FieldURL) }
func (r *Record) Nick() Nick   { return r.nick }

func (r *Record) Keys() []string {
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// With returns a copy of the record with key set to value. An existing key
// keeps its position; a new one is appended.
func (r *Record) With(key string, value any) (*Record, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}

	fields := orderedmap.New[string, json.RawMessage]()
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		fields.Set(pair.Key, pair.Value)
	}
	fields.Set(key, encoded)

	return &Record{fields: fields, nick: r.nick}, nil
}

// Equal reports whether both records hold the same keys in the same order
// with semantically equal values.
func (r *Record) Equal(other *Record) bool {
	if r.fields.Len() != other.fields.Len() {
		return false
	}
	a, b := r.fields.Oldest(), other.fields.Oldest()
	for ; a != nil && b != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key {
			return false
		}
		var av, bv any
		if json.Unmarshal(a.Value, &av) != nil || json.Unmarshal(b.Value, &bv) != nil {
			return false
		}
		ae, _ := json.Marshal(av)
		be, _ := json.Marshal(bv)
		if !bytes.Equal(ae, be) {
			return false
		}
	}
	return a == nil && b == nil
}

// writeIndented writes the record as a JSON object whose members sit at the
// given indent level, matching the layout of a two-space indented array.
func (r *Record) writeIndented(buf *bytes.Buffer, level string) error {
	if r.fields.Len() == 0 {
		buf.WriteString("{}")
		return nil
	}

	inner := level + "  "
	buf.WriteString("{\n")
	first := true
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteString(",\n")
		}
		first = false

		key, err := encodeString(pair.Key)
		if err != nil {
			return err
		}
		buf.WriteString(inner)
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(buf, pair.Value, inner, "  "); err != nil {
			return fmt.Errorf("invalid value for %q: %w", pair.Key, err)
		}
	}
	buf.WriteString("\n")
	buf.WriteString(level)
	buf.WriteString("}")
	return nil
}

func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func preview(data []byte) string {
	const max = 20
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	if len(data) == 0 {
		return "empty input"
	}
	return string(data)
}
