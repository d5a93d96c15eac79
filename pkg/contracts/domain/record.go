package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one data row: an ordered mapping from column label to cell value.
// Keys keep the position of their first insertion.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record with room for n columns.
func NewRecord(n int) Record {
	return Record{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// RecordOf builds a record from alternating key/value pairs, mostly for tests
// and fixtures.
func RecordOf(pairs ...interface{}) Record {
	r := NewRecord(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case Value:
			r.Set(key, v)
		case string:
			r.Set(key, String(v))
		case int:
			r.Set(key, Int(int64(v)))
		case int64:
			r.Set(key, Int(v))
		case float64:
			r.Set(key, Float(v))
		default:
			r.Set(key, Null())
		}
	}
	return r
}

// Set stores a value. An existing key keeps its position and the new value
// replaces the old one.
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value for key and whether it is present.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or null when absent.
func (r Record) Value(key string) Value {
	return r.values[key]
}

// Keys returns the column labels in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns.
func (r Record) Len() int { return len(r.keys) }

// MarshalJSON writes the record as a JSON object in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving the order of its keys.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	rec := NewRecord(8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			// Nested structures are kept as their JSON text.
			v = String(string(raw))
		}
		rec.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = rec
	return nil
}

// Columns returns the union of record keys in first-seen order.
func Columns(records []Record) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, rec := range records {
		for _, k := range rec.keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}
