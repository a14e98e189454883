package stage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fields is a clinical record: a JSON object of {"value": text}
// entries that keeps the order fields were first set in.
type Fields struct {
	names  []string
	values map[string]string
}

type fieldValue struct {
	Value string `json:"value"`
}

// Set stores value under name. A field keeps its first position when
// set again.
func (f *Fields) Set(name, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

// Names returns field names in first-set order.
func (f *Fields) Names() []string { return f.names }

// Value returns the value stored under name.
func (f *Fields) Value(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Len returns the number of fields.
func (f *Fields) Len() int { return len(f.names) }

// MarshalJSON writes the object with keys in field order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(fieldValue{Value: f.values[name]})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object written by MarshalJSON, keeping key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fields: expected object, got %v", tok)
	}

	*f = Fields{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("fields: expected key, got %v", tok)
		}
		var v fieldValue
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("fields: value of %q: %w", name, err)
		}
		f.Set(name, v.Value)
	}
	_, err = dec.Token()
	return err
}
