package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedMap is a JSON object that preserves key insertion order.
//
// The Tower API orders keys the way its serializers define them, and that
// order is convenient for display. Decoding into a plain map would lose it,
// so responses decode into this type instead. Nested objects decode as
// *OrderedMap and arrays as []any.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: map[string]any{}}
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// Get returns the value for key and whether it is present.
func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores a value, appending the key if it is new.
func (m *OrderedMap) Set(key string, value any) {
	if m.values == nil {
		m.values = map[string]any{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes a key if present.
func (m *OrderedMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// GetString returns the string value for key, or "" if absent or not a string.
func (m *OrderedMap) GetString(key string) string {
	if v, ok := m.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetBool returns the bool value for key, or false if absent or not a bool.
func (m *OrderedMap) GetBool(key string) bool {
	if v, ok := m.values[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// GetFloat returns the numeric value for key, or 0 if absent or not a number.
func (m *OrderedMap) GetFloat(key string) float64 {
	if v, ok := m.values[key]; ok {
		if n, ok := v.(json.Number); ok {
			f, err := n.Float64()
			if err == nil {
				return f
			}
		}
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

// GetInt returns the integer value for key, or 0 if absent or not numeric.
func (m *OrderedMap) GetInt(key string) int {
	return int(m.GetFloat(key))
}

// GetMap returns the nested object for key, or nil if absent or not an object.
func (m *OrderedMap) GetMap(key string) *OrderedMap {
	if v, ok := m.values[key]; ok {
		if om, ok := v.(*OrderedMap); ok {
			return om
		}
	}
	return nil
}

// GetSlice returns the array value for key, or nil if absent or not an array.
func (m *OrderedMap) GetSlice(key string) []any {
	if v, ok := m.values[key]; ok {
		if s, ok := v.([]any); ok {
			return s
		}
	}
	return nil
}

// Plain converts the ordered map (recursively) into a plain map. Key order
// is lost; use this only where order does not matter, e.g. request bodies.
func (m *OrderedMap) Plain() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = plainValue(m.values[k])
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *OrderedMap:
		return t.Plain()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON emits the object with keys in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	m.keys = nil
	m.values = map[string]any{}
	return decodeObject(dec, m)
}

func decodeObject(dec *json.Decoder, m *OrderedMap) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return err
		}
		m.Set(key, val)
	}
	// consume closing '}'
	_, err := dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch d := tok.(type) {
	case json.Delim:
		switch d {
		case '{':
			nested := NewOrderedMap()
			if err := decodeObject(dec, nested); err != nil {
				return nil, err
			}
			return nested, nil
		case '[':
			var arr []any
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			// consume closing ']'
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", d)
		}
	default:
		return tok, nil
	}
}
