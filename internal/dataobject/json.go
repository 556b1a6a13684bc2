package dataobject

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrNotJSONObject is returned when decoding anything but a JSON object.
var ErrNotJSONObject = errors.New("dataobject: payload is not a JSON object")

// FromJSON decodes a JSON object into a new Object, keeping the document's
// key order. Nested objects become map[string]any, arrays []any and
// numbers float64.
func FromJSON(data []byte) (*Object, error) {
	o := New()
	if err := o.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return o, nil
}

// MarshalJSON encodes the Object as a JSON object in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(o.data[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the Object's data with the decoded JSON object.
func (o *Object) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrNotJSONObject
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return ErrNotJSONObject
	}

	o.keys = nil
	o.data = make(map[string]any)
	result.ForEach(func(key, value gjson.Result) bool {
		o.Set(key.String(), value.Value())
		return true
	})
	return nil
}
