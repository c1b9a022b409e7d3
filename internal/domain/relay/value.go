package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	// KindRaw holds a producer field that is not a scalar. It is carried
	// verbatim so unknown payload shapes survive the relay.
	KindRaw
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindRaw:
		return "raw"
	default:
		return "null"
	}
}

type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	raw  json.RawMessage
}

func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }

func RawValue(raw json.RawMessage) Value {
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Value{kind: KindRaw, raw: cp}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsRaw() (json.RawMessage, bool) { return v.raw, v.kind == KindRaw }

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindRaw:
		return bytes.Equal(v.raw, o.raw)
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindRaw:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

var errEmptyValue = errors.New("empty json value")

// UnmarshalJSON decodes by the leading JSON token: strings, numbers and
// booleans become scalars, objects and arrays are kept raw.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errEmptyValue
	}
	switch b[0] {
	case 'n':
		*v = Value{}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case 't', 'f':
		var x bool
		if err := json.Unmarshal(b, &x); err != nil {
			return err
		}
		*v = BoolValue(x)
		return nil
	case '{', '[':
		if !json.Valid(b) {
			return fmt.Errorf("invalid json value %q", b)
		}
		*v = RawValue(b)
		return nil
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("invalid json number %q: %w", b, err)
		}
		*v = NumberValue(n)
		return nil
	}
}

// Data is the string-keyed payload of an event.
type Data map[string]Value

func (d Data) String(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (d Data) Number(key string) (float64, bool) {
	v, ok := d[key]
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

func (d Data) Bool(key string) (bool, bool) {
	v, ok := d[key]
	if !ok {
		return false, false
	}
	return v.AsBool()
}

func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	out := make(Data, len(d))
	for k, v := range d {
		if raw, ok := v.AsRaw(); ok {
			v = RawValue(raw)
		}
		out[k] = v
	}
	return out
}

// Any converts the payload into plain JSON-compatible values.
func (d Data) Any() map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		switch v.kind {
		case KindString:
			out[k] = v.str
		case KindNumber:
			out[k] = v.num
		case KindBool:
			out[k] = v.b
		case KindRaw:
			var x any
			if err := json.Unmarshal(v.raw, &x); err == nil {
				out[k] = x
			}
		default:
			out[k] = nil
		}
	}
	return out
}
