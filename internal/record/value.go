package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind enumerates the value shapes an attribute may take.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a closed union of scalar, list and nested-map attribute values.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	List []Value
	Map  Attributes
}

// Attributes is an open-ended key/value mapping of technical specs.
type Attributes map[string]Value

func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func List(vs ...Value) Value { return Value{Kind: KindList, List: vs} }
func Map(m Attributes) Value { return Value{Kind: KindMap, Map: m} }
func Null() Value { return Value{Kind: KindNull} }

// MarshalJSON renders the active member of the union.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindMap:
		if v.Map == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Map)
	default:
		return nil, fmt.Errorf("record: unknown value kind %d", int(v.Kind))
	}
}

// UnmarshalJSON accepts any JSON value and maps it onto the union.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("record: empty value")
	}
	switch data[0] {
	case 'n':
		*v = Null()
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if items == nil {
			items = []Value{}
		}
		*v = List(items...)
		return nil
	case '{':
		var m Attributes
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		if m == nil {
			m = Attributes{}
		}
		*v = Map(m)
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("record: unsupported value %s: %w", truncate(string(data), 40), err)
		}
		*v = Number(n)
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
