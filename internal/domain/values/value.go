// Package values contains value objects for the siemcac domain model.
package values

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind enumerates the closed set of shapes a template value can take.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindList
	KindMap
)

// String returns the human-readable kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the closed structural type all template content is represented
// with, before and during merge. A Value is immutable by convention: the
// merge engine always works on clones, never on shared backing slices or
// maps from decoded input.
type Value struct {
	kind Kind
	b    bool
	num  float64
	text string
	list []Value
	obj  map[string]Value
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Int returns a numeric value from an integer.
func Int(i int64) Value {
	return Value{kind: KindNumber, num: float64(i)}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// List returns a list value holding the given items.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Map returns a map value holding the given fields.
func Map(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindMap, obj: fields}
}

// Kind reports the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload. Zero value for non-bool kinds.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric payload. Zero for non-number kinds.
func (v Value) Number() float64 { return v.num }

// Text returns the text payload. Empty for non-text kinds.
func (v Value) Text() string { return v.text }

// List returns the list payload. Nil for non-list kinds. The returned slice
// must not be mutated; use Clone first.
func (v Value) List() []Value { return v.list }

// Map returns the map payload. Nil for non-map kinds. The returned map must
// not be mutated; use Clone first.
func (v Value) Map() map[string]Value { return v.obj }

// Len returns the number of list items or map fields, zero otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.obj)
	default:
		return 0
	}
}

// Get looks up a field of a map value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	item, ok := v.obj[key]
	return item, ok
}

// Keys returns the map keys in sorted order so that iteration over map
// values is deterministic.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}
		return Value{kind: KindList, list: items}
	case KindMap:
		fields := make(map[string]Value, len(v.obj))
		for k, item := range v.obj {
			fields[k] = item.Clone()
		}
		return Value{kind: KindMap, obj: fields}
	default:
		return v
	}
}

// Equal reports deep structural equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.num == other.num
	case KindText:
		return v.text == other.text
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, item := range v.obj {
			o, ok := other.obj[k]
			if !ok || !item.Equal(o) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders scalars the way they appear in interpolated text. Lists and
// maps render a short placeholder; callers needing structure use ToGo.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		if isIntegral(v.num) {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	case KindList:
		return fmt.Sprintf("[%d items]", len(v.list))
	case KindMap:
		return fmt.Sprintf("{%d fields}", len(v.obj))
	default:
		return ""
	}
}

// FromGo converts a generically decoded document (what a YAML or JSON
// decoder produces into interface{}) to a Value. Unsupported Go types are an
// error rather than a silent null.
func FromGo(v interface{}) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Number(float64(t)), nil
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case string:
		return Text(t), nil
	case []interface{}:
		items := make([]Value, len(t))
		for i, item := range t {
			converted, err := FromGo(item)
			if err != nil {
				return Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			items[i] = converted
		}
		return List(items...), nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			converted, err := FromGo(item)
			if err != nil {
				return Value{}, fmt.Errorf("key %s: %w", k, err)
			}
			fields[k] = converted
		}
		return Map(fields), nil
	case map[interface{}]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			key, ok := k.(string)
			if !ok {
				return Value{}, fmt.Errorf("non-string map key %v", k)
			}
			converted, err := FromGo(item)
			if err != nil {
				return Value{}, fmt.Errorf("key %s: %w", key, err)
			}
			fields[key] = converted
		}
		return Map(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// ToGo converts the value back to the generic form encoders accept.
// Integral numbers come back as int64 so round-tripped documents keep their
// authored integer shape.
func (v Value) ToGo() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		if isIntegral(v.num) {
			return int64(v.num)
		}
		return v.num
	case KindText:
		return v.text
	case KindList:
		items := make([]interface{}, len(v.list))
		for i, item := range v.list {
			items[i] = item.ToGo()
		}
		return items
	case KindMap:
		fields := make(map[string]interface{}, len(v.obj))
		for k, item := range v.obj {
			fields[k] = item.ToGo()
		}
		return fields
	default:
		return nil
	}
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<62
}
