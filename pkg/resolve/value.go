package resolve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a parsed JSON document node.
type Value struct {
	kind Kind
	b    bool
	n    json.Number
	s    string
	arr  []Value
	obj  map[string]Value
}

// ParseJSON decodes data into a Value tree.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	if dec.More() {
		return Value{}, fmt.Errorf("unexpected data after top-level value")
	}
	return fromAny(raw), nil
}

func fromAny(raw interface{}) Value {
	switch v := raw.(type) {
	case bool:
		return Value{kind: KindBool, b: v}
	case json.Number:
		return Value{kind: KindNumber, n: v}
	case string:
		return Value{kind: KindString, s: v}
	case []interface{}:
		arr := make([]Value, len(v))
		for i, e := range v {
			arr[i] = fromAny(e)
		}
		return Value{kind: KindArray, arr: arr}
	case map[string]interface{}:
		obj := make(map[string]Value, len(v))
		for k, e := range v {
			obj[k] = fromAny(e)
		}
		return Value{kind: KindObject, obj: obj}
	default:
		return Value{kind: KindNull}
	}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Bool returns the bool payload and whether v is a bool.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Number returns the number literal and whether v is a number.
func (v Value) Number() (json.Number, bool) {
	return v.n, v.kind == KindNumber
}

// Len returns the element count of an array or object, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	}
	return 0
}

// Keys returns the sorted keys of an object.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Descend steps into v by one path segment. Arrays are indexed when the
// segment is an in-range integer; objects are keyed by the segment.
func (v Value) Descend(segment string) (Value, bool) {
	if v.kind == KindArray {
		if i, err := strconv.Atoi(segment); err == nil && i >= 0 && i < len(v.arr) {
			return v.arr[i], true
		}
	}
	if v.kind == KindObject {
		if child, ok := v.obj[segment]; ok {
			return child, true
		}
	}
	return Value{}, false
}

// Walk descends through every segment in order.
func (v Value) Walk(segments []string) (Value, bool) {
	cur := v
	for _, seg := range segments {
		next, ok := cur.Descend(seg)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// SplitPath turns "data[0].url" into ["data", "0", "url"].
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '[' || r == ']'
	})
}
