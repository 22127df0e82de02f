package valuebuilder

import (
	"fmt"
	"strconv"
)

// Value is the default builder's sum type: exactly one of the typed fields
// below is meaningful, selected by Kind.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  map[string]Value
	// keys preserves object insertion order for MarshalJSON and ObjectKeys,
	// since Go maps do not. Native returns a plain map and does not keep it.
	keys []string
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) Bool() bool               { return v.b }
func (v Value) Number() float64          { return v.n }
func (v Value) Str() string              { return v.s }
func (v Value) Array() []Value           { return v.arr }
func (v Value) Object() map[string]Value { return v.obj }
func (v Value) ObjectKeys() []string     { return v.keys }

// Native converts v into a plain any tree (map[string]any / []any / string /
// float64 / bool / nil), the shape encoding/json and json-iterator both
// produce, so Value trees can be diffed against a reference parse.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Native()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Native()
		}
		return out
	}
	return nil
}

// MarshalJSON renders v as standard JSON, preserving object key order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindNumber:
		return []byte(strconv.FormatFloat(v.n, 'g', -1, 64)), nil
	case KindString:
		return marshalJSONString(v.s), nil
	case KindArray:
		out := []byte{'['}
		for i, e := range v.arr {
			if i > 0 {
				out = append(out, ',')
			}
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return append(out, ']'), nil
	case KindObject:
		out := []byte{'{'}
		for i, k := range v.keys {
			if i > 0 {
				out = append(out, ',')
			}
			out = append(out, marshalJSONString(k)...)
			out = append(out, ':')
			b, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return append(out, '}'), nil
	}
	return nil, fmt.Errorf("valuebuilder: unknown kind %d", v.kind)
}

func marshalJSONString(s string) []byte {
	out := []byte{'"'}
	for _, r := range s {
		switch r {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			if r < 0x20 {
				out = append(out, []byte(fmt.Sprintf("\\u%04x", r))...)
				continue
			}
			out = append(out, []byte(string(r))...)
		}
	}
	return append(out, '"')
}

// StrBuf accumulates string fragments for the Std builder.
type StrBuf struct {
	b []byte
}

// ArrBuf accumulates array elements for the Std builder.
type ArrBuf struct {
	elems []Value
}

// ObjBuf accumulates object members for the Std builder, preserving
// insertion order.
type ObjBuf struct {
	m    map[string]Value
	keys []string
}

// Std is the default Builder implementation, producing Value trees. Every
// mutation method clones rather than mutating its input buffer in place, so
// a caller holding an older ArrBuf/ObjBuf/StrBuf (e.g. to build a snapshot
// preview) never observes a later mutation — the cheap alternative to a
// persistent/copy-on-write tree that the design notes call out as
// acceptable at the cost of an O(size) copy per event.
type Std struct{}

func (Std) NewNull() Value       { return Value{kind: KindNull} }
func (Std) NewBool(b bool) Value { return Value{kind: KindBool, b: b} }
func (Std) NewString(s string) Value {
	return Value{kind: KindString, s: s}
}

func (Std) NewNumber(lexeme string, isFloat bool) (Value, error) {
	n, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return Value{}, fmt.Errorf("valuebuilder: number %q not representable as float64: %w", lexeme, err)
	}
	return Value{kind: KindNumber, n: n}, nil
}

func (Std) NewStringBuf() StrBuf { return StrBuf{} }

func (Std) PushStr(buf StrBuf, fragment string) StrBuf {
	nb := make([]byte, len(buf.b), len(buf.b)+len(fragment))
	copy(nb, buf.b)
	return StrBuf{b: append(nb, fragment...)}
}

func (Std) NewArrayBuf() ArrBuf { return ArrBuf{} }

func (Std) PushArray(buf ArrBuf, v Value) ArrBuf {
	ne := make([]Value, len(buf.elems), len(buf.elems)+1)
	copy(ne, buf.elems)
	return ArrBuf{elems: append(ne, v)}
}

func (Std) NewObjectBuf() ObjBuf {
	return ObjBuf{}
}

func (Std) InsertObject(buf ObjBuf, key string, v Value) ObjBuf {
	nm := make(map[string]Value, len(buf.m)+1)
	for k, vv := range buf.m {
		nm[k] = vv
	}
	_, existed := nm[key]
	nm[key] = v
	nk := buf.keys
	if !existed {
		nk = make([]string, len(buf.keys), len(buf.keys)+1)
		copy(nk, buf.keys)
		nk = append(nk, key)
	}
	return ObjBuf{m: nm, keys: nk}
}

func (Std) BuildFromString(buf StrBuf) Value {
	return Value{kind: KindString, s: string(buf.b)}
}

func (Std) BuildFromArray(buf ArrBuf) Value {
	elems := make([]Value, len(buf.elems))
	copy(elems, buf.elems)
	return Value{kind: KindArray, arr: elems}
}

func (Std) BuildFromObject(buf ObjBuf) Value {
	obj := make(map[string]Value, len(buf.m))
	for k, v := range buf.m {
		obj[k] = v
	}
	keys := make([]string, len(buf.keys))
	copy(keys, buf.keys)
	return Value{kind: KindObject, obj: obj, keys: keys}
}

func (Std) Kind(v Value) Kind { return v.kind }
