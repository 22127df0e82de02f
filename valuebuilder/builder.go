// Package valuebuilder defines the pluggable value-construction contract the
// parser delegates to: it never owns a concrete value representation,
// letting callers plug in their own (native values, host-language objects,
// or nothing at all).
package valuebuilder

// Kind enumerates the JSON value shapes a Builder can produce.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Builder is parameterized over the caller's chosen Value representation
// plus the mutable accumulator types for in-progress strings, arrays, and
// objects. It is stateless across calls: any accumulation needed beyond the
// buffers it is handed lives in the adapter, not the builder.
type Builder[V, Str, Arr, Obj any] interface {
	NewNull() V
	NewBool(b bool) V
	NewNumber(lexeme string, isFloat bool) (V, error)
	NewString(s string) V

	NewStringBuf() Str
	PushStr(buf Str, fragment string) Str

	NewArrayBuf() Arr
	PushArray(buf Arr, v V) Arr

	NewObjectBuf() Obj
	InsertObject(buf Obj, key string, v V) Obj

	BuildFromString(buf Str) V
	BuildFromArray(buf Arr) V
	BuildFromObject(buf Obj) V

	Kind(v V) Kind
}
