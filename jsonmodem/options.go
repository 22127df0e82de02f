// Package jsonmodem implements a streaming, incremental JSON parser: feed it
// arbitrary byte chunks and it yields a flat, path-annotated event stream as
// soon as structure becomes available, without waiting for the document to
// close.
package jsonmodem

// StringValueMode controls what, if anything, accompanies a String event's
// accumulated value.
type StringValueMode int

const (
	// StringValueModeNone never attaches a buffered value to String events.
	StringValueModeNone StringValueMode = iota
	// StringValueModeValues attaches the buffered string only on the
	// terminal (is_final) fragment.
	StringValueModeValues
	// StringValueModePrefixes attaches the cumulative buffer on every
	// fragment.
	StringValueModePrefixes
)

// NonScalarValueMode controls whether container-end events carry a fully
// built composite value.
type NonScalarValueMode int

const (
	// NonScalarValueModeNone never attaches a value to ObjectEnd/ArrayEnd.
	NonScalarValueModeNone NonScalarValueMode = iota
	// NonScalarValueModeRoots attaches a value only when the container is
	// the top-level document (path == []).
	NonScalarValueModeRoots
	// NonScalarValueModeAll attaches a value to every container-end event.
	NonScalarValueModeAll
)

// Options configures a Parser. The zero value is the safest/minimal
// configuration.
type Options struct {
	AllowUnicodeWhitespace bool
	AllowMultipleJSONValues bool
	StringValueMode         StringValueMode
	NonScalarValueMode      NonScalarValueMode
	// PanicOnError converts a SyntaxError/BuilderError into a panic instead
	// of an event, for debugging with a full backtrace. Test-only.
	PanicOnError bool
	// Debug traces every emitted event to stderr, ANSI-colored like an SSE
	// frame log.
	Debug bool
}

// Option mutates an Options in place; With* constructors return one so they
// compose at the New call site.
type Option func(*Options)

// WithUnicodeWhitespace toggles acceptance of all Unicode whitespace
// scalars between tokens, not just the ASCII set.
func WithUnicodeWhitespace(allow bool) Option {
	return func(o *Options) { o.AllowUnicodeWhitespace = allow }
}

// WithMultipleJSONValues toggles parsing a whitespace-separated
// concatenation of documents instead of exactly one root value.
func WithMultipleJSONValues(allow bool) Option {
	return func(o *Options) { o.AllowMultipleJSONValues = allow }
}

// WithStringValueMode sets how String events report their buffered value.
func WithStringValueMode(mode StringValueMode) Option {
	return func(o *Options) { o.StringValueMode = mode }
}

// WithNonScalarValueMode sets how container-end events report a built
// composite value.
func WithNonScalarValueMode(mode NonScalarValueMode) Option {
	return func(o *Options) { o.NonScalarValueMode = mode }
}

// WithPanicOnError makes the parser panic instead of yielding a SyntaxError
// or BuilderError. Intended for tests that want a debug backtrace.
func WithPanicOnError(panic bool) Option {
	return func(o *Options) { o.PanicOnError = panic }
}

// WithDebug enables a one-line-per-event trace to stderr.
func WithDebug(debug bool) Option {
	return func(o *Options) { o.Debug = debug }
}

func newOptions(opts ...Option) Options {
	var o Options
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
