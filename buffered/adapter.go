// Package buffered implements the buffered-values adapter (C7): it sits
// between the base parser's event stream and the caller, coalescing string
// fragments and incrementally building the composite value at each
// container's path, then attaching as much of that built value to each
// event as the adapter's own options request.
package buffered

import (
	"github.com/flitsinc/jsonmodem"
	"github.com/flitsinc/jsonmodem/path"
	"github.com/flitsinc/jsonmodem/valuebuilder"
)

// StringBufferMode controls what accompanies a String event's buffered
// value, independent of the base parser's own StringValueMode.
type StringBufferMode int

const (
	StringBufferModeNone StringBufferMode = iota
	StringBufferModeValues
	StringBufferModePrefixes
)

// NonScalarMode controls whether container-end events carry the fully
// built composite, independent of the base parser's own NonScalarValueMode.
type NonScalarMode int

const (
	NonScalarModeNone NonScalarMode = iota
	NonScalarModeRoots
	NonScalarModeAll
)

// Options configures an Adapter's own value-attachment policy, distinct
// from (and applied on top of) the wrapped Parser's grammar-level Options.
type Options struct {
	StringBufferMode StringBufferMode
	NonScalarMode    NonScalarMode
}

// Adapter wraps a jsonmodem.Parser, running it in maximal build mode
// internally (every container-end and every string fragment carries a
// built value) and re-projecting that onto Options-controlled visibility
// for the caller. This keeps the single composite-building implementation
// in the base Parser rather than duplicating it here.
type Adapter[V, Str, Arr, Obj any] struct {
	inner   *jsonmodem.Parser[V, Str, Arr, Obj]
	builder valuebuilder.Builder[V, Str, Arr, Obj]
	opts    Options
}

// New constructs an Adapter. parserOpts configure the wrapped Parser's
// grammar (whitespace, multi-value mode, panic-on-error); its value-mode
// options are overridden internally and should not be set by the caller.
func New[V, Str, Arr, Obj any](builder valuebuilder.Builder[V, Str, Arr, Obj], opts Options, parserOpts ...jsonmodem.Option) *Adapter[V, Str, Arr, Obj] {
	forced := make([]jsonmodem.Option, 0, len(parserOpts)+2)
	forced = append(forced, parserOpts...)
	forced = append(forced,
		jsonmodem.WithNonScalarValueMode(jsonmodem.NonScalarValueModeAll),
		jsonmodem.WithStringValueMode(jsonmodem.StringValueModePrefixes),
	)
	return &Adapter[V, Str, Arr, Obj]{
		inner:   jsonmodem.New(builder, forced...),
		builder: builder,
		opts:    opts,
	}
}

// Feed appends chunk and returns an iterator over the re-projected events.
func (a *Adapter[V, Str, Arr, Obj]) Feed(chunk string) func(yield func(jsonmodem.ParseEvent, error) bool) {
	return func(yield func(jsonmodem.ParseEvent, error) bool) {
		for ev, err := range a.inner.Feed(chunk) {
			if !a.project(ev, err, yield) {
				return
			}
		}
	}
}

// Finish signals end of input and returns an iterator over the remaining
// re-projected events.
func (a *Adapter[V, Str, Arr, Obj]) Finish() func(yield func(jsonmodem.ParseEvent, error) bool) {
	return func(yield func(jsonmodem.ParseEvent, error) bool) {
		for ev, err := range a.inner.Finish() {
			if !a.project(ev, err, yield) {
				return
			}
		}
	}
}

func (a *Adapter[V, Str, Arr, Obj]) project(ev jsonmodem.ParseEvent, err error, yield func(jsonmodem.ParseEvent, error) bool) bool {
	if err != nil {
		return yield(nil, err)
	}
	var zero V
	switch e := ev.(type) {
	case jsonmodem.String[V]:
		switch a.opts.StringBufferMode {
		case StringBufferModeNone:
			e.HasValue, e.Value = false, zero
		case StringBufferModeValues:
			if !e.IsFinal {
				e.HasValue, e.Value = false, zero
			}
		}
		return yield(e, nil)
	case jsonmodem.ObjectEnd[V]:
		if !a.wantsNonScalar(e.Path) {
			e.HasValue, e.Value = false, zero
		}
		return yield(e, nil)
	case jsonmodem.ArrayEnd[V]:
		if !a.wantsNonScalar(e.Path) {
			e.HasValue, e.Value = false, zero
		}
		return yield(e, nil)
	default:
		return yield(ev, nil)
	}
}

func (a *Adapter[V, Str, Arr, Obj]) wantsNonScalar(p path.Path) bool {
	switch a.opts.NonScalarMode {
	case NonScalarModeAll:
		return true
	case NonScalarModeRoots:
		return len(p) == 0
	}
	return false
}
