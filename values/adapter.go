// Package values implements the values adapter (C8): it yields snapshots of
// the evolving top-level value, at most one per completed root in
// non-partial mode, or one for every observable structural change
// (container open/close, child insertion, string fragment advancement) in
// partial mode.
package values

import (
	"github.com/flitsinc/jsonmodem"
	"github.com/flitsinc/jsonmodem/path"
	"github.com/flitsinc/jsonmodem/valuebuilder"
)

// Snapshot is one yielded evolving-root observation.
type Snapshot[V any] struct {
	Index   int
	IsFinal bool
	Value   V
}

type frame[V, Arr, Obj any] struct {
	path     path.Path
	isObject bool
	arr      Arr
	obj      Obj
}

// Adapter wraps a bare jsonmodem.Parser, replaying its structural events
// against its own container stack to maintain an independently-built
// mirror of the evolving top-level value — the base Parser's own
// value-mode options are irrelevant here since this adapter never reads
// the base events' Value/HasValue fields.
type Adapter[V, Str, Arr, Obj any] struct {
	inner   *jsonmodem.Parser[V, Str, Arr, Obj]
	builder valuebuilder.Builder[V, Str, Arr, Obj]
	partial bool

	stack []frame[V, Arr, Obj]

	inString bool
	strBuf   Str

	index       int
	rootOpen    bool
	sawPrevRoot bool
}

// New constructs an Adapter. When partial is false, exactly one Snapshot is
// yielded per top-level document, at completion. When true, a Snapshot is
// yielded on every structural change, each carrying a deep, independent
// copy safe against later mutation of the in-flight tree.
func New[V, Str, Arr, Obj any](builder valuebuilder.Builder[V, Str, Arr, Obj], partial bool, parserOpts ...jsonmodem.Option) *Adapter[V, Str, Arr, Obj] {
	return &Adapter[V, Str, Arr, Obj]{
		inner:   jsonmodem.New(builder, parserOpts...),
		builder: builder,
		partial: partial,
	}
}

// Feed appends chunk and returns an iterator over the Snapshots (and any
// terminal error) that become available as a result.
func (a *Adapter[V, Str, Arr, Obj]) Feed(chunk string) func(yield func(Snapshot[V], error) bool) {
	return func(yield func(Snapshot[V], error) bool) {
		for ev, err := range a.inner.Feed(chunk) {
			if !a.observe(ev, err, yield) {
				return
			}
		}
	}
}

// Finish signals end of input and returns an iterator over the remaining
// Snapshots.
func (a *Adapter[V, Str, Arr, Obj]) Finish() func(yield func(Snapshot[V], error) bool) {
	return func(yield func(Snapshot[V], error) bool) {
		for ev, err := range a.inner.Finish() {
			if !a.observe(ev, err, yield) {
				return
			}
		}
	}
}

func (a *Adapter[V, Str, Arr, Obj]) observe(ev jsonmodem.ParseEvent, err error, yield func(Snapshot[V], error) bool) bool {
	if err != nil {
		var zero Snapshot[V]
		_ = zero
		return yield(Snapshot[V]{}, err)
	}

	switch e := ev.(type) {
	case jsonmodem.ObjectBegin:
		a.markRootStart(e.Path)
		preview := a.spliceUp(len(a.stack)-1, a.builder.BuildFromObject(a.builder.NewObjectBuf()), e.Path)
		if a.partial && !a.emit(yield, preview, false) {
			return false
		}
		a.stack = append(a.stack, frame[V, Arr, Obj]{path: e.Path.Clone(), isObject: true, obj: a.builder.NewObjectBuf()})
		return true

	case jsonmodem.ArrayBegin:
		a.markRootStart(e.Path)
		preview := a.spliceUp(len(a.stack)-1, a.builder.BuildFromArray(a.builder.NewArrayBuf()), e.Path)
		if a.partial && !a.emit(yield, preview, false) {
			return false
		}
		a.stack = append(a.stack, frame[V, Arr, Obj]{path: e.Path.Clone(), isObject: false, arr: a.builder.NewArrayBuf()})
		return true

	case jsonmodem.ObjectEnd[V]:
		top := a.stack[len(a.stack)-1]
		a.stack = a.stack[:len(a.stack)-1]
		built := a.builder.BuildFromObject(top.obj)
		return a.commitAndMaybeFinish(yield, built, top.path)

	case jsonmodem.ArrayEnd[V]:
		top := a.stack[len(a.stack)-1]
		a.stack = a.stack[:len(a.stack)-1]
		built := a.builder.BuildFromArray(top.arr)
		return a.commitAndMaybeFinish(yield, built, top.path)

	case jsonmodem.Null:
		a.markRootStart(e.Path)
		return a.commitAndMaybeFinish(yield, a.builder.NewNull(), e.Path)

	case jsonmodem.Bool:
		a.markRootStart(e.Path)
		return a.commitAndMaybeFinish(yield, a.builder.NewBool(e.Value), e.Path)

	case jsonmodem.Number:
		a.markRootStart(e.Path)
		v, verr := a.builder.NewNumber(e.RawLexeme, e.IsFloat)
		if verr != nil {
			return true
		}
		return a.commitAndMaybeFinish(yield, v, e.Path)

	case jsonmodem.String[V]:
		a.markRootStart(e.Path)
		if !a.inString {
			a.inString = true
			a.strBuf = a.builder.NewStringBuf()
		}
		if e.Fragment != "" {
			a.strBuf = a.builder.PushStr(a.strBuf, e.Fragment)
		}
		if !e.IsFinal {
			if !a.partial {
				return true
			}
			preview := a.spliceUp(len(a.stack)-1, a.builder.BuildFromString(a.strBuf), e.Path)
			return a.emit(yield, preview, false)
		}
		a.inString = false
		return a.commitAndMaybeFinish(yield, a.builder.BuildFromString(a.strBuf), e.Path)
	}
	return true
}

// markRootStart bumps index when a fresh top-level value begins after a
// previous one has fully completed, per the multi-value-mode contract.
func (a *Adapter[V, Str, Arr, Obj]) markRootStart(at path.Path) {
	if len(a.stack) != 0 || a.rootOpen {
		return
	}
	if a.sawPrevRoot {
		a.index++
	}
	a.rootOpen = true
}

// spliceUp weaves cur (the just-observed value at curPath) up through the
// committed ancestor frames a.stack[0..fromIdx], returning the resulting
// root-level preview without mutating any canonical frame.
func (a *Adapter[V, Str, Arr, Obj]) spliceUp(fromIdx int, cur V, curPath path.Path) V {
	for i := fromIdx; i >= 0; i-- {
		fr := a.stack[i]
		childFrame := curPath[len(fr.path)]
		if fr.isObject {
			cur = a.builder.BuildFromObject(a.builder.InsertObject(fr.obj, childFrame.Key, cur))
		} else {
			cur = a.builder.BuildFromArray(a.builder.PushArray(fr.arr, cur))
		}
		curPath = fr.path
	}
	return cur
}

// commitAndMaybeFinish permanently inserts v (located at atPath) into its
// parent frame, emits a snapshot in partial mode, and detects + emits final
// root completion.
func (a *Adapter[V, Str, Arr, Obj]) commitAndMaybeFinish(yield func(Snapshot[V], error) bool, v V, atPath path.Path) bool {
	var root V
	if len(a.stack) == 0 {
		root = v
	} else {
		top := len(a.stack) - 1
		fr := &a.stack[top]
		childFrame := atPath[len(fr.path)]
		var built V
		if fr.isObject {
			fr.obj = a.builder.InsertObject(fr.obj, childFrame.Key, v)
			built = a.builder.BuildFromObject(fr.obj)
		} else {
			fr.arr = a.builder.PushArray(fr.arr, v)
			built = a.builder.BuildFromArray(fr.arr)
		}
		root = a.spliceUp(top-1, built, fr.path)
	}

	if len(a.stack) == 0 {
		// The top-level value just completed.
		a.rootOpen = false
		a.sawPrevRoot = true
		return a.emit(yield, root, true)
	}
	if a.partial {
		return a.emit(yield, root, false)
	}
	return true
}

func (a *Adapter[V, Str, Arr, Obj]) emit(yield func(Snapshot[V], error) bool, v V, final bool) bool {
	return yield(Snapshot[V]{Index: a.index, IsFinal: final, Value: v}, nil)
}
