package jsonmodem

import (
	"fmt"
	"os"
	"strconv"

	"github.com/flitsinc/jsonmodem/lex"
	"github.com/flitsinc/jsonmodem/path"
	"github.com/flitsinc/jsonmodem/valuebuilder"
)

type ctxKind int

const (
	ctxObjectBeforeKey ctxKind = iota
	ctxObjectBeforeKeyComma
	ctxObjectAfterKey
	ctxObjectColon
	ctxObjectAfterValue
	ctxArrayBeforeValue
	ctxArrayBeforeValueComma
	ctxArrayAfterValue
)

type builderFrame[Arr, Obj any] struct {
	isObject bool
	arr      Arr
	obj      Obj
}

// Parser is a streaming JSON parser. It owns no concrete value
// representation: value construction is delegated entirely to the supplied
// valuebuilder.Builder. A Parser is single-use and single-threaded; once it
// has yielded an error it is terminal, per the "errors are terminal"
// contract — construct a new Parser to continue.
type Parser[V, Str, Arr, Obj any] struct {
	opts    Options
	builder valuebuilder.Builder[V, Str, Arr, Obj]

	buf  *lex.Buffer
	lx   *lex.Lexer
	path *path.Tracker

	ctxStack []ctxKind

	rootValueSeen bool

	inString bool
	strBuf   Str

	keyAccum string

	builderStack []builderFrame[Arr, Obj]

	done bool
	err  error
}

// New constructs a Parser that delegates value construction to builder.
func New[V, Str, Arr, Obj any](builder valuebuilder.Builder[V, Str, Arr, Obj], opts ...Option) *Parser[V, Str, Arr, Obj] {
	o := newOptions(opts...)
	buf := lex.NewBuffer()
	return &Parser[V, Str, Arr, Obj]{
		opts:    o,
		builder: builder,
		buf:     buf,
		lx:      lex.NewLexer(buf, o.AllowUnicodeWhitespace),
		path:    path.NewTracker(),
	}
}

// Err returns the sticky error that made the parser terminal, or nil if it
// hasn't failed (or hasn't finished).
func (p *Parser[V, Str, Arr, Obj]) Err() error {
	return p.err
}

// Feed appends chunk to the parser's input and returns an iterator over the
// events (and any terminal error) that become available as a result.
// Ranging stops naturally once no more events can be produced without
// further input.
func (p *Parser[V, Str, Arr, Obj]) Feed(chunk string) func(yield func(ParseEvent, error) bool) {
	return func(yield func(ParseEvent, error) bool) {
		if p.done {
			return
		}
		p.buf.Feed(chunk)
		p.run(false, yield)
	}
}

// Finish signals that no further chunks will arrive: it drains any buffered
// input, finalizes a trailing number if one is pending, and reports
// unterminated strings/containers as errors.
func (p *Parser[V, Str, Arr, Obj]) Finish() func(yield func(ParseEvent, error) bool) {
	return func(yield func(ParseEvent, error) bool) {
		if p.done {
			return
		}
		p.run(true, yield)
	}
}

func (p *Parser[V, Str, Arr, Obj]) run(eof bool, yield func(ParseEvent, error) bool) {
	for {
		tok, lerr, ok := p.lx.Next(eof)
		if !ok {
			return
		}
		if lerr != nil {
			p.fail(fromLexError(lerr), yield)
			return
		}
		events, err, cont := p.step(tok)
		for _, ev := range events {
			if p.opts.Debug {
				fmt.Fprintf(os.Stderr, "\033[2;34m%s\033[0m \033[1;90m%s\033[0m\n", ev.Kind(), p.tracePath(ev))
			}
			if !yield(ev, nil) {
				p.done = true
				return
			}
		}
		if err != nil {
			p.fail(err, yield)
			return
		}
		if !cont {
			p.done = true
			return
		}
	}
}

func (p *Parser[V, Str, Arr, Obj]) fail(err error, yield func(ParseEvent, error) bool) {
	p.done = true
	p.err = err
	if p.opts.PanicOnError {
		panic(err)
	}
	yield(nil, err)
}

func (p *Parser[V, Str, Arr, Obj]) step(tok lex.Token) ([]ParseEvent, error, bool) {
	if p.inString {
		return p.handleStringFragment(tok)
	}
	if tok.Kind == lex.TokenEOF {
		return p.stepEOF(tok)
	}
	if len(p.ctxStack) == 0 {
		return p.stepRoot(tok)
	}
	switch p.ctxStack[len(p.ctxStack)-1] {
	case ctxObjectBeforeKey:
		return p.stepObjectBeforeKey(tok, false)
	case ctxObjectBeforeKeyComma:
		return p.stepObjectBeforeKey(tok, true)
	case ctxObjectAfterKey:
		return p.stepObjectAfterKey(tok)
	case ctxObjectColon:
		return p.stepValueCommon(tok)
	case ctxObjectAfterValue:
		return p.stepObjectAfterValue(tok)
	case ctxArrayBeforeValue:
		return p.stepArrayBeforeValue(tok, false)
	case ctxArrayBeforeValueComma:
		return p.stepArrayBeforeValue(tok, true)
	case ctxArrayAfterValue:
		return p.stepArrayAfterValue(tok)
	}
	return nil, fmt.Errorf("jsonmodem: unreachable parser context"), false
}

func (p *Parser[V, Str, Arr, Obj]) stepEOF(tok lex.Token) ([]ParseEvent, error, bool) {
	if len(p.ctxStack) != 0 {
		return nil, &SyntaxError{Kind: SyntaxUnexpectedEndOfInput, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "unexpected end of input: unclosed container"}, false
	}
	if !p.rootValueSeen {
		return nil, &SyntaxError{Kind: SyntaxUnexpectedEndOfInput, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "unexpected end of input: no value parsed"}, false
	}
	return nil, nil, false
}

func (p *Parser[V, Str, Arr, Obj]) stepRoot(tok lex.Token) ([]ParseEvent, error, bool) {
	if p.rootValueSeen && !p.opts.AllowMultipleJSONValues {
		return nil, &SyntaxError{Kind: SyntaxStructural, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "unexpected trailing content after document"}, false
	}
	return p.stepValueCommon(tok)
}

// enterValue is called exactly once, at the moment a value-position token is
// about to be resolved (whether into a scalar or a pushed container). It
// pre-emptively rewrites the enclosing context's pending transition so that
// control returns to the right place once this value (however deeply
// nested) eventually completes.
func (p *Parser[V, Str, Arr, Obj]) enterValue() {
	if len(p.ctxStack) == 0 {
		p.rootValueSeen = true
		return
	}
	top := len(p.ctxStack) - 1
	switch p.ctxStack[top] {
	case ctxObjectColon:
		p.ctxStack[top] = ctxObjectAfterValue
	case ctxArrayBeforeValue, ctxArrayBeforeValueComma:
		p.ctxStack[top] = ctxArrayAfterValue
	}
}

func (p *Parser[V, Str, Arr, Obj]) stepValueCommon(tok lex.Token) ([]ParseEvent, error, bool) {
	switch tok.Kind {
	case lex.TokenObjectOpen:
		p.enterValue()
		return p.openObject(), nil, true
	case lex.TokenArrayOpen:
		p.enterValue()
		return p.openArray(), nil, true
	case lex.TokenNull:
		p.enterValue()
		p.insertIntoParent(p.builder.NewNull())
		return []ParseEvent{Null{Path: p.path.Snapshot()}}, nil, true
	case lex.TokenBool:
		p.enterValue()
		p.insertIntoParent(p.builder.NewBool(tok.Bool))
		return []ParseEvent{Bool{Path: p.path.Snapshot(), Value: tok.Bool}}, nil, true
	case lex.TokenNumber:
		p.enterValue()
		numVal, perr := strconv.ParseFloat(tok.Lexeme, 64)
		if perr != nil {
			return nil, &SyntaxError{Kind: SyntaxStructural, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: fmt.Sprintf("invalid number lexeme %q", tok.Lexeme)}, false
		}
		v, err := p.builder.NewNumber(tok.Lexeme, tok.IsFloat)
		if err != nil {
			return nil, &BuilderError{Line: tok.Pos.Line, Column: tok.Pos.Column, Message: err.Error(), Err: err}, false
		}
		p.insertIntoParent(v)
		return []ParseEvent{Number{Path: p.path.Snapshot(), Value: numVal, RawLexeme: tok.Lexeme, IsFloat: tok.IsFloat}}, nil, true
	case lex.TokenStringFragment:
		p.enterValue()
		return p.handleStringFragment(tok)
	default:
		return nil, &SyntaxError{Kind: SyntaxStructural, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "expected a value"}, false
	}
}

func (p *Parser[V, Str, Arr, Obj]) handleStringFragment(tok lex.Token) ([]ParseEvent, error, bool) {
	if !p.inString {
		p.inString = true
		p.strBuf = p.builder.NewStringBuf()
	}
	if tok.Fragment != "" {
		p.strBuf = p.builder.PushStr(p.strBuf, tok.Fragment)
	}
	ev := String[V]{Path: p.path.Snapshot(), Fragment: tok.Fragment, IsFinal: tok.Final}
	switch p.opts.StringValueMode {
	case StringValueModePrefixes:
		ev.Value = p.builder.BuildFromString(p.strBuf)
		ev.HasValue = true
	case StringValueModeValues:
		if tok.Final {
			ev.Value = p.builder.BuildFromString(p.strBuf)
			ev.HasValue = true
		}
	}
	if !tok.Final {
		return []ParseEvent{ev}, nil, true
	}
	p.inString = false
	built := p.builder.BuildFromString(p.strBuf)
	p.insertIntoParent(built)
	return []ParseEvent{ev}, nil, true
}

func (p *Parser[V, Str, Arr, Obj]) openObject() []ParseEvent {
	ev := ObjectBegin{Path: p.path.Snapshot()}
	p.ctxStack = append(p.ctxStack, ctxObjectBeforeKey)
	p.builderStack = append(p.builderStack, builderFrame[Arr, Obj]{isObject: true, obj: p.builder.NewObjectBuf()})
	return []ParseEvent{ev}
}

func (p *Parser[V, Str, Arr, Obj]) openArray() []ParseEvent {
	ev := ArrayBegin{Path: p.path.Snapshot()}
	p.ctxStack = append(p.ctxStack, ctxArrayBeforeValue)
	p.path.PushIndexZero()
	p.builderStack = append(p.builderStack, builderFrame[Arr, Obj]{isObject: false, arr: p.builder.NewArrayBuf()})
	return []ParseEvent{ev}
}

func (p *Parser[V, Str, Arr, Obj]) stepObjectBeforeKey(tok lex.Token, afterComma bool) ([]ParseEvent, error, bool) {
	switch tok.Kind {
	case lex.TokenStringFragment:
		p.keyAccum += tok.Fragment
		if !tok.Final {
			return nil, nil, true
		}
		key := p.keyAccum
		p.keyAccum = ""
		p.path.PushKey(key)
		p.ctxStack[len(p.ctxStack)-1] = ctxObjectAfterKey
		return nil, nil, true
	case lex.TokenObjectClose:
		if afterComma {
			return nil, &SyntaxError{Kind: SyntaxStructural, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "trailing comma not allowed before '}'"}, false
		}
		return p.closeObject()
	default:
		return nil, &SyntaxError{Kind: SyntaxStructural, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "expected an object key or '}'"}, false
	}
}

func (p *Parser[V, Str, Arr, Obj]) stepObjectAfterKey(tok lex.Token) ([]ParseEvent, error, bool) {
	if tok.Kind != lex.TokenColon {
		return nil, &SyntaxError{Kind: SyntaxStructural, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "expected ':' after object key"}, false
	}
	p.ctxStack[len(p.ctxStack)-1] = ctxObjectColon
	return nil, nil, true
}

func (p *Parser[V, Str, Arr, Obj]) stepObjectAfterValue(tok lex.Token) ([]ParseEvent, error, bool) {
	switch tok.Kind {
	case lex.TokenComma:
		p.path.Pop()
		p.ctxStack[len(p.ctxStack)-1] = ctxObjectBeforeKeyComma
		return nil, nil, true
	case lex.TokenObjectClose:
		p.path.Pop()
		return p.closeObject()
	default:
		return nil, &SyntaxError{Kind: SyntaxStructural, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "expected ',' or '}'"}, false
	}
}

func (p *Parser[V, Str, Arr, Obj]) closeObject() ([]ParseEvent, error, bool) {
	objPath := p.path.Snapshot()
	p.ctxStack = p.ctxStack[:len(p.ctxStack)-1]
	frame := p.builderStack[len(p.builderStack)-1]
	p.builderStack = p.builderStack[:len(p.builderStack)-1]
	built := p.builder.BuildFromObject(frame.obj)
	ev := ObjectEnd[V]{Path: objPath}
	if p.wantsNonScalarValue(objPath) {
		ev.Value = built
		ev.HasValue = true
	}
	p.insertIntoParent(built)
	return []ParseEvent{ev}, nil, true
}

func (p *Parser[V, Str, Arr, Obj]) stepArrayBeforeValue(tok lex.Token, afterComma bool) ([]ParseEvent, error, bool) {
	if tok.Kind == lex.TokenArrayClose {
		if afterComma {
			return nil, &SyntaxError{Kind: SyntaxStructural, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "trailing comma not allowed before ']'"}, false
		}
		return p.closeArray()
	}
	return p.stepValueCommon(tok)
}

func (p *Parser[V, Str, Arr, Obj]) stepArrayAfterValue(tok lex.Token) ([]ParseEvent, error, bool) {
	switch tok.Kind {
	case lex.TokenComma:
		p.path.BumpLastIndex()
		p.ctxStack[len(p.ctxStack)-1] = ctxArrayBeforeValueComma
		return nil, nil, true
	case lex.TokenArrayClose:
		return p.closeArray()
	default:
		return nil, &SyntaxError{Kind: SyntaxStructural, Line: tok.Pos.Line, Column: tok.Pos.Column, Message: "expected ',' or ']'"}, false
	}
}

func (p *Parser[V, Str, Arr, Obj]) closeArray() ([]ParseEvent, error, bool) {
	p.path.Pop()
	arrPath := p.path.Snapshot()
	p.ctxStack = p.ctxStack[:len(p.ctxStack)-1]
	frame := p.builderStack[len(p.builderStack)-1]
	p.builderStack = p.builderStack[:len(p.builderStack)-1]
	built := p.builder.BuildFromArray(frame.arr)
	ev := ArrayEnd[V]{Path: arrPath}
	if p.wantsNonScalarValue(arrPath) {
		ev.Value = built
		ev.HasValue = true
	}
	p.insertIntoParent(built)
	return []ParseEvent{ev}, nil, true
}

func (p *Parser[V, Str, Arr, Obj]) insertIntoParent(v V) {
	if len(p.builderStack) == 0 {
		return
	}
	top := len(p.builderStack) - 1
	frame := &p.builderStack[top]
	if frame.isObject {
		key, _ := p.path.TopKey()
		frame.obj = p.builder.InsertObject(frame.obj, key, v)
		return
	}
	frame.arr = p.builder.PushArray(frame.arr, v)
}

// tracePath extracts the Path carried by ev, for the Options.Debug trace.
func (p *Parser[V, Str, Arr, Obj]) tracePath(ev ParseEvent) path.Path {
	switch e := ev.(type) {
	case ObjectBegin:
		return e.Path
	case ObjectEnd[V]:
		return e.Path
	case ArrayBegin:
		return e.Path
	case ArrayEnd[V]:
		return e.Path
	case Null:
		return e.Path
	case Bool:
		return e.Path
	case Number:
		return e.Path
	case String[V]:
		return e.Path
	}
	return nil
}

func (p *Parser[V, Str, Arr, Obj]) wantsNonScalarValue(at path.Path) bool {
	switch p.opts.NonScalarValueMode {
	case NonScalarValueModeAll:
		return true
	case NonScalarValueModeRoots:
		return len(at) == 0
	}
	return false
}
