package jsonmodem

import (
	"fmt"

	"github.com/flitsinc/jsonmodem/lex"
)

// SyntaxErrorKind enumerates the structural error alphabet from the
// grammar layer, independent of the lexical errors lex.ErrorKind already
// distinguishes.
type SyntaxErrorKind int

const (
	// SyntaxInvalidCharacter mirrors a lexical InvalidCharacter.
	SyntaxInvalidCharacter SyntaxErrorKind = iota
	// SyntaxInvalidUnicodeEscapeChar mirrors a lexical
	// InvalidUnicodeEscapeChar.
	SyntaxInvalidUnicodeEscapeChar
	// SyntaxInvalidUnicodeEscapeSequence mirrors a lexical
	// InvalidUnicodeEscapeSequence.
	SyntaxInvalidUnicodeEscapeSequence
	// SyntaxUnexpectedEndOfInput mirrors a lexical UnexpectedEndOfInput, or
	// is raised directly by Finish when containers are still open.
	SyntaxUnexpectedEndOfInput
	// SyntaxStructural covers grammar violations with no lexical
	// counterpart: colon without a preceding key, a trailing comma where
	// forbidden, a second root document without multi-value mode, etc.
	SyntaxStructural
)

// SyntaxError is a grammar-level parse failure. Every error carries the
// line/column of the offending character.
type SyntaxError struct {
	Kind    SyntaxErrorKind
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// BuilderError wraps a rejection from the caller's value-builder, e.g. a
// number lexeme that does not fit the builder's numeric representation.
type BuilderError struct {
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("%d:%d: builder rejected value: %s", e.Line, e.Column, e.Message)
}

func (e *BuilderError) Unwrap() error { return e.Err }

// fromLexError converts a lower-layer lex.Error into the equivalent
// SyntaxError, preserving position and classification.
func fromLexError(e *lex.Error) *SyntaxError {
	kind := SyntaxInvalidCharacter
	switch e.Kind {
	case lex.ErrorInvalidCharacter:
		kind = SyntaxInvalidCharacter
	case lex.ErrorInvalidUnicodeEscapeChar:
		kind = SyntaxInvalidUnicodeEscapeChar
	case lex.ErrorInvalidUnicodeEscapeSequence:
		kind = SyntaxInvalidUnicodeEscapeSequence
	case lex.ErrorUnexpectedEndOfInput:
		kind = SyntaxUnexpectedEndOfInput
	}
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected character %q", e.Char)
	}
	return &SyntaxError{
		Kind:    kind,
		Line:    e.Pos.Line,
		Column:  e.Pos.Column,
		Message: msg,
	}
}
