package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lexAll feeds the whole input at once and drains every token, including the
// final EOF token, asserting no error occurs along the way.
func lexAll(t *testing.T, input string) []Token {
	t.Helper()
	buf := NewBuffer()
	buf.Feed(input)
	lx := NewLexer(buf, false)
	var toks []Token
	for {
		tok, errTok, ok := lx.Next(true)
		if !ok {
			t.Fatalf("lexer starved with eof=true, input %q", input)
		}
		require.Nil(t, errTok, "unexpected lex error for input %q: %v", input, errTok)
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks
		}
	}
}

func TestLexerStructuralTokens(t *testing.T) {
	toks := lexAll(t, "{}[]:,")
	kinds := make([]TokenKind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	assert.Equal(t, []TokenKind{
		TokenObjectOpen, TokenObjectClose,
		TokenArrayOpen, TokenArrayClose,
		TokenColon, TokenComma, TokenEOF,
	}, kinds)
}

func TestLexerLiterals(t *testing.T) {
	toks := lexAll(t, "true false null")
	require.Len(t, toks, 4)
	assert.Equal(t, TokenBool, toks[0].Kind)
	assert.True(t, toks[0].Bool)
	assert.Equal(t, TokenBool, toks[1].Kind)
	assert.False(t, toks[1].Bool)
	assert.Equal(t, TokenNull, toks[2].Kind)
}

func TestLexerNumbers(t *testing.T) {
	cases := []struct {
		in      string
		lexeme  string
		isFloat bool
	}{
		{"0", "0", false},
		{"-0", "-0", false},
		{"123", "123", false},
		{"-42", "-42", false},
		{"3.14", "3.14", true},
		{"1e10", "1e10", true},
		{"1E-10", "1E-10", true},
		{"2.5e+3", "2.5e+3", true},
	}
	for _, c := range cases {
		toks := lexAll(t, c.in)
		require.Len(t, toks, 2, "input %q", c.in)
		assert.Equal(t, TokenNumber, toks[0].Kind)
		assert.Equal(t, c.lexeme, toks[0].Lexeme)
		assert.Equal(t, c.isFloat, toks[0].IsFloat)
	}
}

func TestLexerLeadingZeroRejected(t *testing.T) {
	buf := NewBuffer()
	buf.Feed("01")
	lx := NewLexer(buf, false)
	_, errTok, ok := lx.Next(true)
	require.True(t, ok)
	require.NotNil(t, errTok)
	assert.Equal(t, ErrorInvalidCharacter, errTok.Kind)
}

func TestLexerString(t *testing.T) {
	toks := lexAll(t, `"hello"`)
	require.Len(t, toks, 2)
	assert.Equal(t, TokenStringFragment, toks[0].Kind)
	assert.Equal(t, "hello", toks[0].Fragment)
	assert.True(t, toks[0].Final)
}

func TestLexerStringEscapes(t *testing.T) {
	toks := lexAll(t, `"a\nb\tc\"d\\e"`)
	require.Len(t, toks, 2)
	assert.Equal(t, "a\nb\tc\"d\\e", toks[0].Fragment)
}

func TestLexerUnicodeEscape(t *testing.T) {
	toks := lexAll(t, `"\u0041"`)
	require.Len(t, toks, 2)
	assert.Equal(t, "A", toks[0].Fragment)
}

func TestLexerSurrogatePair(t *testing.T) {
	// U+1F600 GRINNING FACE, encoded as a surrogate pair.
	toks := lexAll(t, `"\uD83D`+`\uDE00"`)
	require.Len(t, toks, 2)
	assert.Equal(t, "\U0001F600", toks[0].Fragment)
}

func TestLexerLoneHighSurrogateRejected(t *testing.T) {
	buf := NewBuffer()
	buf.Feed(`"\uD83DA"`)
	lx := NewLexer(buf, false)
	var lastErr *Error
	for {
		tok, errTok, ok := lx.Next(true)
		if !ok {
			t.Fatal("starved")
		}
		if errTok != nil {
			lastErr = errTok
			break
		}
		if tok.Kind == TokenEOF {
			break
		}
	}
	require.NotNil(t, lastErr)
	assert.Equal(t, ErrorInvalidUnicodeEscapeSequence, lastErr.Kind)
}

func TestLexerInvalidEscapeChar(t *testing.T) {
	buf := NewBuffer()
	buf.Feed(`"\q"`)
	lx := NewLexer(buf, false)
	var lastErr *Error
	for {
		tok, errTok, ok := lx.Next(true)
		if !ok {
			t.Fatal("starved")
		}
		if errTok != nil {
			lastErr = errTok
			break
		}
		if tok.Kind == TokenEOF {
			break
		}
	}
	require.NotNil(t, lastErr)
	assert.Equal(t, ErrorInvalidUnicodeEscapeChar, lastErr.Kind)
}

func TestLexerInvalidUnicodeHexDigit(t *testing.T) {
	buf := NewBuffer()
	buf.Feed(`"\u00zz"`)
	lx := NewLexer(buf, false)
	var lastErr *Error
	for {
		tok, errTok, ok := lx.Next(true)
		if !ok {
			t.Fatal("starved")
		}
		if errTok != nil {
			lastErr = errTok
			break
		}
		if tok.Kind == TokenEOF {
			break
		}
	}
	require.NotNil(t, lastErr)
	assert.Equal(t, ErrorInvalidUnicodeEscapeChar, lastErr.Kind)
}

// TestLexerChunkBoundaries feeds the same document rune-by-rune to verify
// the lexer tolerates splits at every position, including mid-escape and
// mid-number.
func TestLexerChunkBoundaries(t *testing.T) {
	const doc = `{"a":[1,2.5e1,"hi\"A",true,null]}`
	buf := NewBuffer()
	lx := NewLexer(buf, false)
	var kinds []TokenKind
	runes := []rune(doc)
	for i, r := range runes {
		buf.Feed(string(r))
		eof := i == len(runes)-1
		for {
			tok, errTok, ok := lx.Next(eof && i == len(runes)-1)
			if !ok {
				break
			}
			require.Nil(t, errTok)
			kinds = append(kinds, tok.Kind)
			if tok.Kind == TokenEOF {
				break
			}
		}
	}
	// Drain with eof=true in case the final token needed it.
	for {
		tok, errTok, ok := lx.Next(true)
		if !ok {
			break
		}
		require.Nil(t, errTok)
		kinds = append(kinds, tok.Kind)
		if tok.Kind == TokenEOF {
			break
		}
	}
	require.NotEmpty(t, kinds)
	assert.Equal(t, TokenEOF, kinds[len(kinds)-1])
}

func TestLexerUnterminatedStringAtEOF(t *testing.T) {
	buf := NewBuffer()
	buf.Feed(`"abc`)
	lx := NewLexer(buf, false)
	_, errTok, ok := lx.Next(true)
	require.True(t, ok)
	require.NotNil(t, errTok)
	assert.Equal(t, ErrorUnexpectedEndOfInput, errTok.Kind)
}

func TestLexerWhitespace(t *testing.T) {
	toks := lexAll(t, "  \t\n  true  ")
	require.Len(t, toks, 2)
	assert.Equal(t, TokenBool, toks[0].Kind)
}
