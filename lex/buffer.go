// Package lex implements the chunk-tolerant lexer: a FIFO scalar buffer, a
// null/true/false literal matcher, and the token-producing state machine
// that sits on top of both.
package lex

// Buffer holds unconsumed input as a FIFO of runes. Chunks are fed in whole;
// the buffer itself never splits a UTF-8 scalar, so no partial-rune state
// needs to cross Feed calls.
type Buffer struct {
	runes []rune
	pos   int
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Feed appends the scalars of chunk to the buffer.
func (b *Buffer) Feed(chunk string) {
	if b.pos > 0 && b.pos == len(b.runes) {
		b.runes = b.runes[:0]
		b.pos = 0
	} else if b.pos > 4096 && b.pos*2 > len(b.runes) {
		b.compact()
	}
	b.runes = append(b.runes, []rune(chunk)...)
}

func (b *Buffer) compact() {
	remaining := len(b.runes) - b.pos
	copy(b.runes, b.runes[b.pos:])
	b.runes = b.runes[:remaining]
	b.pos = 0
}

// Peek returns the next unconsumed rune without consuming it.
func (b *Buffer) Peek() (rune, bool) {
	if b.pos >= len(b.runes) {
		return 0, false
	}
	return b.runes[b.pos], true
}

// Next consumes and returns the next rune.
func (b *Buffer) Next() (rune, bool) {
	r, ok := b.Peek()
	if ok {
		b.pos++
	}
	return r, ok
}

// Len reports the number of unconsumed runes.
func (b *Buffer) Len() int {
	return len(b.runes) - b.pos
}

// CopyWhile consumes and appends to dst every leading rune satisfying pred,
// stopping at the first rune that fails it or at buffer exhaustion. It
// returns the extended dst and whether the buffer ran dry before pred
// failed (i.e. the run might continue in a future chunk).
func (b *Buffer) CopyWhile(dst []rune, pred func(rune) bool) ([]rune, bool) {
	exhausted := true
	for b.pos < len(b.runes) {
		r := b.runes[b.pos]
		if !pred(r) {
			exhausted = false
			break
		}
		dst = append(dst, r)
		b.pos++
	}
	return dst, exhausted
}
