// Package path tracks a JSON document location as a stack of key/index
// frames, mirroring the parser's open containers.
package path

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind distinguishes the two frame shapes a Path can carry.
type Kind int

const (
	// KindKey marks a frame produced while inside an object.
	KindKey Kind = iota
	// KindIndex marks a frame produced while inside an array.
	KindIndex
)

// Frame is one element of a Path: either an object key or an array index.
// Exactly one of Key/Index is meaningful, selected by Kind.
type Frame struct {
	Kind  Kind
	Key   string
	Index int
}

func (f Frame) String() string {
	if f.Kind == KindKey {
		return f.Key
	}
	return strconv.Itoa(f.Index)
}

// MarshalJSON renders a Key frame as a JSON string and an Index frame as a
// JSON number, matching the event-serialization shape used by tests and
// snapshots.
func (f Frame) MarshalJSON() ([]byte, error) {
	if f.Kind == KindKey {
		return json.Marshal(f.Key)
	}
	return json.Marshal(f.Index)
}

// Path is an immutable snapshot of the route from the document root to the
// subject of some ParseEvent. The zero value is the root path ([]).
type Path []Frame

// String renders the path as a dotted/bracketed debug form, e.g. a[0].b.
func (p Path) String() string {
	var b strings.Builder
	for i, f := range p {
		if f.Kind == KindIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(f.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(f.Key)
	}
	return b.String()
}

// Equal reports whether p and other denote the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of p, safe to retain past further
// mutation of whatever stack produced it.
func (p Path) Clone() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}
