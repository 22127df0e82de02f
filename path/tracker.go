package path

// Tracker maintains the current path as a growable stack of frames. It backs
// the parser's context stack: a Key frame is pushed only while the enclosing
// container is an object, an Index frame only while it is an array.
type Tracker struct {
	frames []Frame
}

// NewTracker returns an empty Tracker positioned at the document root.
func NewTracker() *Tracker {
	return &Tracker{}
}

// PushKey pushes a Key frame, valid only when about to parse an object's
// value for that key.
func (t *Tracker) PushKey(key string) {
	t.frames = append(t.frames, Frame{Kind: KindKey, Key: key})
}

// PushIndexZero pushes an Index(0) frame, called on ArrayBegin.
func (t *Tracker) PushIndexZero() {
	t.frames = append(t.frames, Frame{Kind: KindIndex, Index: 0})
}

// BumpLastIndex increments the index of the top frame, called on every comma
// inside an array. It is a no-op if the top frame is not an Index frame.
func (t *Tracker) BumpLastIndex() {
	if n := len(t.frames); n > 0 && t.frames[n-1].Kind == KindIndex {
		t.frames[n-1].Index++
	}
}

// Pop removes the top frame, called on container close. It is a no-op if the
// stack is already empty.
func (t *Tracker) Pop() {
	if n := len(t.frames); n > 0 {
		t.frames = t.frames[:n-1]
	}
}

// LastKind reports the kind of the top frame and whether one exists.
func (t *Tracker) LastKind() (Kind, bool) {
	if n := len(t.frames); n > 0 {
		return t.frames[n-1].Kind, true
	}
	return 0, false
}

// TopKey reports the key of the top frame if it is a Key frame.
func (t *Tracker) TopKey() (string, bool) {
	if n := len(t.frames); n > 0 && t.frames[n-1].Kind == KindKey {
		return t.frames[n-1].Key, true
	}
	return "", false
}

// Depth reports the number of currently-open frames.
func (t *Tracker) Depth() int {
	return len(t.frames)
}

// Snapshot returns a cheap, independent copy of the current path, suitable
// for attaching to an emitted event.
func (t *Tracker) Snapshot() Path {
	if len(t.frames) == 0 {
		return nil
	}
	out := make(Path, len(t.frames))
	copy(out, t.frames)
	return out
}
