package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	rootStr = "_root"
	headStr = "_head"
)

// OpID names a single operation: the counter the producing actor assigned
// to it, plus the actor itself. Counters start at 1; the zero OpID is
// reserved as a sentinel.
type OpID struct {
	Counter uint64
	Actor   ActorID
}

// ParseOpID parses the "counter@actor" form.
func ParseOpID(s string) (OpID, error) {
	counter, actor, ok := strings.Cut(s, "@")
	if !ok {
		return OpID{}, fmt.Errorf("parse op id %q: missing '@'", s)
	}
	n, err := strconv.ParseUint(counter, 10, 64)
	if err != nil {
		return OpID{}, fmt.Errorf("parse op id %q: %w", s, err)
	}
	a, err := ActorIDFromString(actor)
	if err != nil {
		return OpID{}, fmt.Errorf("parse op id %q: %w", s, err)
	}
	return OpID{Counter: n, Actor: a}, nil
}

func (id OpID) String() string {
	return strconv.FormatUint(id.Counter, 10) + "@" + string(id.Actor)
}

// IsZero reports whether the id is the reserved zero sentinel.
func (id OpID) IsZero() bool {
	return id == OpID{}
}

// Compare orders ids by counter first, then by actor bytes, so every peer
// agrees on the relative order of concurrent operations.
func (id OpID) Compare(other OpID) int {
	switch {
	case id.Counter < other.Counter:
		return -1
	case id.Counter > other.Counter:
		return 1
	}
	return id.Actor.Compare(other.Actor)
}

// MarshalText encodes the id in its "counter@actor" form.
func (id OpID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the "counter@actor" form.
func (id *OpID) UnmarshalText(text []byte) error {
	parsed, err := ParseOpID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ObjectID names an object inside a document: either the root map or the
// operation that created the object. The zero value is the root.
type ObjectID OpID

// ObjectIDFrom returns the id of the object created by the given op.
func ObjectIDFrom(id OpID) ObjectID {
	return ObjectID(id)
}

// ParseObjectID parses either "_root" or the "counter@actor" form.
func ParseObjectID(s string) (ObjectID, error) {
	if s == rootStr {
		return ObjectID{}, nil
	}
	id, err := ParseOpID(s)
	if err != nil {
		return ObjectID{}, err
	}
	return ObjectID(id), nil
}

// IsRoot reports whether the id names the document root.
func (o ObjectID) IsRoot() bool {
	return OpID(o).IsZero()
}

func (o ObjectID) String() string {
	if o.IsRoot() {
		return rootStr
	}
	return OpID(o).String()
}

// Compare orders object ids with the root before everything else.
func (o ObjectID) Compare(other ObjectID) int {
	return OpID(o).Compare(OpID(other))
}

func (o ObjectID) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *ObjectID) UnmarshalText(text []byte) error {
	parsed, err := ParseObjectID(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ElementID names a position in a sequence: either the synthetic head,
// meaning "before the first element", or the id of the operation that
// inserted the element. The zero value is the head.
type ElementID OpID

// ElementIDFrom returns the element named by the given insertion op.
func ElementIDFrom(id OpID) ElementID {
	return ElementID(id)
}

// ParseElementID parses either "_head" or the "counter@actor" form.
func ParseElementID(s string) (ElementID, error) {
	if s == headStr {
		return ElementID{}, nil
	}
	id, err := ParseOpID(s)
	if err != nil {
		return ElementID{}, err
	}
	return ElementID(id), nil
}

// IsHead reports whether the id is the synthetic head.
func (e ElementID) IsHead() bool {
	return OpID(e).IsZero()
}

func (e ElementID) String() string {
	if e.IsHead() {
		return headStr
	}
	return OpID(e).String()
}

// OpID returns the inserting operation's id; ok is false for the head.
func (e ElementID) OpID() (OpID, bool) {
	if e.IsHead() {
		return OpID{}, false
	}
	return OpID(e), true
}

// Compare orders element ids with the head before everything else.
func (e ElementID) Compare(other ElementID) int {
	return OpID(e).Compare(OpID(other))
}

func (e ElementID) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *ElementID) UnmarshalText(text []byte) error {
	parsed, err := ParseElementID(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Key addresses one field of an object: a property name for maps and
// tables, an element id for sequences. Both shapes travel as bare strings.
type Key string

// MapKey addresses a map or table property.
func MapKey(prop string) Key {
	return Key(prop)
}

// ElemKey addresses a sequence element.
func ElemKey(e ElementID) Key {
	return Key(e.String())
}

// ElementID returns the sequence-element reading of the key; ok is false
// when the key is a plain property name.
func (k Key) ElementID() (ElementID, bool) {
	e, err := ParseElementID(string(k))
	if err != nil {
		return ElementID{}, false
	}
	return e, true
}
