// Package doc keeps a local mirror of a collaborative document. A
// backend applies changes and hands over patches; the Document walks
// each patch's diffs and replays them as positional edits against the
// sequence objects it tracks.
package doc

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/tidwall/btree"

	"github.com/burntcarrot/weft/protocol"
)

var (
	// ErrUnknownObject marks a read or edit aimed at an object the
	// document has never seen.
	ErrUnknownObject = errors.New("unknown object")
	// ErrNotText marks a text read aimed at a non-text sequence.
	ErrNotText = errors.New("object is not a text")
	// ErrBadIndex marks a patch edit whose index does not fit the
	// sequence's current length.
	ErrBadIndex = errors.New("edit index out of range")
	// ErrUnsupportedDiff marks a diff shape the document does not
	// reconstruct (nested objects, maps and tables beyond the root).
	ErrUnsupportedDiff = errors.New("unsupported diff")
	// ErrBadPatch marks a structurally invalid patch.
	ErrBadPatch = errors.New("malformed patch")
)

// Document mirrors the sequence objects of one collaborative document.
// Not safe for concurrent use; the layer feeding it patches owns it.
type Document struct {
	actor  protocol.ActorID
	logger zerolog.Logger

	sequences *btree.BTreeG[*Sequence]
	rootProps map[string]protocol.ObjectID
	clock     map[protocol.ActorID]uint64
	maxOp     uint64
}

// Option configures a Document.
type Option func(*Document)

// WithActor fixes the document's own actor identity instead of a random one.
func WithActor(actor protocol.ActorID) Option {
	return func(d *Document) {
		d.actor = actor
	}
}

// WithLogger routes the document's edit tracing to the given logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// New returns an empty document with a fresh actor identity.
func New(opts ...Option) *Document {
	d := &Document{
		actor:  protocol.NewActorID(),
		logger: zerolog.Nop(),
		sequences: btree.NewBTreeG(func(a, b *Sequence) bool {
			return a.ID.Compare(b.ID) < 0
		}),
		rootProps: make(map[string]protocol.ObjectID),
		clock:     make(map[protocol.ActorID]uint64),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Actor returns the document's own actor identity.
func (d *Document) Actor() protocol.ActorID {
	return d.actor
}

// MaxOp returns the highest op counter observed so far.
func (d *Document) MaxOp() uint64 {
	return d.maxOp
}

// Clock returns a copy of the highest applied change seq per actor.
func (d *Document) Clock() map[protocol.ActorID]uint64 {
	clock := make(map[protocol.ActorID]uint64, len(d.clock))
	for actor, seq := range d.clock {
		clock[actor] = seq
	}
	return clock
}

// Keys returns the root property names bound to sequence objects, sorted.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.rootProps))
	for key := range d.rootProps {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ObjectID resolves a root property name to its sequence object.
func (d *Document) ObjectID(key string) (protocol.ObjectID, bool) {
	id, ok := d.rootProps[key]
	return id, ok
}

// Sequence returns the tracked sequence object.
func (d *Document) Sequence(obj protocol.ObjectID) (*Sequence, error) {
	s, ok := d.sequences.Get(&Sequence{ID: obj})
	if !ok {
		return nil, fmt.Errorf("object %v: %w", obj, ErrUnknownObject)
	}
	return s, nil
}

// Length returns the element count of the given sequence object.
func (d *Document) Length(obj protocol.ObjectID) (int, error) {
	s, err := d.Sequence(obj)
	if err != nil {
		return 0, err
	}
	return s.Len(), nil
}

// Get returns the value at position in the given sequence object; ok is
// false past the end.
func (d *Document) Get(obj protocol.ObjectID, position int) (protocol.ScalarValue, bool, error) {
	s, err := d.Sequence(obj)
	if err != nil {
		return protocol.ScalarValue{}, false, err
	}
	_, value, ok := s.Get(position)
	return value, ok, nil
}

// ElementIDAt returns the causal identity of the element at position in
// the given sequence object; ok is false past the end.
func (d *Document) ElementIDAt(obj protocol.ObjectID, position int) (protocol.ElementID, bool, error) {
	s, err := d.Sequence(obj)
	if err != nil {
		return protocol.ElementID{}, false, err
	}
	elem, ok := s.ElementIDAt(position)
	return elem, ok, nil
}

// List returns all element values of the given sequence object in order.
func (d *Document) List(obj protocol.ObjectID) ([]protocol.ScalarValue, error) {
	s, err := d.Sequence(obj)
	if err != nil {
		return nil, err
	}
	return s.Values(), nil
}

// Text renders a text object as a string. Every element must be a string
// value.
func (d *Document) Text(obj protocol.ObjectID) (string, error) {
	s, err := d.Sequence(obj)
	if err != nil {
		return "", err
	}
	if s.Type != protocol.TypeText {
		return "", fmt.Errorf("object %v is a %s: %w", obj, s.Type, ErrNotText)
	}
	var out []byte
	for _, value := range s.All() {
		if value.Kind != protocol.KindStr {
			return "", fmt.Errorf("text element of kind %s: %w", value.Kind, ErrUnsupportedDiff)
		}
		out = append(out, value.Str...)
	}
	return string(out), nil
}
