package doc

import (
	"iter"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/burntcarrot/weft/crdt"
	"github.com/burntcarrot/weft/protocol"
)

// Sequence is one list or text object of a document: its identity, its
// shape, and the positional index holding its elements. A sequence also
// remembers which element insertions it has already applied, so a patch
// delivered twice cannot double its content.
type Sequence struct {
	ID   protocol.ObjectID
	Type protocol.ObjType

	tree    *crdt.SequenceTree[protocol.ScalarValue]
	applied mapset.Set[protocol.ElementID]
}

func newSequence(id protocol.ObjectID, objType protocol.ObjType) *Sequence {
	return &Sequence{
		ID:      id,
		Type:    objType,
		tree:    crdt.NewSequenceTree[protocol.ScalarValue](),
		applied: mapset.NewThreadUnsafeSet[protocol.ElementID](),
	}
}

// Len returns the number of elements in the sequence.
func (s *Sequence) Len() int {
	return s.tree.Len()
}

// Get returns the element at position; ok is false past the end.
func (s *Sequence) Get(position int) (protocol.OpID, protocol.ScalarValue, bool) {
	return s.tree.Get(position)
}

// ElementIDAt returns the causal identity of the element at position, the
// handle an outgoing op needs to name "the element currently there".
func (s *Sequence) ElementIDAt(position int) (protocol.ElementID, bool) {
	id, _, ok := s.tree.Get(position)
	if !ok {
		return protocol.ElementID{}, false
	}
	return protocol.ElementIDFrom(id), true
}

// All walks the sequence in order.
func (s *Sequence) All() iter.Seq2[protocol.OpID, protocol.ScalarValue] {
	return s.tree.All()
}

// Values returns the element values in order.
func (s *Sequence) Values() []protocol.ScalarValue {
	return s.tree.Values()
}

// insert places the element produced by elem at position. It reports
// false when the element was applied before and the sequence is unchanged.
func (s *Sequence) insert(position int, elem protocol.ElementID, value protocol.ScalarValue) bool {
	if s.applied.Contains(elem) {
		return false
	}
	id, _ := elem.OpID()
	s.tree.Insert(position, id, value)
	s.applied.Add(elem)
	return true
}

func (s *Sequence) set(position int, value protocol.ScalarValue) {
	s.tree.Set(position, value)
}

func (s *Sequence) remove(position int) protocol.ScalarValue {
	return s.tree.Remove(position)
}
