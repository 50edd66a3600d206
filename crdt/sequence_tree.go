// Package crdt holds the positional index that backs collaborative
// sequences: a size-caching binary tree mapping integer positions to
// (op id, value) elements.
package crdt

import (
	"iter"

	"github.com/burntcarrot/weft/protocol"
)

// SequenceTree is the positional index for one ordered document object.
// Internal nodes cache the number of elements beneath them, so reads,
// inserts and removals all cost a single root-to-leaf walk. Nothing
// rebalances the tree; its shape follows the edit pattern, so worst-case
// walks are linear in the sequence length. A tree owns its nodes
// exclusively and is not safe for concurrent use.
type SequenceTree[T any] struct {
	root *node[T]
}

// node is either a leaf carrying exactly one element, or an internal
// node with up to two children and the cached element count of its
// subtree. Removals leave childless internal nodes behind; they count
// zero elements and later inserts reuse them.
type node[T any] struct {
	leaf  bool
	id    protocol.OpID
	value T

	left  *node[T]
	right *node[T]
	size  int
}

// NewSequenceTree returns an empty sequence. The root is always an
// internal node, never a leaf, even for zero or one element.
func NewSequenceTree[T any]() *SequenceTree[T] {
	return &SequenceTree[T]{root: &node[T]{}}
}

// Len returns the number of elements in the sequence.
func (t *SequenceTree[T]) Len() int {
	return t.root.length()
}

func (n *node[T]) length() int {
	if n == nil {
		return 0
	}
	if n.leaf {
		return 1
	}
	return n.size
}

// Insert places value at position, shifting the elements at position and
// beyond one to the right. Position Len() appends. Anything beyond that
// is a caller bug and panics.
func (t *SequenceTree[T]) Insert(position int, id protocol.OpID, value T) {
	if position < 0 || position > t.Len() {
		panic("crdt: insert position out of bounds")
	}
	t.root.insert(position, id, value)
}

// PushBack appends value at the end of the sequence.
func (t *SequenceTree[T]) PushBack(id protocol.OpID, value T) {
	t.root.insert(t.Len(), id, value)
}

func (n *node[T]) insert(index int, id protocol.OpID, value T) {
	if n.leaf {
		n.split(index, id, value)
		return
	}

	// Boundary positions go left: inserting at index == leftLen lands
	// between the subtrees and belongs at the end of the left one.
	leftLen := n.left.length()
	n.size++
	if index <= leftLen {
		if n.left == nil {
			n.left = &node[T]{leaf: true, id: id, value: value}
			return
		}
		n.left.insert(index, id, value)
		return
	}
	if n.right == nil {
		n.right = &node[T]{leaf: true, id: id, value: value}
		return
	}
	n.right.insert(index-leftLen, id, value)
}

// split turns a leaf into an internal node holding the old and the new
// element. Descent reaches a leaf only with index 0 or 1: 0 puts the new
// element first, 1 keeps the old element first.
func (n *node[T]) split(index int, id protocol.OpID, value T) {
	old := &node[T]{leaf: true, id: n.id, value: n.value}
	fresh := &node[T]{leaf: true, id: id, value: value}

	var zero T
	n.leaf = false
	n.id = protocol.OpID{}
	n.value = zero
	n.size = 2
	if index == 0 {
		n.left, n.right = fresh, old
		return
	}
	n.left, n.right = old, fresh
}

// Get returns the element at position. ok is false when the position is
// past the end.
func (t *SequenceTree[T]) Get(position int) (protocol.OpID, T, bool) {
	if position < 0 || position >= t.Len() {
		var zero T
		return protocol.OpID{}, zero, false
	}
	n := t.root.at(position)
	return n.id, n.value, true
}

// GetMut returns the element at position along with a pointer to its
// value for in-place mutation. The pointer stays valid until the next
// insert or remove. ok is false when the position is past the end.
func (t *SequenceTree[T]) GetMut(position int) (protocol.OpID, *T, bool) {
	if position < 0 || position >= t.Len() {
		return protocol.OpID{}, nil, false
	}
	n := t.root.at(position)
	return n.id, &n.value, true
}

// Set replaces the value at position and returns the displaced value.
// The element's op id is untouched. Positions past the end are a caller
// bug and panic.
func (t *SequenceTree[T]) Set(position int, value T) T {
	if position < 0 || position >= t.Len() {
		panic("crdt: set position out of bounds")
	}
	n := t.root.at(position)
	old := n.value
	n.value = value
	return old
}

func (n *node[T]) at(index int) *node[T] {
	if n.leaf {
		return n
	}
	leftLen := n.left.length()
	if index < leftLen {
		return n.left.at(index)
	}
	if n.right == nil {
		panic("crdt: BUG: no right child")
	}
	return n.right.at(index - leftLen)
}

// Remove deletes the element at position and returns its value. Subtree
// sizes along the walk shrink on the way down; the selected leaf is
// detached whole. Its parent stays in place even when childless.
// Positions past the end are a caller bug and panic.
func (t *SequenceTree[T]) Remove(position int) T {
	if position < 0 || position >= t.Len() {
		panic("crdt: remove position out of bounds")
	}
	return t.root.remove(position)
}

func (n *node[T]) remove(index int) T {
	n.size--
	leftLen := n.left.length()
	if index < leftLen {
		if n.left.leaf {
			value := n.left.value
			n.left = nil
			return value
		}
		return n.left.remove(index)
	}
	if n.right == nil {
		panic("crdt: BUG: no right child")
	}
	if n.right.leaf {
		value := n.right.value
		n.right = nil
		return value
	}
	return n.right.remove(index - leftLen)
}

// All walks the sequence in order, yielding each element's op id and
// value.
func (t *SequenceTree[T]) All() iter.Seq2[protocol.OpID, T] {
	return func(yield func(protocol.OpID, T) bool) {
		t.root.each(yield)
	}
}

func (n *node[T]) each(yield func(protocol.OpID, T) bool) bool {
	if n == nil {
		return true
	}
	if n.leaf {
		return yield(n.id, n.value)
	}
	return n.left.each(yield) && n.right.each(yield)
}

// Values returns the values in sequence order.
func (t *SequenceTree[T]) Values() []T {
	out := make([]T, 0, t.Len())
	for _, v := range t.All() {
		out = append(out, v)
	}
	return out
}
