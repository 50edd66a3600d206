package crdt

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/burntcarrot/weft/protocol"
)

var actor = protocol.ActorID("aa")

// expectPanic asserts that fn hits a caller-contract panic.
func expectPanic(t *testing.T, description string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("(%s) expected a panic, got none", description)
		}
	}()
	fn()
}

func TestNewSequenceTree(t *testing.T) {
	tree := NewSequenceTree[string]()

	// A fresh sequence holds nothing and tolerates probing reads.
	if got := tree.Len(); got != 0 {
		t.Errorf("got length %v, expected 0", got)
	}
	if _, _, ok := tree.Get(0); ok {
		t.Error("expected Get on an empty sequence to report absent")
	}
}

func TestPushBackKeepsInsertionOrder(t *testing.T) {
	tree := NewSequenceTree[string]()
	values := []string{"a", "b", "c", "d"}

	for i, v := range values {
		tree.PushBack(actor.OpIDAt(uint64(i+1)), v)
	}

	if got := tree.Len(); got != len(values) {
		t.Fatalf("got length %v, expected %v", got, len(values))
	}
	for i, expected := range values {
		id, got, ok := tree.Get(i)
		if !ok {
			t.Fatalf("position %d reported absent", i)
		}
		if got != expected {
			t.Errorf("position %d: got %q, expected %q", i, got, expected)
		}
		if id != actor.OpIDAt(uint64(i+1)) {
			t.Errorf("position %d: got op id %v, expected %v", i, id, actor.OpIDAt(uint64(i+1)))
		}
	}
}

func TestInsertAtFrontReversesOrder(t *testing.T) {
	tree := NewSequenceTree[string]()
	values := []string{"a", "b", "c", "d"}

	for i, v := range values {
		tree.Insert(0, actor.OpIDAt(uint64(i+1)), v)
	}

	// Always inserting at the front yields reverse insertion order.
	got := tree.Values()
	expected := []string{"d", "c", "b", "a"}
	if !cmp.Equal(got, expected) {
		t.Errorf("got != expected, diff: %v", cmp.Diff(got, expected))
	}
}

func TestLeafSplit(t *testing.T) {
	tests := []struct {
		description string
		position    int
		expected    []string
	}{
		{description: "insert before the only element", position: 0, expected: []string{"new", "old"}},
		{description: "insert after the only element", position: 1, expected: []string{"old", "new"}},
	}

	for _, tc := range tests {
		tree := NewSequenceTree[string]()
		tree.PushBack(actor.OpIDAt(1), "old")
		tree.Insert(tc.position, actor.OpIDAt(2), "new")

		if got := tree.Len(); got != 2 {
			t.Errorf("(%s) got length %v, expected 2", tc.description, got)
		}
		got := tree.Values()
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v", tc.description, cmp.Diff(got, tc.expected))
		}
	}
}

func TestSetReplacesValueOnly(t *testing.T) {
	tree := NewSequenceTree[string]()
	tree.PushBack(actor.OpIDAt(1), "a")
	tree.PushBack(actor.OpIDAt(2), "b")

	displaced := tree.Set(1, "x")
	if displaced != "b" {
		t.Errorf("got displaced %q, expected %q", displaced, "b")
	}

	// The op id stays with the element; only the value changes.
	id, got, ok := tree.Get(1)
	if !ok || got != "x" {
		t.Errorf("got (%q, %v), expected (%q, true)", got, ok, "x")
	}
	if id != actor.OpIDAt(2) {
		t.Errorf("got op id %v, expected %v", id, actor.OpIDAt(2))
	}
	if got := tree.Len(); got != 2 {
		t.Errorf("got length %v, expected 2", got)
	}
}

func TestGetMut(t *testing.T) {
	tree := NewSequenceTree[string]()
	tree.PushBack(actor.OpIDAt(1), "a")

	id, value, ok := tree.GetMut(0)
	if !ok || id != actor.OpIDAt(1) {
		t.Fatalf("got (%v, %v), expected the stored element", id, ok)
	}
	*value = "mutated"

	if _, got, _ := tree.Get(0); got != "mutated" {
		t.Errorf("got %q, expected %q", got, "mutated")
	}

	if _, _, ok := tree.GetMut(1); ok {
		t.Error("expected GetMut past the end to report absent")
	}
}

func TestRemoveMatchesGet(t *testing.T) {
	tree := NewSequenceTree[string]()
	for i, v := range []string{"a", "b", "c", "d", "e"} {
		tree.PushBack(actor.OpIDAt(uint64(i+1)), v)
	}

	// Remove from the middle until empty; every removal must return what
	// Get reported just before, and the successors shift down by one.
	for tree.Len() > 0 {
		position := tree.Len() / 2
		_, expected, ok := tree.Get(position)
		if !ok {
			t.Fatalf("position %d reported absent before removal", position)
		}

		before := tree.Values()
		lengthBefore := tree.Len()

		got := tree.Remove(position)
		if got != expected {
			t.Errorf("got %q, expected %q", got, expected)
		}
		if tree.Len() != lengthBefore-1 {
			t.Errorf("got length %v, expected %v", tree.Len(), lengthBefore-1)
		}

		expectedAfter := append(append([]string{}, before[:position]...), before[position+1:]...)
		if got := tree.Values(); !cmp.Equal(got, expectedAfter) {
			t.Errorf("got != expected, diff: %v", cmp.Diff(got, expectedAfter))
		}
	}
}

func TestInsertAfterRemove(t *testing.T) {
	tree := NewSequenceTree[string]()
	tree.PushBack(actor.OpIDAt(1), "a")
	tree.PushBack(actor.OpIDAt(2), "b")

	// Removal detaches a leaf but keeps its parent; later inserts must
	// land in the right place anyway.
	tree.Remove(0)
	tree.Insert(0, actor.OpIDAt(3), "c")
	tree.PushBack(actor.OpIDAt(4), "d")

	got := tree.Values()
	expected := []string{"c", "b", "d"}
	if !cmp.Equal(got, expected) {
		t.Errorf("got != expected, diff: %v", cmp.Diff(got, expected))
	}
}

// TestEditScenario walks the container through a realistic edit session.
func TestEditScenario(t *testing.T) {
	tree := NewSequenceTree[string]()

	tree.PushBack(actor.OpIDAt(1), "a")
	tree.PushBack(actor.OpIDAt(2), "b")
	tree.Insert(1, actor.OpIDAt(3), "x")

	got := tree.Values()
	expected := []string{"a", "x", "b"}
	if !cmp.Equal(got, expected) {
		t.Fatalf("got != expected, diff: %v", cmp.Diff(got, expected))
	}

	if removed := tree.Remove(0); removed != "a" {
		t.Errorf("got %q, expected %q", removed, "a")
	}

	got = tree.Values()
	expected = []string{"x", "b"}
	if !cmp.Equal(got, expected) {
		t.Errorf("got != expected, diff: %v", cmp.Diff(got, expected))
	}
	if tree.Len() != 2 {
		t.Errorf("got length %v, expected 2", tree.Len())
	}
	if _, _, ok := tree.Get(5); ok {
		t.Error("expected Get far past the end to report absent")
	}
}

func TestAllYieldsIDsInOrder(t *testing.T) {
	tree := NewSequenceTree[int]()
	tree.PushBack(actor.OpIDAt(1), 10)
	tree.PushBack(actor.OpIDAt(2), 20)
	tree.Insert(0, actor.OpIDAt(3), 30)

	var ids []protocol.OpID
	var values []int
	for id, v := range tree.All() {
		ids = append(ids, id)
		values = append(values, v)
	}

	expectedIDs := []protocol.OpID{actor.OpIDAt(3), actor.OpIDAt(1), actor.OpIDAt(2)}
	if !cmp.Equal(ids, expectedIDs) {
		t.Errorf("ids: got != expected, diff: %v", cmp.Diff(ids, expectedIDs))
	}
	expectedValues := []int{30, 10, 20}
	if !cmp.Equal(values, expectedValues) {
		t.Errorf("values: got != expected, diff: %v", cmp.Diff(values, expectedValues))
	}
}

func TestContractViolationsPanic(t *testing.T) {
	tree := NewSequenceTree[string]()
	tree.PushBack(actor.OpIDAt(1), "a")

	expectPanic(t, "insert past the end", func() { tree.Insert(2, actor.OpIDAt(2), "b") })
	expectPanic(t, "insert at a negative position", func() { tree.Insert(-1, actor.OpIDAt(2), "b") })
	expectPanic(t, "set past the end", func() { tree.Set(1, "b") })
	expectPanic(t, "remove past the end", func() { tree.Remove(1) })
	expectPanic(t, "remove from an empty sequence", func() { NewSequenceTree[string]().Remove(0) })
}
