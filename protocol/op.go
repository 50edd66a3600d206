package protocol

import (
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/goccy/go-json"
)

// OpAction names what an operation does to its target object.
type OpAction string

const (
	OpMakeMap   OpAction = "makeMap"
	OpMakeTable OpAction = "makeTable"
	OpMakeList  OpAction = "makeList"
	OpMakeText  OpAction = "makeText"
	OpSet       OpAction = "set"
	OpDel       OpAction = "del"
	OpInc       OpAction = "inc"
)

// MakeAction returns the action that creates an object of the given type.
func MakeAction(t ObjType) OpAction {
	switch t {
	case TypeMap:
		return OpMakeMap
	case TypeTable:
		return OpMakeTable
	case TypeList:
		return OpMakeList
	case TypeText:
		return OpMakeText
	}
	return ""
}

// ObjType returns the object type a make action creates; ok is false for
// every other action.
func (a OpAction) ObjType() (ObjType, bool) {
	switch a {
	case OpMakeMap:
		return TypeMap, true
	case OpMakeTable:
		return TypeTable, true
	case OpMakeList:
		return TypeList, true
	case OpMakeText:
		return TypeText, true
	}
	return "", false
}

// SortedOpIDs keeps operation ids in ascending order, the canonical form
// for predecessor lists.
type SortedOpIDs []OpID

// Add inserts the id at its sorted position.
func (s *SortedOpIDs) Add(id OpID) {
	i, _ := slices.BinarySearchFunc(*s, id, OpID.Compare)
	*s = slices.Insert(*s, i, id)
}

// Contains reports whether the id is present.
func (s SortedOpIDs) Contains(id OpID) bool {
	_, ok := slices.BinarySearchFunc(s, id, OpID.Compare)
	return ok
}

// Op is one operation of a change. Pred lists the ops the operation
// overwrites; Insert distinguishes "insert after Key" from "update at
// Key" for sequence targets.
type Op struct {
	Action OpAction
	Obj    ObjectID
	Key    Key
	Insert bool
	Count  int
	Value  *ScalarValue
	Values []ScalarValue
	Pred   SortedOpIDs
}

type opWire struct {
	Action   OpAction          `json:"action"`
	Obj      ObjectID          `json:"obj"`
	Key      Key               `json:"key"`
	Insert   bool              `json:"insert,omitempty"`
	Count    int               `json:"count,omitempty"`
	Value    json.RawMessage   `json:"value,omitempty"`
	Values   []json.RawMessage `json:"values,omitempty"`
	DataType DataType          `json:"datatype,omitempty"`
	Pred     SortedOpIDs       `json:"pred"`
}

// MarshalJSON encodes the op with its value's datatype hint beside the
// value, the way patch diffs carry theirs.
func (o Op) MarshalJSON() ([]byte, error) {
	w := opWire{
		Action: o.Action,
		Obj:    o.Obj,
		Key:    o.Key,
		Insert: o.Insert,
		Count:  o.Count,
		Pred:   o.Pred,
	}
	if w.Pred == nil {
		w.Pred = SortedOpIDs{}
	}
	if o.Value != nil {
		raw, err := json.Marshal(*o.Value)
		if err != nil {
			return nil, err
		}
		w.Value = raw
		if dt := o.Value.DataType(); dt != DataUndefined {
			w.DataType = dt
		}
	}
	for _, v := range o.Values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		w.Values = append(w.Values, raw)
		if w.DataType == "" {
			if dt := v.DataType(); dt != DataUndefined {
				w.DataType = dt
			}
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (o *Op) UnmarshalJSON(b []byte) error {
	var w opWire
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("op: %w", err)
	}
	out := Op{
		Action: w.Action,
		Obj:    w.Obj,
		Key:    w.Key,
		Insert: w.Insert,
		Count:  w.Count,
		Pred:   w.Pred,
	}
	if len(w.Value) > 0 {
		v, err := ScalarFromJSON(w.Value, w.DataType)
		if err != nil {
			return fmt.Errorf("op value: %w", err)
		}
		out.Value = &v
	}
	for _, raw := range w.Values {
		v, err := ScalarFromJSON(raw, w.DataType)
		if err != nil {
			return fmt.Errorf("op values: %w", err)
		}
		out.Values = append(out.Values, v)
	}
	*o = out
	return nil
}

// ChangeHash is the hash naming one change in the dependency graph.
type ChangeHash [32]byte

// ParseChangeHash parses the hex form.
func ParseChangeHash(s string) (ChangeHash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ChangeHash{}, fmt.Errorf("parse change hash %q: %w", s, err)
	}
	if len(b) != len(ChangeHash{}) {
		return ChangeHash{}, fmt.Errorf("parse change hash %q: expected %d bytes, got %d", s, len(ChangeHash{}), len(b))
	}
	var h ChangeHash
	copy(h[:], b)
	return h, nil
}

func (h ChangeHash) String() string {
	return hex.EncodeToString(h[:])
}

func (h ChangeHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *ChangeHash) UnmarshalText(text []byte) error {
	parsed, err := ParseChangeHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Change is one actor's atomic batch of operations. Op counters run from
// StartOp through MaxOp in the order the ops appear.
type Change struct {
	Actor   ActorID      `json:"actor"`
	Seq     uint64       `json:"seq"`
	StartOp uint64       `json:"startOp"`
	Time    int64        `json:"time"`
	Message string       `json:"message,omitempty"`
	Deps    []ChangeHash `json:"deps"`
	Ops     []Op         `json:"ops"`
}

// MaxOp returns the highest op counter the change allocates.
func (c Change) MaxOp() uint64 {
	return c.StartOp + uint64(len(c.Ops)) - 1
}

// OpIDAt returns the id of the i-th op in the change.
func (c Change) OpIDAt(i int) OpID {
	return c.Actor.OpIDAt(c.StartOp + uint64(i))
}
