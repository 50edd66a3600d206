package protocol

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Diff describes the state of one document node after applying changes.
// Concrete diffs are MapDiff, TableDiff, ListDiff, TextDiff, ValueDiff
// and CursorDiff; the wire form carries a "type" discriminator.
type Diff interface {
	// DiffType returns the wire discriminator.
	DiffType() string
}

// OpDiffs maps the id of the op that wrote a value to that value's diff.
// More than one entry means the property is in conflict; picking a winner
// is the consumer's business.
type OpDiffs map[OpID]Diff

// Props maps property names to the per-writer diffs beneath them.
type Props map[string]OpDiffs

// MapDiff updates a map object's properties.
type MapDiff struct {
	ObjectID ObjectID
	Props    Props
}

// TableDiff updates a table object's rows.
type TableDiff struct {
	ObjectID ObjectID
	Props    Props
}

// ListDiff edits a list object's elements.
type ListDiff struct {
	ObjectID ObjectID
	Edits    []DiffEdit
}

// TextDiff edits a text object's characters.
type TextDiff struct {
	ObjectID ObjectID
	Edits    []DiffEdit
}

// ValueDiff sets a primitive value.
type ValueDiff struct {
	Value ScalarValue
}

// CursorDiff sets a cursor value, resolved to the element's position at
// the time the patch was made.
type CursorDiff struct {
	ObjectID ObjectID
	ElemID   OpID
	Index    int
}

func (MapDiff) DiffType() string    { return "map" }
func (TableDiff) DiffType() string  { return "table" }
func (ListDiff) DiffType() string   { return "list" }
func (TextDiff) DiffType() string   { return "text" }
func (ValueDiff) DiffType() string  { return "value" }
func (CursorDiff) DiffType() string { return "cursor" }

type propsWire struct {
	ObjectID ObjectID `json:"objectId"`
	Type     string   `json:"type"`
	Props    Props    `json:"props"`
}

type editsWire struct {
	ObjectID ObjectID   `json:"objectId"`
	Type     string     `json:"type"`
	Edits    []DiffEdit `json:"edits"`
}

func (d MapDiff) MarshalJSON() ([]byte, error) {
	return json.Marshal(propsWire{d.ObjectID, "map", nonNilProps(d.Props)})
}

func (d TableDiff) MarshalJSON() ([]byte, error) {
	return json.Marshal(propsWire{d.ObjectID, "table", nonNilProps(d.Props)})
}

func (d ListDiff) MarshalJSON() ([]byte, error) {
	return json.Marshal(editsWire{d.ObjectID, "list", nonNilEdits(d.Edits)})
}

func (d TextDiff) MarshalJSON() ([]byte, error) {
	return json.Marshal(editsWire{d.ObjectID, "text", nonNilEdits(d.Edits)})
}

func (d ValueDiff) MarshalJSON() ([]byte, error) {
	w := struct {
		Value    ScalarValue `json:"value"`
		DataType DataType    `json:"datatype,omitempty"`
		Type     string      `json:"type"`
	}{Value: d.Value, Type: "value"}
	if dt := d.Value.DataType(); dt != DataUndefined {
		w.DataType = dt
	}
	return json.Marshal(w)
}

func (d CursorDiff) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ObjectID ObjectID `json:"objectId"`
		ElemID   OpID     `json:"elemId"`
		Index    int      `json:"index"`
		Type     string   `json:"type"`
	}{d.ObjectID, d.ElemID, d.Index, "cursor"})
}

func nonNilProps(p Props) Props {
	if p == nil {
		return Props{}
	}
	return p
}

func nonNilEdits(e []DiffEdit) []DiffEdit {
	if e == nil {
		return []DiffEdit{}
	}
	return e
}

// UnmarshalJSON decodes any diff variant keyed by its "type" field.
func (m *OpDiffs) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("op diffs: %w", err)
	}
	out := make(OpDiffs, len(raw))
	for k, v := range raw {
		id, err := ParseOpID(k)
		if err != nil {
			return fmt.Errorf("op diffs: %w", err)
		}
		d, err := UnmarshalDiff(v)
		if err != nil {
			return err
		}
		out[id] = d
	}
	*m = out
	return nil
}

// UnmarshalDiff decodes a diff from its tagged wire form.
func UnmarshalDiff(raw json.RawMessage) (Diff, error) {
	var head struct {
		Type     string            `json:"type"`
		ObjectID ObjectID          `json:"objectId"`
		Props    Props             `json:"props"`
		Edits    []json.RawMessage `json:"edits"`
		Value    json.RawMessage   `json:"value"`
		DataType DataType          `json:"datatype"`
		ElemID   OpID              `json:"elemId"`
		Index    int               `json:"index"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	switch head.Type {
	case "map":
		return MapDiff{head.ObjectID, nonNilProps(head.Props)}, nil
	case "table":
		return TableDiff{head.ObjectID, nonNilProps(head.Props)}, nil
	case "list", "text":
		edits := make([]DiffEdit, 0, len(head.Edits))
		for _, rawEdit := range head.Edits {
			e, err := UnmarshalEdit(rawEdit)
			if err != nil {
				return nil, err
			}
			edits = append(edits, e)
		}
		if head.Type == "list" {
			return ListDiff{head.ObjectID, edits}, nil
		}
		return TextDiff{head.ObjectID, edits}, nil
	case "value":
		v, err := ScalarFromJSON(head.Value, head.DataType)
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		return ValueDiff{v}, nil
	case "cursor":
		return CursorDiff{head.ObjectID, head.ElemID, head.Index}, nil
	}
	return nil, fmt.Errorf("diff: unknown type %q", head.Type)
}

// DiffEdit is one positional edit inside a list or text diff. Concrete
// edits are SingleInsertEdit, MultiInsertEdit, UpdateEdit and RemoveEdit;
// the wire form carries an "action" discriminator.
type DiffEdit interface {
	// EditAction returns the wire discriminator.
	EditAction() string
}

// SingleInsertEdit inserts one element at Index. ElemID names the new
// element; OpID is the op whose value won (they differ when a later op
// overwrote the element before this patch was made).
type SingleInsertEdit struct {
	Index  int
	ElemID ElementID
	OpID   OpID
	Value  Diff
}

// MultiInsertEdit inserts a run of primitive values starting at Index.
// ElemID names the first element; each following element increments the
// counter by one.
type MultiInsertEdit struct {
	Index  int
	ElemID ElementID
	Values []ScalarValue
}

// UpdateEdit replaces the value of the element already at Index.
type UpdateEdit struct {
	Index int
	OpID  OpID
	Value Diff
}

// RemoveEdit deletes Count elements starting at Index.
type RemoveEdit struct {
	Index int
	Count int
}

func (SingleInsertEdit) EditAction() string { return "insert" }
func (MultiInsertEdit) EditAction() string  { return "multi-insert" }
func (UpdateEdit) EditAction() string       { return "update" }
func (RemoveEdit) EditAction() string       { return "remove" }

func (e SingleInsertEdit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action string    `json:"action"`
		Index  int       `json:"index"`
		ElemID ElementID `json:"elemId"`
		OpID   OpID      `json:"opId"`
		Value  Diff      `json:"value"`
	}{"insert", e.Index, e.ElemID, e.OpID, e.Value})
}

func (e MultiInsertEdit) MarshalJSON() ([]byte, error) {
	w := struct {
		Action   string        `json:"action"`
		Index    int           `json:"index"`
		ElemID   ElementID     `json:"elemId"`
		Values   []ScalarValue `json:"values"`
		DataType DataType      `json:"datatype,omitempty"`
	}{Action: "multi-insert", Index: e.Index, ElemID: e.ElemID, Values: e.Values}
	if len(e.Values) > 0 {
		if dt := e.Values[0].DataType(); dt != DataUndefined {
			w.DataType = dt
		}
	}
	return json.Marshal(w)
}

func (e UpdateEdit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action string `json:"action"`
		Index  int    `json:"index"`
		OpID   OpID   `json:"opId"`
		Value  Diff   `json:"value"`
	}{"update", e.Index, e.OpID, e.Value})
}

func (e RemoveEdit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action string `json:"action"`
		Index  int    `json:"index"`
		Count  int    `json:"count"`
	}{"remove", e.Index, e.Count})
}

// UnmarshalEdit decodes an edit from its tagged wire form.
func UnmarshalEdit(raw json.RawMessage) (DiffEdit, error) {
	var head struct {
		Action   string            `json:"action"`
		Index    int               `json:"index"`
		ElemID   ElementID         `json:"elemId"`
		OpID     OpID              `json:"opId"`
		Value    json.RawMessage   `json:"value"`
		Values   []json.RawMessage `json:"values"`
		DataType DataType          `json:"datatype"`
		Count    int               `json:"count"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("edit: %w", err)
	}
	switch head.Action {
	case "insert":
		v, err := UnmarshalDiff(head.Value)
		if err != nil {
			return nil, err
		}
		return SingleInsertEdit{head.Index, head.ElemID, head.OpID, v}, nil
	case "multi-insert":
		vals := make([]ScalarValue, 0, len(head.Values))
		for _, rawVal := range head.Values {
			v, err := ScalarFromJSON(rawVal, head.DataType)
			if err != nil {
				return nil, fmt.Errorf("edit values: %w", err)
			}
			vals = append(vals, v)
		}
		return MultiInsertEdit{head.Index, head.ElemID, vals}, nil
	case "update":
		v, err := UnmarshalDiff(head.Value)
		if err != nil {
			return nil, err
		}
		return UpdateEdit{head.Index, head.OpID, v}, nil
	case "remove":
		return RemoveEdit{head.Index, head.Count}, nil
	}
	return nil, fmt.Errorf("edit: unknown action %q", head.Action)
}
