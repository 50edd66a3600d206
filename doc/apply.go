package doc

import (
	"fmt"
	"sort"

	"github.com/burntcarrot/weft/protocol"
)

// ApplyPatch replays a backend patch against the document: it creates
// sequence objects bound under root properties, translates their diff
// edits into positional index operations, and advances the clock and the
// op watermark. Every edit is validated against the target sequence
// before it mutates anything; a validation failure aborts the patch with
// an error instead of corrupting the index.
func (d *Document) ApplyPatch(patch protocol.Patch) error {
	for prop, writers := range patch.Diffs.Props {
		// Replaying writers in ascending op id order keeps the root
		// binding deterministic when a property is in conflict: the
		// highest op id wins on every replica.
		ids := make([]protocol.OpID, 0, len(writers))
		for id := range writers {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })

		for _, id := range ids {
			if err := d.applyRootProp(prop, writers[id]); err != nil {
				return fmt.Errorf("root prop %q: %w", prop, err)
			}
		}
	}

	for actor, seq := range patch.Clock {
		if seq > d.clock[actor] {
			d.clock[actor] = seq
		}
	}
	if patch.Actor != nil && patch.Seq != nil && *patch.Seq > d.clock[*patch.Actor] {
		d.clock[*patch.Actor] = *patch.Seq
	}
	if patch.MaxOp > d.maxOp {
		d.maxOp = patch.MaxOp
	}
	return nil
}

func (d *Document) applyRootProp(prop string, diff protocol.Diff) error {
	switch diff := diff.(type) {
	case protocol.ListDiff:
		s, err := d.ensureSequence(diff.ObjectID, protocol.TypeList)
		if err != nil {
			return err
		}
		d.rootProps[prop] = diff.ObjectID
		return d.applyEdits(s, diff.Edits)
	case protocol.TextDiff:
		s, err := d.ensureSequence(diff.ObjectID, protocol.TypeText)
		if err != nil {
			return err
		}
		d.rootProps[prop] = diff.ObjectID
		return d.applyEdits(s, diff.Edits)
	}
	return fmt.Errorf("%s diff: %w", diff.DiffType(), ErrUnsupportedDiff)
}

// ensureSequence returns the tracked sequence for obj, creating it on
// first sight. An object cannot change shape between patches.
func (d *Document) ensureSequence(obj protocol.ObjectID, objType protocol.ObjType) (*Sequence, error) {
	if s, ok := d.sequences.Get(&Sequence{ID: obj}); ok {
		if s.Type != objType {
			return nil, fmt.Errorf("object %v is a %s, patch says %s: %w", obj, s.Type, objType, ErrBadPatch)
		}
		return s, nil
	}
	s := newSequence(obj, objType)
	d.sequences.Set(s)
	d.logger.Debug().Stringer("object", obj).Str("type", string(objType)).Msg("created sequence")
	return s, nil
}

func (d *Document) applyEdits(s *Sequence, edits []protocol.DiffEdit) error {
	for _, edit := range edits {
		var err error
		switch edit := edit.(type) {
		case protocol.SingleInsertEdit:
			err = d.applyInsert(s, edit)
		case protocol.MultiInsertEdit:
			err = d.applyMultiInsert(s, edit)
		case protocol.UpdateEdit:
			err = d.applyUpdate(s, edit)
		case protocol.RemoveEdit:
			err = d.applyRemove(s, edit)
		default:
			err = fmt.Errorf("%s edit: %w", edit.EditAction(), ErrUnsupportedDiff)
		}
		if err != nil {
			return fmt.Errorf("object %v: %w", s.ID, err)
		}
	}
	return nil
}

func (d *Document) applyInsert(s *Sequence, edit protocol.SingleInsertEdit) error {
	if _, ok := edit.ElemID.OpID(); !ok {
		return fmt.Errorf("insert without an element id: %w", ErrBadPatch)
	}
	value, err := editValue(edit.Value)
	if err != nil {
		return err
	}
	if edit.Index < 0 || edit.Index > s.Len() {
		return fmt.Errorf("insert at %d, length %d: %w", edit.Index, s.Len(), ErrBadIndex)
	}
	if !s.insert(edit.Index, edit.ElemID, value) {
		d.logger.Debug().Stringer("elem", edit.ElemID).Msg("skipped duplicate insert")
		return nil
	}
	d.logger.Debug().Stringer("elem", edit.ElemID).Int("index", edit.Index).Msg("insert")
	return nil
}

func (d *Document) applyMultiInsert(s *Sequence, edit protocol.MultiInsertEdit) error {
	first, ok := edit.ElemID.OpID()
	if !ok {
		return fmt.Errorf("multi-insert without an element id: %w", ErrBadPatch)
	}
	if edit.Index < 0 || edit.Index > s.Len() {
		return fmt.Errorf("multi-insert at %d, length %d: %w", edit.Index, s.Len(), ErrBadIndex)
	}

	// Successive elements of a run increment the first element's counter.
	position := edit.Index
	for i, value := range edit.Values {
		elem := protocol.ElementIDFrom(first.Actor.OpIDAt(first.Counter + uint64(i)))
		if !s.insert(position, elem, value) {
			d.logger.Debug().Stringer("elem", elem).Msg("skipped duplicate insert")
			continue
		}
		position++
	}
	d.logger.Debug().Stringer("elem", edit.ElemID).Int("index", edit.Index).Int("count", len(edit.Values)).Msg("multi-insert")
	return nil
}

func (d *Document) applyUpdate(s *Sequence, edit protocol.UpdateEdit) error {
	value, err := editValue(edit.Value)
	if err != nil {
		return err
	}
	if edit.Index < 0 || edit.Index >= s.Len() {
		return fmt.Errorf("update at %d, length %d: %w", edit.Index, s.Len(), ErrBadIndex)
	}
	s.set(edit.Index, value)
	d.logger.Debug().Stringer("op", edit.OpID).Int("index", edit.Index).Msg("update")
	return nil
}

func (d *Document) applyRemove(s *Sequence, edit protocol.RemoveEdit) error {
	if edit.Count < 0 || edit.Index < 0 || edit.Index+edit.Count > s.Len() {
		return fmt.Errorf("remove %d at %d, length %d: %w", edit.Count, edit.Index, s.Len(), ErrBadIndex)
	}
	for i := 0; i < edit.Count; i++ {
		s.remove(edit.Index)
	}
	d.logger.Debug().Int("index", edit.Index).Int("count", edit.Count).Msg("remove")
	return nil
}

// editValue extracts the scalar payload of a sequence edit. Nested
// objects inside sequences are not reconstructed.
func editValue(diff protocol.Diff) (protocol.ScalarValue, error) {
	if diff == nil {
		return protocol.ScalarValue{}, fmt.Errorf("edit without a value: %w", ErrBadPatch)
	}
	switch diff := diff.(type) {
	case protocol.ValueDiff:
		return diff.Value, nil
	case protocol.CursorDiff:
		return protocol.CursorValue(diff.ElemID), nil
	}
	return protocol.ScalarValue{}, fmt.Errorf("%s value inside a sequence: %w", diff.DiffType(), ErrUnsupportedDiff)
}
