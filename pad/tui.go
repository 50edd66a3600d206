package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/sanity-io/litter"

	"github.com/burntcarrot/weft/doc"
	"github.com/burntcarrot/weft/pad/editor"
	"github.com/burntcarrot/weft/protocol"
)

const noteProp = "note"

// padModel is the bubbletea model for the pad. It plays both sides of
// the document boundary: keystrokes become patches, the document applies
// them, and the editor view re-reads the document text. Op ids come from
// the pad's own counter, the way a backend would allocate them.
type padModel struct {
	nameInput textinput.Model
	editor    *editor.Editor
	logger    zerolog.Logger

	doc    *doc.Document
	note   protocol.ObjectID
	makeOp protocol.OpID
	// counter is the highest op counter handed out so far; seq counts
	// the local changes acknowledged back as patches.
	counter uint64
	seq     uint64

	name     string
	loggedIn bool
	quitting bool
}

func newPadModel(name, content string, logger zerolog.Logger) padModel {
	input := textinput.New()
	input.Placeholder = "Username"
	input.Focus()
	input.CharLimit = 156
	input.Width = 20

	d := doc.New(doc.WithLogger(logger))

	m := padModel{
		nameInput: input,
		editor:    editor.NewEditor(),
		logger:    logger,
		doc:       d,
		name:      name,
		loggedIn:  name != "",
	}

	// The first patch creates the text object and loads the initial
	// content as one run of inserts.
	m.counter = 1
	m.makeOp = d.Actor().OpIDAt(1)
	m.note = protocol.ObjectIDFrom(m.makeOp)

	runes := []rune(content)
	if len(runes) == 0 {
		m.apply()
		return m
	}
	values := make([]protocol.ScalarValue, len(runes))
	for i, r := range runes {
		values[i] = protocol.Str(string(r))
	}
	first := m.doc.Actor().OpIDAt(m.counter + 1)
	m.counter += uint64(len(runes))
	m.apply(protocol.MultiInsertEdit{
		Index:  0,
		ElemID: protocol.ElementIDFrom(first),
		Values: values,
	})
	return m
}

// apply wraps the edits in a patch acknowledging one local change and
// feeds it to the document, then syncs the editor from the result.
func (m *padModel) apply(edits ...protocol.DiffEdit) {
	m.seq++
	actor := m.doc.Actor()
	seq := m.seq
	patch := protocol.Patch{
		Actor: &actor,
		Seq:   &seq,
		Clock: map[protocol.ActorID]uint64{actor: seq},
		MaxOp: m.counter,
		Diffs: protocol.RootDiff{Props: protocol.Props{
			noteProp: protocol.OpDiffs{
				m.makeOp: protocol.TextDiff{ObjectID: m.note, Edits: edits},
			},
		}},
	}

	if err := m.doc.ApplyPatch(patch); err != nil {
		m.logger.Error().Err(err).Msg("apply patch")
		m.editor.StatusMsg = fmt.Sprintf("edit failed: %v", err)
		return
	}

	text, err := m.doc.Text(m.note)
	if err != nil {
		m.logger.Error().Err(err).Msg("read text")
		return
	}
	m.editor.SetText(text)
}

func (m *padModel) insertRune(r rune) {
	m.counter++
	id := m.doc.Actor().OpIDAt(m.counter)
	m.apply(protocol.SingleInsertEdit{
		Index:  m.editor.Cursor,
		ElemID: protocol.ElementIDFrom(id),
		OpID:   id,
		Value:  protocol.ValueDiff{Value: protocol.Str(string(r))},
	})
	m.editor.Cursor++
}

func (m *padModel) removeAt(index int) {
	m.counter++
	m.apply(protocol.RemoveEdit{Index: index, Count: 1})
}

func (m padModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m padModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.loggedIn {
		return m.updateLogin(msg)
	}
	return m.updateEditor(msg)
}

func (m padModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.name = m.nameInput.Value()
			m.loggedIn = true
			m.logger.Info().Str("name", m.name).Msg("logged in")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m padModel) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.editor.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		m.editor.StatusMsg = ""
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			m.logger.Debug().
				Str("state", litter.Sdump(m.doc.Clock(), m.doc.MaxOp(), m.doc.Keys())).
				Msg("document state")
			m.editor.StatusMsg = "state dumped to the debug log"
		case tea.KeyUp:
			m.editor.MoveCursor(0, -1)
		case tea.KeyDown:
			m.editor.MoveCursor(0, 1)
		case tea.KeyLeft:
			m.editor.MoveCursor(-1, 0)
		case tea.KeyRight:
			m.editor.MoveCursor(1, 0)
		case tea.KeyEnter:
			m.insertRune('\n')
		case tea.KeySpace:
			m.insertRune(' ')
		case tea.KeyBackspace:
			if m.editor.Cursor > 0 {
				m.removeAt(m.editor.Cursor - 1)
				m.editor.Cursor--
			}
		case tea.KeyDelete:
			if m.editor.Cursor < len(m.editor.Text) {
				m.removeAt(m.editor.Cursor)
			}
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.insertRune(r)
			}
		}
	}
	return m, nil
}

func (m padModel) View() string {
	if m.quitting {
		return "\n  See you later!\n\n"
	}
	if !m.loggedIn {
		return fmt.Sprintf(
			"Enter username:\n\n%s\n\n%s\n",
			m.nameInput.View(),
			"(esc to quit)",
		)
	}
	return m.editor.View()
}

// Text returns the current document text, for saving on exit.
func (m padModel) Text() string {
	text, err := m.doc.Text(m.note)
	if err != nil {
		m.logger.Error().Err(err).Msg("read text")
		return ""
	}
	return text
}
