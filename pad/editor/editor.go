// Package editor holds the cursor and viewport logic behind the pad's
// text view. It knows nothing about documents or patches; it tracks a
// rune buffer, a cursor index into it, and how to lay both out on screen.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var cursorStyle = lipgloss.NewStyle().Reverse(true)

type Editor struct {
	Text      []rune
	Cursor    int
	Width     int
	Height    int
	StatusMsg string
}

func NewEditor() *Editor {
	return &Editor{Width: 80, Height: 24}
}

// SetText replaces the buffer, clamping the cursor into the new bounds.
func (e *Editor) SetText(text string) {
	e.Text = []rune(text)
	if e.Cursor > len(e.Text) {
		e.Cursor = len(e.Text)
	}
}

func (e *Editor) String() string {
	return string(e.Text)
}

func (e *Editor) SetSize(width, height int) {
	e.Width = width
	e.Height = height
}

// MoveCursor shifts the cursor x runes horizontally and y lines
// vertically, clamping to the buffer bounds.
func (e *Editor) MoveCursor(x, y int) {
	if len(e.Text) == 0 && e.Cursor == 0 {
		return
	}

	cursor := e.Cursor + x
	if y > 0 {
		cursor = e.cursorDown()
	}
	if y < 0 {
		cursor = e.cursorUp()
	}

	if cursor > len(e.Text) {
		cursor = len(e.Text)
	}
	if cursor < 0 {
		cursor = 0
	}
	e.Cursor = cursor
}

// cursorUp and cursorDown find the bounds of the current line by
// scanning for newlines around the cursor, then carry the cursor's
// offset within its line over to the target line, stopping at the
// target line's end when it is shorter.

func (e *Editor) cursorUp() int {
	pos := e.Cursor
	offset := 0

	// Step off the end of the buffer or a newline before scanning.
	if pos == len(e.Text) || e.Text[pos] == '\n' {
		offset++
		pos--
	}
	if pos < 0 {
		pos = 0
	}

	start := pos
	for start > 0 && e.Text[start] != '\n' {
		start--
	}
	if start == 0 {
		// Already on the first line.
		return 0
	}

	prevStart := start - 1
	for prevStart >= 0 && e.Text[prevStart] != '\n' {
		prevStart--
	}

	offset += pos - start
	if offset <= start-prevStart {
		return prevStart + offset
	}
	return start
}

func (e *Editor) cursorDown() int {
	pos := e.Cursor
	offset := 0

	if pos == len(e.Text) || e.Text[pos] == '\n' {
		offset++
		pos--
	}
	if pos < 0 {
		pos = 0
	}

	start := pos
	for start > 0 && e.Text[start] != '\n' {
		start--
	}

	// The first line has no leading newline, so the offset math below
	// is one short for it.
	if start == 0 && e.Text[start] != '\n' {
		offset++
	}

	end := pos
	for end < len(e.Text) && e.Text[end] != '\n' {
		end++
	}
	if e.Text[pos] == '\n' && e.Cursor != 0 {
		end++
	}
	if end == len(e.Text) {
		// Already on the last line.
		return len(e.Text)
	}

	nextEnd := end + 1
	for nextEnd < len(e.Text) && e.Text[nextEnd] != '\n' {
		nextEnd++
	}

	offset += pos - start
	if offset < nextEnd-end {
		return end + offset
	}
	return nextEnd
}

// cursorXY converts a buffer index to 1-based screen coordinates,
// advancing x by each rune's display width.
func (e *Editor) cursorXY(index int) (int, int) {
	x, y := 1, 1
	if index < 0 {
		return x, y
	}
	if index > len(e.Text) {
		index = len(e.Text)
	}

	for i := 0; i < index; i++ {
		if e.Text[i] == '\n' {
			x = 1
			y++
		} else {
			x += runewidth.RuneWidth(e.Text[i])
		}
	}
	return x, y
}

// View renders the buffer with the cursor inverted, scrolled so the
// cursor's line stays visible, with a status line at the bottom.
func (e *Editor) View() string {
	rows := e.Height - 1
	if rows < 1 {
		rows = 1
	}

	var lines []string
	var line strings.Builder
	for i, r := range e.Text {
		if r == '\n' {
			if i == e.Cursor {
				line.WriteString(cursorStyle.Render(" "))
			}
			lines = append(lines, line.String())
			line.Reset()
			continue
		}
		if i == e.Cursor {
			line.WriteString(cursorStyle.Render(string(r)))
			continue
		}
		line.WriteRune(r)
	}
	if e.Cursor == len(e.Text) {
		line.WriteString(cursorStyle.Render(" "))
	}
	lines = append(lines, line.String())

	_, cy := e.cursorXY(e.Cursor)
	top := 0
	if cy > rows {
		top = cy - rows
	}
	end := top + rows
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for _, l := range lines[top:end] {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	for i := end - top; i < rows; i++ {
		b.WriteByte('\n')
	}
	b.WriteString(e.statusLine())
	return b.String()
}

func (e *Editor) statusLine() string {
	if e.StatusMsg != "" {
		return e.StatusMsg
	}
	x, y := e.cursorXY(e.Cursor)
	return fmt.Sprintf("x=%d, y=%d, cursor=%d, len(text)=%d", x, y, e.Cursor, len(e.Text))
}
