package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/hexdd/internal/config"
)

// Styler colors a Row for the interactive view. It only wraps cells in
// styles, so the column geometry is the same as Row.String.
type Styler struct {
	label    lipgloss.Style
	cursor   lipgloss.Style
	modified lipgloss.Style
	editing  lipgloss.Style
	plain    lipgloss.Style
}

// NewStyler creates a styler from the theme
func NewStyler(theme *config.ThemeConfig) *Styler {
	return &Styler{
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Offset)),
		cursor:   lipgloss.NewStyle().Reverse(true).Foreground(lipgloss.Color(theme.Cursor)),
		modified: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Modified)).Bold(true),
		editing:  lipgloss.NewStyle().Background(lipgloss.Color(theme.Editing)).Foreground(lipgloss.Color("0")),
		plain:    lipgloss.NewStyle(),
	}
}

// Render styles row. cursorCol is the cursor's column within the row, or
// -1 when the cursor is elsewhere. pending, when not empty, is the
// two-character in-progress edit shown in place of the cursor byte.
func (s *Styler) Render(row Row, cursorCol int, pending string) string {
	var b strings.Builder
	b.WriteString(s.label.Render(row.Label))

	for i, c := range row.Cells {
		b.WriteByte(' ')
		switch {
		case i == cursorCol && pending != "":
			b.WriteString(s.editing.Render(pending))
		case i == cursorCol:
			b.WriteString(s.cursor.Render(c.Hex()))
		case c.Modified:
			b.WriteString(s.modified.Render(c.Hex()))
		default:
			b.WriteString(s.plain.Render(c.Hex()))
		}
	}

	b.WriteString(gutter)
	for i, ch := range []byte(row.ASCII) {
		text := string(ch)
		switch {
		case i == cursorCol:
			b.WriteString(s.cursor.Render(text))
		case i < len(row.Cells) && row.Cells[i].Modified:
			b.WriteString(s.modified.Render(text))
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}
