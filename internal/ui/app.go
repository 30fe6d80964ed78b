package ui

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/TimelordUK/hexdd/internal/config"
	"github.com/TimelordUK/hexdd/internal/fault"
	"github.com/TimelordUK/hexdd/internal/history"
	"github.com/TimelordUK/hexdd/internal/render"
	"github.com/TimelordUK/hexdd/internal/source"
	"github.com/TimelordUK/hexdd/internal/view"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeGoto
)

// Lines below the byte grid: status bar and help line
const reservedLines = 2

// Rows shown before the first WindowSizeMsg arrives
const defaultRows = 22

// Bytes sampled from the start of the file for type detection
const sampleSize = 512

// ModelOptions configures a new session
type ModelOptions struct {
	Filepath string
	Config   *config.Config
	Display  render.DisplayConfig

	// VisibleRows fixes the number of rows; 0 follows the terminal height
	VisibleRows int

	// StartOffset is jumped to before the first draw when HasStartOffset is set
	StartOffset    int64
	HasStartOffset bool

	// Source replaces opening Filepath, mainly for tests
	Source source.ByteSource
}

// Model is the interactive session for one open file
type Model struct {
	viewport *view.Viewport
	source   source.ByteSource
	history  history.Log
	styler   *render.Styler
	keys     keyMap
	help     help.Model
	input    textinput.Model

	mode      Mode
	width     int
	height    int
	fixedRows bool

	// One rendered line per visible row
	rowCache   []string
	labelWidth int
	lastRedraw int

	// Status
	filename  string
	fileType  string
	message   string
	msgIsErr  bool
	statusBar lipgloss.Style
	msgStyle  lipgloss.Style
	err       error
}

// NewModelWithOptions opens the file and builds the initial screen
func NewModelWithOptions(opts ModelOptions) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	src := opts.Source
	if src == nil {
		fs, err := source.NewFileSource(opts.Filepath)
		if err != nil {
			return nil, err
		}
		src = fs
	}

	rows := opts.VisibleRows
	if rows <= 0 {
		rows = defaultRows
	}

	vp, err := view.NewViewport(src.Length(), opts.Display, rows)
	if err != nil {
		src.Close()
		return nil, err
	}
	if opts.HasStartOffset {
		if err := vp.JumpTo(opts.StartOffset); err != nil {
			src.Close()
			return nil, err
		}
	}

	sample, err := src.Read(0, sampleSize)
	if err != nil {
		src.Close()
		return nil, err
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "offset"
	ti.CharLimit = 32

	name := filepath.Base(src.Path())
	m := &Model{
		viewport:  vp,
		source:    src,
		styler:    render.NewStyler(&cfg.Theme),
		keys:      newKeyMap(&cfg.Keybindings),
		help:      help.New(),
		input:     ti,
		mode:      ModeNormal,
		fixedRows: opts.VisibleRows > 0,
		filename:  name,
		fileType:  render.DetectFileType(name, sample.Bytes),
		statusBar: lipgloss.NewStyle().
			Background(lipgloss.Color(cfg.Theme.StatusBar)).
			Foreground(lipgloss.Color(cfg.Theme.StatusBarText)),
		msgStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Message)).Bold(true),
	}

	if err := m.refresh(); err != nil {
		src.Close()
		return nil, err
	}

	log.Printf("open %s: %d bytes, type %s, writable=%v", src.Path(), src.Length(), m.fileType, src.Writable())
	return m, nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Each message is handled to completion,
// including any write and the redraw, before the next one is read.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.fixedRows {
			m.viewport.SetRows(msg.Height - reservedLines)
		}
	}

	if m.err != nil {
		return m, tea.Quit
	}
	if err := m.refresh(); err != nil {
		m.fail(err)
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.mode == ModeGoto {
		return m.handleGotoKey(msg)
	}
	if m.viewport.State() == view.Editing {
		return m.handleEditKey(msg)
	}

	m.message = ""
	vp := m.viewport

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Left):
		vp.MoveBytes(-1)
	case key.Matches(msg, m.keys.Right):
		vp.MoveBytes(1)
	case key.Matches(msg, m.keys.Up):
		vp.MoveRows(-1)
	case key.Matches(msg, m.keys.Down):
		vp.MoveRows(1)
	case key.Matches(msg, m.keys.PageUp):
		vp.MovePages(-1)
	case key.Matches(msg, m.keys.PageDown):
		vp.MovePages(1)
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()

	case key.Matches(msg, m.keys.Goto):
		m.mode = ModeGoto
		m.input.SetValue("")
		return m.input.Focus()

	case key.Matches(msg, m.keys.Edit):
		m.beginEdit()

	case key.Matches(msg, m.keys.CycleBase):
		vp.CycleBase()
		m.setMessage("offsets in " + vp.Config().Base.String())
	case key.Matches(msg, m.keys.WiderRows):
		m.setRowWidth(vp.Config().RowWidth + 1)
	case key.Matches(msg, m.keys.NarrowerRows):
		m.setRowWidth(vp.Config().RowWidth - 1)

	case key.Matches(msg, m.keys.Undo):
		m.undo()
	}

	return nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Commit):
		m.commit()
	case key.Matches(msg, m.keys.Cancel):
		m.viewport.Cancel()
		m.setMessage("edit cancelled")
	case key.Matches(msg, m.keys.Nibble):
		m.viewport.InputNibble(hexValue(msg.String()[0]))
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	}
	return nil
}

func (m *Model) handleGotoKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = ModeNormal
		m.input.Blur()
		m.jump(m.input.Value())
		return nil

	case tea.KeyEsc:
		m.mode = ModeNormal
		m.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// jump moves to a typed offset; a bad target leaves the cursor alone
func (m *Model) jump(text string) {
	base := m.viewport.Config().Base
	off, err := render.ParseOffset(text, base)
	if err == nil {
		err = m.viewport.JumpTo(off)
	}
	if err != nil {
		m.setError(err)
	}
}

func (m *Model) beginEdit() {
	if !m.source.Writable() {
		m.setError(fault.ErrReadOnly)
		return
	}

	offset := m.viewport.Offset()
	window, err := m.source.Read(offset, 1)
	if err != nil {
		m.fail(err)
		return
	}
	if window.Len() == 0 {
		m.setError(fmt.Errorf("edit at %d: %w", offset, fault.ErrOutOfRange))
		return
	}

	if err := m.viewport.BeginEdit(window.Bytes[0]); err != nil {
		m.setError(err)
	}
}

// commit writes the pending byte. A failed write is reported and the
// session continues with the byte unmodified.
func (m *Model) commit() {
	rec, written, err := m.viewport.Commit(m.source)
	if err != nil {
		log.Printf("commit %02X at %d failed: %v", rec.New, rec.Offset, err)
		m.setError(err)
		return
	}
	if !written {
		return
	}

	m.history.Append(rec)
	log.Printf("commit %02X -> %02X at %d", rec.Previous, rec.New, rec.Offset)
	m.setMessage(fmt.Sprintf("wrote %02X at %s", rec.New, m.formatOffset(rec.Offset)))
}

func (m *Model) undo() {
	rec, err := m.history.Undo(m.source)
	if errors.Is(err, history.ErrEmpty) {
		m.setMessage("nothing to undo")
		return
	}
	if err != nil {
		log.Printf("undo at %d failed: %v", rec.Offset, err)
		m.setError(err)
		return
	}

	log.Printf("undo %02X -> %02X at %d", rec.New, rec.Previous, rec.Offset)
	m.viewport.MarkOffset(rec.Offset)
	m.viewport.JumpTo(rec.Offset)
	m.setMessage(fmt.Sprintf("restored %02X at %s", rec.Previous, m.formatOffset(rec.Offset)))
}

func (m *Model) setRowWidth(w int) {
	if err := m.viewport.SetRowWidth(w); err != nil {
		m.setError(err)
		return
	}
	m.setMessage(fmt.Sprintf("%d bytes per row", w))
}

func (m *Model) formatOffset(off int64) string {
	base := m.viewport.Config().Base
	return render.FormatOffset(off, base, base.MinWidth())
}

func (m *Model) setMessage(msg string) {
	m.message = msg
	m.msgIsErr = false
}

func (m *Model) setError(err error) {
	m.message = err.Error()
	m.msgIsErr = true
}

// fail records an unrecoverable fault; the session ends after this message
func (m *Model) fail(err error) {
	log.Printf("fatal: %v", err)
	m.err = err
	m.setError(err)
}

// refresh re-renders the stale rows into the row cache. A base or width
// change, or a scroll, rebuilds every row; otherwise only damaged rows are
// read and formatted again.
func (m *Model) refresh() error {
	vp := m.viewport
	dmg := vp.TakeDamage()
	m.lastRedraw = 0

	if dmg.Full || len(m.rowCache) != vp.Rows() {
		return m.redrawAll()
	}

	w := vp.Config().RowWidth
	for _, screenRow := range dmg.Rows {
		if screenRow >= len(m.rowCache) {
			continue
		}
		offset := vp.Top() + int64(screenRow*w)
		if offset >= m.source.Length() {
			m.rowCache[screenRow] = "~"
			continue
		}

		window, err := m.source.Read(offset, w)
		if err != nil {
			return err
		}
		rows := render.Render(window, vp.Config(), m.source.Modified)
		if len(rows) == 0 {
			m.rowCache[screenRow] = "~"
			continue
		}
		if len(rows[0].Label) != m.labelWidth {
			return m.redrawAll()
		}
		m.rowCache[screenRow] = m.styleRow(rows[0], screenRow)
		m.lastRedraw++
	}
	return nil
}

func (m *Model) redrawAll() error {
	vp := m.viewport
	window, err := m.source.Read(vp.Top(), vp.WindowSize())
	if err != nil {
		return err
	}

	rows := render.Render(window, vp.Config(), m.source.Modified)
	m.rowCache = make([]string, vp.Rows())
	m.labelWidth = 0
	for i := range m.rowCache {
		if i >= len(rows) {
			m.rowCache[i] = "~"
			continue
		}
		m.labelWidth = len(rows[i].Label)
		m.rowCache[i] = m.styleRow(rows[i], i)
	}
	m.lastRedraw = len(m.rowCache)
	return nil
}

func (m *Model) styleRow(row render.Row, screenRow int) string {
	if screenRow != m.viewport.CursorRow() {
		return m.styler.Render(row, -1, "")
	}
	return m.styler.Render(row, m.viewport.CursorCol(), m.viewport.Pending())
}

// View implements tea.Model
func (m *Model) View() string {
	var builder strings.Builder

	builder.WriteString(strings.Join(m.rowCache, "\n"))
	builder.WriteString("\n")
	builder.WriteString(m.statusBar.Width(m.width).Render(m.statusLine()))
	builder.WriteString("\n")

	switch {
	case m.mode == ModeGoto:
		builder.WriteString(":" + m.input.View())
	case m.message != "" && m.msgIsErr:
		builder.WriteString(m.msgStyle.Render(m.message))
	case m.viewport.State() == view.Editing:
		builder.WriteString(m.help.View(editKeyMap{m.keys}))
	default:
		builder.WriteString(m.help.View(m.keys))
	}

	return builder.String()
}

func (m *Model) statusLine() string {
	vp := m.viewport
	base := vp.Config().Base

	dirty := ""
	if m.source.Dirty() {
		dirty = " [+]"
	}
	if !m.source.Writable() {
		dirty = " [RO]"
	}

	position := fmt.Sprintf("%s/%s %s  %.0f%%",
		m.formatOffset(vp.Offset()),
		m.formatOffset(vp.Length()),
		base, vp.PercentThrough())

	info := ""
	if m.message != "" && !m.msgIsErr {
		info = "  " + m.message
	}

	right := fmt.Sprintf("  %s  %s  %s%s%s", m.fileType, position, vp.State(), dirty, info)

	// Give the file name whatever width is left
	nameWidth := m.width - runewidth.StringWidth(right) - 1
	if nameWidth < 8 {
		nameWidth = 8
	}
	return " " + runewidth.Truncate(m.filename, nameWidth, "…") + right
}

// Err returns the fault that ended the session, if any
func (m *Model) Err() error {
	return m.err
}

// Dirty reports whether the file differs from how it was loaded
func (m *Model) Dirty() bool {
	return m.source.Dirty()
}

// Close cleans up resources
func (m *Model) Close() error {
	if m.source == nil {
		return nil
	}
	for _, rec := range m.history.Records() {
		log.Printf("session edit %02X -> %02X at %d", rec.Previous, rec.New, rec.Offset)
	}
	log.Printf("close %s: %d edits kept, dirty=%v", m.source.Path(), m.history.Len(), m.source.Dirty())
	return m.source.Close()
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
