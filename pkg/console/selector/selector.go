// Package selector provides a searchable dropdown: a text input that
// filters a caller-supplied option list. It never fetches anything itself.
package selector

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/kadilac/internal/models"
)

// ChangedMsg reports a new selection. Code is empty when the selection
// was cleared because the user started typing.
type ChangedMsg struct {
	ID   string
	Code string
}

// KeyMap defines the selector key bindings
type KeyMap struct {
	Open  key.Binding
	Up    key.Binding
	Down  key.Binding
	Pick  key.Binding
	Close key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open:  key.NewBinding(key.WithKeys("enter", "down"), key.WithHelp("enter", "open")),
		Up:    key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous")),
		Down:  key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next")),
		Pick:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Close: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// Model is a single dropdown
type Model struct {
	ID          string
	Placeholder string
	Keys        KeyMap

	options  []models.Option
	selected string

	input   textinput.Model
	spinner spinner.Model

	open     bool
	focused  bool
	disabled bool
	loading  bool

	cursor     int
	maxVisible int
	width      int
}

// New returns a closed, enabled selector
func New(id, placeholder string) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.Width = 35

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		ID:          id,
		Placeholder: placeholder,
		Keys:        DefaultKeyMap(),
		input:       ti,
		spinner:     sp,
		maxVisible:  6,
		width:       40,
	}
}

// Filter returns the options whose label contains text, ignoring case.
// Empty text matches everything.
func Filter(options []models.Option, text string) []models.Option {
	if text == "" {
		return options
	}
	needle := strings.ToLower(text)
	var out []models.Option
	for _, o := range options {
		if strings.Contains(strings.ToLower(o.Label), needle) {
			out = append(out, o)
		}
	}
	return out
}

// SetOptions replaces the option list. The selection is kept as is; the
// owner decides when it no longer applies.
func (m *Model) SetOptions(opts []models.Option) {
	m.options = opts
	m.clampCursor()
}

// Options returns the full option list
func (m Model) Options() []models.Option {
	return m.options
}

// SetSelected sets the selected code without emitting ChangedMsg
func (m *Model) SetSelected(code string) {
	m.selected = code
}

// Selected returns the selected code, or ""
func (m Model) Selected() string {
	return m.selected
}

// SetDisabled enables or disables the control. A disabled control closes.
func (m *Model) SetDisabled(disabled bool) {
	m.disabled = disabled
	if m.busy() {
		m.close()
	}
}

// SetLoading toggles the loading affordance. It returns the spinner tick
// when loading starts.
func (m *Model) SetLoading(loading bool) tea.Cmd {
	was := m.loading
	m.loading = loading
	if m.busy() {
		m.close()
	}
	if loading && !was {
		return m.spinner.Tick
	}
	return nil
}

// Loading reports whether the loading affordance is shown
func (m Model) Loading() bool {
	return m.loading
}

// SetWidth sets the rendered width
func (m *Model) SetWidth(w int) {
	if w > 8 {
		m.width = w
		m.input.Width = w - 5
	}
}

// Focus focuses the input
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur removes focus. An open list closes without changing the selection,
// the terminal equivalent of clicking outside.
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
	m.close()
}

// Focused reports whether the selector has focus
func (m Model) Focused() bool {
	return m.focused
}

// IsOpen reports whether the option list is showing
func (m Model) IsOpen() bool {
	return m.open
}

// Visible returns the options currently offered in the open list
func (m Model) Visible() []models.Option {
	return Filter(m.options, m.input.Value())
}

// Label returns the label of the selected option, or ""
func (m Model) Label() string {
	for _, o := range m.options {
		if o.Code == m.selected {
			return o.Label
		}
	}
	return ""
}

// Text is what the input shows: the filter text while open, otherwise
// the selected option's label.
func (m Model) Text() string {
	if m.open {
		return m.input.Value()
	}
	return m.Label()
}

func (m Model) busy() bool {
	return m.disabled || m.loading
}

func (m *Model) openList() {
	if m.busy() {
		return
	}
	m.open = true
	m.cursor = 0
}

func (m *Model) close() {
	m.open = false
	m.input.SetValue("")
	m.cursor = 0
}

func (m *Model) clampCursor() {
	n := len(m.Visible())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func (m *Model) changed() tea.Cmd {
	id, code := m.ID, m.selected
	return func() tea.Msg { return ChangedMsg{ID: id, Code: code} }
}

func (m *Model) pick(code string) tea.Cmd {
	m.selected = code
	m.close()
	return m.changed()
}

// fieldHeight is the number of rendered lines above the option list
const fieldHeight = 3

// Click handles a left click on row, counted from the first rendered line
// of View. Clicking the field toggles the list; clicking an option picks it.
func (m Model) Click(row int) (Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	if row < fieldHeight {
		if m.open {
			m.close()
		} else {
			m.openList()
		}
		return m, nil
	}
	if !m.open {
		return m, nil
	}
	items := m.Visible()
	start, count := m.window(len(items))
	line := row - fieldHeight
	if start > 0 {
		line-- // "more above" indicator
	}
	if line < 0 || line >= count {
		return m, nil
	}
	return m, m.pick(items[start+line].Code)
}

// window returns the first visible index and the number of visible rows
// for a list of n options, keeping the cursor in view.
func (m Model) window(n int) (start, count int) {
	count = min(m.maxVisible, n)
	if m.cursor >= count {
		start = m.cursor - count + 1
	}
	start = max(0, min(start, n-count))
	return start, count
}

// Update handles keys while focused and spinner ticks while loading
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.focused || m.busy() {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.open {
		if key.Matches(msg, m.Keys.Open) {
			m.openList()
			return m, nil
		}
		if key.Matches(msg, m.Keys.Close) {
			return m, nil
		}
	} else {
		switch {
		case key.Matches(msg, m.Keys.Close):
			m.close()
			return m, nil
		case key.Matches(msg, m.Keys.Pick):
			visible := m.Visible()
			if m.cursor >= 0 && m.cursor < len(visible) {
				return m, m.pick(visible[m.cursor].Code)
			}
			return m, nil
		case key.Matches(msg, m.Keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.Keys.Down):
			if m.cursor < len(m.Visible())-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	// Typing opens the list and drops the selection at the first keystroke
	if !m.open {
		m.open = true
	}
	m.cursor = 0
	if m.selected != "" {
		m.selected = ""
		return m, tea.Batch(cmd, m.changed())
	}
	return m, cmd
}
