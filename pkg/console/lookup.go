package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/kadilac/internal/cascade"
	"github.com/marcus/kadilac/internal/models"
	"github.com/marcus/kadilac/pkg/console/selector"
	"github.com/marcus/kadilac/pkg/console/theme"
)

// fetchedMsg carries a finished cascade fetch back to the event loop
type fetchedMsg struct {
	resp cascade.Response
}

// ClearStatusMsg clears the status line
type ClearStatusMsg struct{}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// focusConfirm is the focus index of the "use this value" button
const focusConfirm = int(models.LevelCount)

// headerHeight is the number of lines above the first field
const headerHeight = 2

type lookupKeys struct {
	Next    key.Binding
	Prev    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

var defaultLookupKeys = lookupKeys{
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "use this value")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// LookupModel is the interactive FIPE valuation lookup: four dependent
// selectors driven by a cascade.State.
type LookupModel struct {
	ctx   context.Context
	src   cascade.Source
	state cascade.State

	fields  [models.LevelCount]selector.Model
	focus   int
	spinner spinner.Model
	keys    lookupKeys

	Title         string
	StatusMessage string
	StatusIsError bool

	result   *models.ResolvedValuation
	canceled bool
}

// NewLookup returns a lookup with the category list loaded and focused.
// Fetches run against src with ctx.
func NewLookup(ctx context.Context, src cascade.Source) LookupModel {
	m := LookupModel{
		ctx:     ctx,
		src:     src,
		state:   cascade.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		keys:    defaultLookupKeys,
		Title:   "FIPE valuation",
	}
	for l := models.LevelCategory; l < models.LevelCount; l++ {
		m.fields[l] = selector.New(l.String(), "Select "+strings.ToLower(levelTitle(l)))
	}
	m.sync()
	m.fields[0].Focus()
	return m
}

func levelTitle(l models.Level) string {
	switch l {
	case models.LevelCategory:
		return "Category"
	case models.LevelMake:
		return "Make"
	case models.LevelModel:
		return "Model"
	case models.LevelYear:
		return "Year"
	}
	return l.String()
}

// Result returns the confirmed valuation. ok is false when the lookup was
// canceled or never confirmed.
func (m LookupModel) Result() (models.ResolvedValuation, bool) {
	if m.result == nil || m.canceled {
		return models.ResolvedValuation{}, false
	}
	return *m.result, true
}

// Canceled reports whether the user left without confirming
func (m LookupModel) Canceled() bool {
	return m.canceled
}

// State exposes the underlying cascade
func (m LookupModel) State() cascade.State {
	return m.state
}

// Init starts the cursor blink of the focused field
func (m LookupModel) Init() tea.Cmd {
	return textinput.Blink
}

// sync pushes the cascade state into the selectors and returns any
// spinner ticks that need to start.
func (m *LookupModel) sync() tea.Cmd {
	var cmds []tea.Cmd
	for l := models.LevelCategory; l < models.LevelCount; l++ {
		f := &m.fields[l]
		f.SetOptions(m.state.Options(l))
		f.SetSelected(m.state.Selected(l))
		f.SetDisabled(l > models.LevelCategory && m.state.Selected(l-1) == "")
		cmds = append(cmds, f.SetLoading(m.state.Loading(l)))
	}
	return tea.Batch(cmds...)
}

func (m *LookupModel) setFocus(i int) tea.Cmd {
	if i < 0 {
		i = focusConfirm
	}
	if i > focusConfirm {
		i = 0
	}
	if m.focus < focusConfirm {
		m.fields[m.focus].Blur()
	}
	m.focus = i
	if i < focusConfirm {
		return m.fields[i].Focus()
	}
	return nil
}

func (m LookupModel) fetch(req cascade.Request) tea.Cmd {
	ctx, src := m.ctx, m.src
	return func() tea.Msg {
		slog.Debug("fipe fetch", "req", req.String())
		return fetchedMsg{resp: cascade.Do(ctx, src, req)}
	}
}

func (m LookupModel) errorStatus(msg string) (LookupModel, tea.Cmd) {
	m.StatusMessage = msg
	m.StatusIsError = true
	return m, clearStatusAfter(3 * time.Second)
}

func levelOf(id string) (models.Level, bool) {
	for l := models.LevelCategory; l < models.LevelCount; l++ {
		if l.String() == id {
			return l, true
		}
	}
	return 0, false
}

// handleChange applies a selector change to the cascade
func (m LookupModel) handleChange(msg selector.ChangedMsg) (LookupModel, tea.Cmd) {
	l, ok := levelOf(msg.ID)
	if !ok {
		return m, nil
	}
	if msg.Code == "" {
		if err := m.state.Clear(l); err != nil {
			return m.errorStatus(err.Error())
		}
		return m, m.sync()
	}

	req, err := m.state.Select(l, msg.Code)
	if err != nil {
		slog.Warn("cascade select rejected", "level", l.String(), "code", msg.Code, "err", err)
		syncCmd := m.sync()
		var cmd tea.Cmd
		m, cmd = m.errorStatus(err.Error())
		return m, tea.Batch(syncCmd, cmd)
	}
	cmds := []tea.Cmd{m.sync(), m.fetch(req), m.setFocus(int(l) + 1)}
	if req.Kind == cascade.KindValuation {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// handleFetched folds a fetch result into the cascade. Stale results are
// dropped.
func (m LookupModel) handleFetched(msg fetchedMsg) (LookupModel, tea.Cmd) {
	resp := msg.resp
	if !m.state.Apply(resp) {
		slog.Debug("dropped stale fipe response", "req", resp.Request.String())
		return m, nil
	}
	syncCmd := m.sync()
	if resp.Err != nil {
		slog.Warn("fipe fetch failed", "req", resp.Request.String(), "err", resp.Err)
		what := "valuation"
		if resp.Request.Kind == cascade.KindOptions {
			what = strings.ToLower(levelTitle(resp.Request.Level)) + " list"
		}
		var cmd tea.Cmd
		m, cmd = m.errorStatus(fmt.Sprintf("Could not load %s: %v", what, resp.Err))
		return m, tea.Batch(syncCmd, cmd)
	}
	return m, syncCmd
}

// confirm is the explicit "use this value" step
func (m LookupModel) confirm() (LookupModel, tea.Cmd) {
	v, ok := m.state.Confirm()
	if !ok {
		return m.errorStatus("No valuation yet: pick category, make, model and year")
	}
	m.result = &v
	slog.Info("valuation confirmed", "fipe_code", v.FipeCode, "label", v.CanonicalLabel, "value", v.DisplayValue)
	return m, tea.Quit
}

// Update handles messages
func (m LookupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := min(max(msg.Width-2, 20), 60)
		for l := range m.fields {
			m.fields[l].SetWidth(w)
		}
		return m, nil

	case ClearStatusMsg:
		m.StatusMessage = ""
		m.StatusIsError = false
		return m, nil

	case selector.ChangedMsg:
		return m.handleChange(msg)

	case fetchedMsg:
		return m.handleFetched(msg)

	case spinner.TickMsg:
		var cmds []tea.Cmd
		for l := range m.fields {
			var cmd tea.Cmd
			m.fields[l], cmd = m.fields[l].Update(msg)
			cmds = append(cmds, cmd)
		}
		if m.state.ValuationLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m LookupModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.canceled = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		cmd := m.setFocus(m.focus + 1)
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		cmd := m.setFocus(m.focus - 1)
		return m, cmd
	}

	if m.focus == focusConfirm {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.confirm()
		case key.Matches(msg, m.keys.Cancel):
			m.canceled = true
			return m, tea.Quit
		}
		return m, nil
	}

	f := m.fields[m.focus]
	if key.Matches(msg, m.keys.Cancel) && !f.IsOpen() {
		m.canceled = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = f.Update(msg)
	return m, cmd
}

// fieldTop returns the first line of each field block. Each block is a
// title line followed by the selector.
func (m LookupModel) fieldTop() [models.LevelCount]int {
	var tops [models.LevelCount]int
	y := headerHeight
	for l := range m.fields {
		tops[l] = y
		y += 1 + lipgloss.Height(m.fields[l].View())
	}
	return tops
}

func (m LookupModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	tops := m.fieldTop()
	for l := len(m.fields) - 1; l >= 0; l-- {
		row := msg.Y - tops[l] - 1
		if row < 0 {
			continue
		}
		if row >= lipgloss.Height(m.fields[l].View()) {
			break
		}
		var cmds []tea.Cmd
		if m.focus != l {
			cmds = append(cmds, m.setFocus(l))
		}
		var cmd tea.Cmd
		m.fields[l], cmd = m.fields[l].Click(row)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
	// Anywhere else closes the focused list
	if m.focus < focusConfirm && m.fields[m.focus].IsOpen() {
		m.fields[m.focus].Blur()
		cmd := m.fields[m.focus].Focus()
		return m, cmd
	}
	return m, nil
}

// View renders the lookup
func (m LookupModel) View() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(m.Title))
	b.WriteString("\n\n")

	for l := range m.fields {
		b.WriteString(theme.FieldName.Render(levelTitle(models.Level(l))))
		b.WriteString("\n")
		b.WriteString(m.fields[l].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.valuationCard())
	b.WriteString("\n")

	if m.StatusMessage != "" {
		style := theme.InfoText
		if m.StatusIsError {
			style = theme.ErrorText
		}
		b.WriteString(style.Render(m.StatusMessage))
		b.WriteString("\n")
	}
	b.WriteString(theme.Help.Render("tab next field • enter open/choose • esc cancel"))
	return b.String()
}

func (m LookupModel) valuationCard() string {
	if m.state.ValuationLoading() {
		return m.spinner.View() + " " + theme.MutedText.Render("Fetching valuation…")
	}
	v := m.state.Valuation()
	if v == nil {
		return theme.MutedText.Render("Pick a year to see the FIPE value")
	}

	details := []string{"FIPE " + v.FipeCode}
	if v.Fuel != "" {
		details = append(details, v.Fuel)
	}
	if v.ReferenceMonth != "" {
		details = append(details, v.ReferenceMonth)
	}
	button := theme.Button.Render("Use this value")
	if m.focus == focusConfirm {
		button = theme.ButtonFocused.Render("Use this value")
	}
	card := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(v.CanonicalLabel),
		v.DisplayValue,
		theme.MutedText.Render(strings.Join(details, " · ")),
		"",
		button,
	)
	return theme.Card.Render(card)
}
