package selector

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/kadilac/internal/models"
)

var makes = []models.Option{
	{Code: "1", Label: "Toyota"},
	{Code: "2", Label: "Ford"},
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = m.Update(runes(string(r)))
	}
	return m
}

func focused(opts []models.Option) Model {
	m := New("make", "Make")
	m.SetOptions(opts)
	m.Focus()
	return m
}

func TestFilter(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"", []string{"1", "2"}},
		{"to", []string{"1"}},
		{"TO", []string{"1"}},
		{"o", []string{"1", "2"}},
		{"rd", []string{"2"}},
		{"xyz", nil},
	}
	for _, tt := range tests {
		got := Filter(makes, tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("Filter(%q) = %v, want codes %v", tt.text, got, tt.want)
			continue
		}
		for i, code := range tt.want {
			if got[i].Code != code {
				t.Errorf("Filter(%q)[%d] = %s, want %s", tt.text, i, got[i].Code, code)
			}
		}
	}
}

func TestTypeThenPick(t *testing.T) {
	m := focused(makes)
	m = typeText(t, m, "to")

	if !m.IsOpen() {
		t.Fatal("typing should open the list")
	}
	visible := m.Visible()
	if len(visible) != 1 || visible[0].Label != "Toyota" {
		t.Fatalf("Visible = %v, want only Toyota", visible)
	}
	if m.Text() != "to" {
		t.Errorf("Text while open = %q, want filter text", m.Text())
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.IsOpen() {
		t.Error("list should close after picking")
	}
	if m.Selected() != "1" {
		t.Errorf("Selected = %q, want 1", m.Selected())
	}
	if m.Text() != "Toyota" {
		t.Errorf("Text after pick = %q, want Toyota", m.Text())
	}
	if cmd == nil {
		t.Fatal("expected a ChangedMsg command")
	}
	msg, ok := cmd().(ChangedMsg)
	if !ok {
		t.Fatalf("cmd produced %T, want ChangedMsg", cmd())
	}
	if msg.ID != "make" || msg.Code != "1" {
		t.Errorf("ChangedMsg = %+v", msg)
	}
	if len(m.Visible()) != 2 {
		t.Error("filter text should be cleared after picking")
	}
}

func TestTypingClearsSelection(t *testing.T) {
	m := focused(makes)
	m.SetSelected("2")

	m = typeText(t, m, "x")
	if m.Selected() != "" {
		t.Errorf("Selected = %q, want cleared after typing", m.Selected())
	}
	if !m.IsOpen() || m.Text() != "x" {
		t.Errorf("open=%v text=%q, want open with filter x", m.IsOpen(), m.Text())
	}
}

func TestArrowNavigation(t *testing.T) {
	m := focused(makes)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if !m.IsOpen() {
		t.Fatal("down should open the list")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected() != "2" {
		t.Errorf("Selected = %q, want 2 (cursor clamps at last option)", m.Selected())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected() != "1" {
		t.Errorf("Selected = %q, want 1", m.Selected())
	}
}

func TestEscapeAndBlurKeepSelection(t *testing.T) {
	m := focused(makes)
	m.SetSelected("1")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.IsOpen() {
		t.Fatal("enter should open the list")
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.IsOpen() || cmd != nil {
		t.Errorf("esc: open=%v cmd=%v", m.IsOpen(), cmd != nil)
	}
	if m.Selected() != "1" || m.Text() != "Toyota" {
		t.Errorf("selection changed by esc: %q %q", m.Selected(), m.Text())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Blur()
	if m.IsOpen() || m.Selected() != "1" {
		t.Errorf("blur: open=%v selected=%q", m.IsOpen(), m.Selected())
	}

	// Unfocused selectors ignore keys
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.IsOpen() {
		t.Error("unfocused selector opened")
	}
}

func TestLoadingAndDisabledSuppressOpening(t *testing.T) {
	m := focused(makes)
	if cmd := m.SetLoading(true); cmd == nil {
		t.Error("SetLoading(true) should start the spinner")
	}
	if cmd := m.SetLoading(true); cmd != nil {
		t.Error("SetLoading(true) twice should not start a second spinner")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "to")
	if m.IsOpen() {
		t.Error("loading selector opened")
	}
	if !strings.Contains(m.View(), "Loading") {
		t.Errorf("View while loading = %q", m.View())
	}

	m.SetLoading(false)
	m.SetDisabled(true)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.IsOpen() {
		t.Error("disabled selector opened")
	}

	m.SetDisabled(false)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if !m.IsOpen() {
		t.Error("re-enabled selector should open")
	}

	m.SetLoading(true)
	if m.IsOpen() {
		t.Error("starting to load should close the list")
	}
}

func TestView(t *testing.T) {
	m := New("model", "Model")
	if !strings.Contains(m.View(), "Model") {
		t.Errorf("placeholder missing from %q", m.View())
	}

	m.SetOptions(makes)
	m.SetSelected("2")
	if !strings.Contains(m.View(), "Ford") {
		t.Errorf("label missing from %q", m.View())
	}
}

func TestViewScrollIndicators(t *testing.T) {
	var opts []models.Option
	for i := 0; i < 10; i++ {
		opts = append(opts, models.Option{Code: fmt.Sprint(i), Label: fmt.Sprintf("Option %d", i)})
	}
	m := focused(opts)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	view := m.View()
	if !strings.Contains(view, "more below") || strings.Contains(view, "more above") {
		t.Errorf("top of list indicators wrong:\n%s", view)
	}

	for i := 0; i < 9; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	view = m.View()
	if !strings.Contains(view, "more above") || strings.Contains(view, "more below") {
		t.Errorf("bottom of list indicators wrong:\n%s", view)
	}
	if !strings.Contains(view, "Option 9") {
		t.Errorf("cursor option not visible:\n%s", view)
	}
}

func TestClick(t *testing.T) {
	m := focused(makes)

	m, _ = m.Click(1)
	if !m.IsOpen() {
		t.Fatal("clicking the field should open the list")
	}
	m, cmd := m.Click(fieldHeight + 1)
	if m.IsOpen() || m.Selected() != "2" {
		t.Errorf("click on second row: open=%v selected=%q", m.IsOpen(), m.Selected())
	}
	if cmd == nil {
		t.Fatal("expected a ChangedMsg command")
	}
	if msg := cmd().(ChangedMsg); msg.Code != "2" {
		t.Errorf("ChangedMsg = %+v", msg)
	}

	m, _ = m.Click(0)
	m, cmd = m.Click(fieldHeight + 5)
	if cmd != nil || !m.IsOpen() {
		t.Error("click below the last option should do nothing")
	}

	m.SetLoading(true)
	m, _ = m.Click(0)
	if m.IsOpen() {
		t.Error("loading selector opened on click")
	}
}
