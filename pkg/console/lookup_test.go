package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/kadilac/internal/cascade"
	"github.com/marcus/kadilac/internal/models"
	"github.com/marcus/kadilac/pkg/console/selector"
)

type fakeSource struct {
	modelsErr error
}

func (f *fakeSource) Makes(_ context.Context, cat models.Category) ([]models.Option, error) {
	if cat == models.CategoryMotorcycles {
		return []models.Option{{Code: "77", Label: "Honda"}}, nil
	}
	return []models.Option{{Code: "56", Label: "Toyota"}}, nil
}

func (f *fakeSource) Models(_ context.Context, _ models.Category, _ string) ([]models.Option, error) {
	if f.modelsErr != nil {
		return nil, f.modelsErr
	}
	return []models.Option{{Code: "2001", Label: "Corolla XEi"}}, nil
}

func (f *fakeSource) Years(_ context.Context, _ models.Category, _, _ string) ([]models.Option, error) {
	return []models.Option{{Code: "2020-1", Label: "2020 Flex"}}, nil
}

func (f *fakeSource) Valuation(_ context.Context, _ models.Category, _, _, _ string) (*models.Valuation, error) {
	return &models.Valuation{
		Value:     "R$ 98.500,00",
		Make:      "Toyota",
		Model:     "Corolla XEi",
		ModelYear: 2020,
		FipeCode:  "002163-4",
		Fuel:      "Flex",
	}, nil
}

// collect runs cmd and returns the messages it produces, flattening
// batches. Commands that block (cursor blink, status timers) are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func fetched(msgs []tea.Msg) []fetchedMsg {
	var out []fetchedMsg
	for _, msg := range msgs {
		if f, ok := msg.(fetchedMsg); ok {
			out = append(out, f)
		}
	}
	return out
}

// choose feeds a selection into the lookup and applies the resulting
// fetch.
func choose(t *testing.T, m LookupModel, l models.Level, code string) LookupModel {
	t.Helper()
	next, cmd := m.Update(selector.ChangedMsg{ID: l.String(), Code: code})
	m = next.(LookupModel)
	responses := fetched(collect(cmd))
	if len(responses) != 1 {
		t.Fatalf("select %s=%s issued %d fetches, want 1", l, code, len(responses))
	}
	next, _ = m.Update(responses[0])
	return next.(LookupModel)
}

func TestLookupFullFlow(t *testing.T) {
	m := NewLookup(context.Background(), &fakeSource{})

	m = choose(t, m, models.LevelCategory, "cars")
	if got := m.fields[models.LevelMake].Options(); len(got) != 1 || got[0].Label != "Toyota" {
		t.Fatalf("make options = %v", got)
	}
	m = choose(t, m, models.LevelMake, "56")
	m = choose(t, m, models.LevelModel, "2001")
	m = choose(t, m, models.LevelYear, "2020-1")

	if m.focus != focusConfirm {
		t.Errorf("focus = %d, want confirm button", m.focus)
	}
	if _, ok := m.Result(); ok {
		t.Fatal("valuation handed back before confirmation")
	}
	if !strings.Contains(m.View(), "Toyota Corolla XEi 2020") {
		t.Errorf("valuation card missing:\n%s", m.View())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(LookupModel)
	v, ok := m.Result()
	if !ok {
		t.Fatal("Result not available after confirm")
	}
	if v.DisplayValue != "R$ 98.500,00" || v.CanonicalLabel != "Toyota Corolla XEi 2020" {
		t.Errorf("Result = %+v", v)
	}
	if cmd == nil {
		t.Error("confirm should quit the program")
	}
}

func TestLookupDropsStaleResponses(t *testing.T) {
	m := NewLookup(context.Background(), &fakeSource{})

	next, cmd := m.Update(selector.ChangedMsg{ID: "category", Code: "cars"})
	m = next.(LookupModel)
	first := fetched(collect(cmd))

	next, cmd = m.Update(selector.ChangedMsg{ID: "category", Code: "motorcycles"})
	m = next.(LookupModel)
	second := fetched(collect(cmd))

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("fetches = %d, %d, want 1 each", len(first), len(second))
	}

	// Deliver the newer response first, then the stale one
	next, _ = m.Update(second[0])
	m = next.(LookupModel)
	next, _ = m.Update(first[0])
	m = next.(LookupModel)

	got := m.fields[models.LevelMake].Options()
	if len(got) != 1 || got[0].Label != "Honda" {
		t.Errorf("make options = %v, want motorcycle makes only", got)
	}
	if m.fields[models.LevelMake].Loading() {
		t.Error("make selector still loading")
	}
}

func TestLookupFetchFailureIsFailSoft(t *testing.T) {
	m := NewLookup(context.Background(), &fakeSource{modelsErr: errors.New("upstream 503")})

	m = choose(t, m, models.LevelCategory, "cars")
	m = choose(t, m, models.LevelMake, "56")

	if got := m.state.LevelState(models.LevelModel); got != cascade.StateReady {
		t.Errorf("model level = %s, want ready", got)
	}
	if len(m.fields[models.LevelModel].Options()) != 0 {
		t.Error("failed fetch should leave an empty list")
	}
	if !m.StatusIsError || !strings.Contains(m.StatusMessage, "model list") {
		t.Errorf("status = %q (error=%v)", m.StatusMessage, m.StatusIsError)
	}

	next, _ := m.Update(ClearStatusMsg{})
	if next.(LookupModel).StatusMessage != "" {
		t.Error("ClearStatusMsg did not clear the status")
	}
}

func TestLookupClearResetsDownstream(t *testing.T) {
	m := NewLookup(context.Background(), &fakeSource{})
	m = choose(t, m, models.LevelCategory, "cars")
	m = choose(t, m, models.LevelMake, "56")

	next, _ := m.Update(selector.ChangedMsg{ID: "make", Code: ""})
	m = next.(LookupModel)

	if m.state.Selected(models.LevelMake) != "" {
		t.Error("make still selected after clear")
	}
	if got := m.state.LevelState(models.LevelModel); got != cascade.StateEmpty {
		t.Errorf("model level = %s, want empty", got)
	}
	if len(m.fields[models.LevelModel].Options()) != 0 {
		t.Error("model selector kept stale options")
	}
}

func TestLookupConfirmWithoutValuation(t *testing.T) {
	m := NewLookup(context.Background(), &fakeSource{})
	m.setFocus(focusConfirm)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(LookupModel)
	if _, ok := m.Result(); ok {
		t.Error("Result available without a valuation")
	}
	if !m.StatusIsError {
		t.Error("expected an error status")
	}
}

func TestLookupCancel(t *testing.T) {
	m := NewLookup(context.Background(), &fakeSource{})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(LookupModel)
	if !m.Canceled() || cmd == nil {
		t.Errorf("esc on a closed field: canceled=%v quit=%v", m.Canceled(), cmd != nil)
	}
}

func TestLookupTabCyclesFocus(t *testing.T) {
	m := NewLookup(context.Background(), &fakeSource{})

	for i := 1; i <= focusConfirm; i++ {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(LookupModel)
		if m.focus != i {
			t.Fatalf("focus after %d tabs = %d", i, m.focus)
		}
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(LookupModel)
	if m.focus != 0 || !m.fields[0].Focused() {
		t.Errorf("focus should wrap to the category field, got %d", m.focus)
	}
}
