// Package cascade implements the dependent four-level valuation lookup
// (category, make, model, year) as a pure state value.
//
// Every selection change goes through one reset table, so clearing or
// reselecting a level always empties all deeper levels and drops any
// resolved valuation. Fetches are described as Requests and their results
// come back through Apply, which ignores responses that no longer match the
// request currently outstanding for that level.
package cascade

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/marcus/kadilac/internal/models"
)

// LevelState is the lifecycle of a single cascade level.
type LevelState int

const (
	StateEmpty LevelState = iota
	StateLoading
	StateReady
	StateSelected
)

func (s LevelState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSelected:
		return "selected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Action is a user change applied to a level.
type Action int

const (
	ActionSelect Action = iota
	ActionClear
)

// RequestKind distinguishes option-list fetches from the final valuation fetch.
type RequestKind int

const (
	KindOptions RequestKind = iota
	KindValuation
)

// Path is the selection prefix a request was issued for.
type Path struct {
	Category models.Category
	Make     string
	Model    string
	Year     string
}

// Key renders the path as "category/make/model/year", trimmed at the first gap.
func (p Path) Key() string {
	parts := []string{string(p.Category), p.Make, p.Model, p.Year}
	for i, part := range parts {
		if part == "" {
			parts = parts[:i]
			break
		}
	}
	return strings.Join(parts, "/")
}

// Request describes one fetch the caller must perform.
// Level is the level whose options are loaded, or LevelYear for valuations.
type Request struct {
	Kind  RequestKind
	Level models.Level
	Path  Path
	Seq   uint64
}

func (r Request) String() string {
	if r.Kind == KindValuation {
		return fmt.Sprintf("valuation %s #%d", r.Path.Key(), r.Seq)
	}
	return fmt.Sprintf("%s options %s #%d", r.Level, r.Path.Key(), r.Seq)
}

// Response carries the outcome of a Request back into the state.
type Response struct {
	Request   Request
	Options   []models.Option
	Valuation *models.Valuation
	Err       error
}

var (
	ErrUnknownLevel     = errors.New("unknown cascade level")
	ErrUpstreamPending  = errors.New("upstream level has no selection")
	ErrUnknownOption    = errors.New("option not in loaded list")
	ErrOptionsNotLoaded = errors.New("options not loaded")
)

type transitionKey struct {
	level  models.Level
	action Action
}

// resetTable maps a change at a level to the first level that must be reset.
// Both select and clear invalidate everything below the changed level.
var resetTable = map[transitionKey]models.Level{
	{models.LevelCategory, ActionSelect}: models.LevelMake,
	{models.LevelCategory, ActionClear}:  models.LevelMake,
	{models.LevelMake, ActionSelect}:     models.LevelModel,
	{models.LevelMake, ActionClear}:      models.LevelModel,
	{models.LevelModel, ActionSelect}:    models.LevelYear,
	{models.LevelModel, ActionClear}:     models.LevelYear,
	{models.LevelYear, ActionSelect}:     models.LevelCount,
	{models.LevelYear, ActionClear}:      models.LevelCount,
}

// followUp maps a selected level to the fetch it triggers.
var followUp = map[models.Level]struct {
	kind  RequestKind
	level models.Level
}{
	models.LevelCategory: {KindOptions, models.LevelMake},
	models.LevelMake:     {KindOptions, models.LevelModel},
	models.LevelModel:    {KindOptions, models.LevelYear},
	models.LevelYear:     {KindValuation, models.LevelYear},
}

type level struct {
	selected string
	options  []models.Option
	loaded   bool
	loading  bool
	seq      uint64
}

// State is the full cascade. The zero value is not ready; use New.
type State struct {
	levels       [models.LevelCount]level
	valuation    *models.ResolvedValuation
	valuationSeq uint64
	nextSeq      uint64
}

// New returns a cascade with the static category list loaded.
func New() State {
	var s State
	s.levels[models.LevelCategory] = level{
		options: models.CategoryOptions(),
		loaded:  true,
	}
	return s
}

func validLevel(l models.Level) bool {
	return l >= models.LevelCategory && l < models.LevelCount
}

// Select sets the code at level l, resets every deeper level and returns
// the fetch the selection triggers.
func (s *State) Select(l models.Level, code string) (Request, error) {
	if !validLevel(l) {
		return Request{}, ErrUnknownLevel
	}
	if code == "" {
		return Request{}, fmt.Errorf("select %s: empty code", l)
	}
	if err := s.checkUpstream(l); err != nil {
		return Request{}, err
	}
	lv := &s.levels[l]
	if !lv.loaded {
		return Request{}, fmt.Errorf("select %s: %w", l, ErrOptionsNotLoaded)
	}
	if !slices.ContainsFunc(lv.options, func(o models.Option) bool { return o.Code == code }) {
		return Request{}, fmt.Errorf("select %s %q: %w", l, code, ErrUnknownOption)
	}

	s.resetFrom(resetTable[transitionKey{l, ActionSelect}])
	lv.selected = code

	next := followUp[l]
	s.nextSeq++
	req := Request{Kind: next.kind, Level: next.level, Path: s.Path(), Seq: s.nextSeq}
	if next.kind == KindValuation {
		s.valuationSeq = req.Seq
	} else {
		target := &s.levels[next.level]
		target.loading = true
		target.seq = req.Seq
	}
	return req, nil
}

// Clear removes the selection at level l and resets every deeper level.
func (s *State) Clear(l models.Level) error {
	if !validLevel(l) {
		return ErrUnknownLevel
	}
	s.resetFrom(resetTable[transitionKey{l, ActionClear}])
	s.levels[l].selected = ""
	return nil
}

func (s *State) checkUpstream(l models.Level) error {
	for i := models.LevelCategory; i < l; i++ {
		if s.levels[i].selected == "" {
			return fmt.Errorf("select %s: %s: %w", l, i, ErrUpstreamPending)
		}
	}
	return nil
}

// resetFrom forces levels from..LevelYear back to empty and discards the
// valuation. In-flight requests for those levels become stale because
// their sequence numbers are forgotten.
func (s *State) resetFrom(from models.Level) {
	for i := from; i < models.LevelCount; i++ {
		s.levels[i] = level{}
	}
	s.valuation = nil
	s.valuationSeq = 0
}

// Apply folds a fetch result into the state. It returns false when the
// response is stale and was dropped.
func (s *State) Apply(resp Response) bool {
	req := resp.Request
	if req.Seq == 0 {
		return false
	}
	if req.Kind == KindValuation {
		if req.Seq != s.valuationSeq {
			return false
		}
		s.valuationSeq = 0
		if resp.Err == nil && resp.Valuation != nil {
			v := resp.Valuation.Resolve()
			s.valuation = &v
		}
		return true
	}

	if !validLevel(req.Level) {
		return false
	}
	lv := &s.levels[req.Level]
	if req.Seq != lv.seq || !lv.loading {
		return false
	}
	lv.loading = false
	lv.loaded = true
	lv.seq = 0
	if resp.Err != nil {
		lv.options = nil
		return true
	}
	lv.options = resp.Options
	return true
}

// LevelState reports the lifecycle state of level l.
func (s State) LevelState(l models.Level) LevelState {
	if !validLevel(l) {
		return StateEmpty
	}
	lv := s.levels[l]
	switch {
	case lv.selected != "":
		return StateSelected
	case lv.loading:
		return StateLoading
	case lv.loaded:
		return StateReady
	default:
		return StateEmpty
	}
}

// Selected returns the code chosen at level l, or "".
func (s State) Selected(l models.Level) string {
	if !validLevel(l) {
		return ""
	}
	return s.levels[l].selected
}

// Options returns the loaded options of level l.
func (s State) Options(l models.Level) []models.Option {
	if !validLevel(l) {
		return nil
	}
	return s.levels[l].options
}

// Loading reports whether an option fetch is in flight for level l.
func (s State) Loading(l models.Level) bool {
	return validLevel(l) && s.levels[l].loading
}

// ValuationLoading reports whether the final valuation fetch is in flight.
func (s State) ValuationLoading() bool {
	return s.valuationSeq != 0
}

// Valuation returns the resolved valuation, or nil until the full cascade
// is selected and the valuation fetch succeeded.
func (s State) Valuation() *models.ResolvedValuation {
	return s.valuation
}

// Confirm is the explicit "use this value" step. It never fires on its own.
func (s State) Confirm() (models.ResolvedValuation, bool) {
	if s.valuation == nil {
		return models.ResolvedValuation{}, false
	}
	return *s.valuation, true
}

// Path returns the current selection prefix.
func (s State) Path() Path {
	return Path{
		Category: models.Category(s.levels[models.LevelCategory].selected),
		Make:     s.levels[models.LevelMake].selected,
		Model:    s.levels[models.LevelModel].selected,
		Year:     s.levels[models.LevelYear].selected,
	}
}

// Label returns the label of the selected option at level l.
func (s State) Label(l models.Level) string {
	if !validLevel(l) {
		return ""
	}
	lv := s.levels[l]
	for _, o := range lv.options {
		if o.Code == lv.selected {
			return o.Label
		}
	}
	return ""
}
