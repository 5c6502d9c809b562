// Package inventory ranks vehicles against free-text queries.
package inventory

import (
	"fmt"
	"strings"

	"github.com/marcus/kadilac/internal/models"
	"github.com/sahilm/fuzzy"
)

// Match is a vehicle with its fuzzy score
type Match struct {
	Vehicle models.Vehicle
	Score   int
}

// SearchText is the text a vehicle is matched on
func SearchText(v models.Vehicle) string {
	parts := []string{v.Make, v.Model}
	if v.Year > 0 {
		parts = append(parts, fmt.Sprint(v.Year))
	}
	if v.Plate != "" {
		parts = append(parts, v.Plate)
	}
	if v.Color != "" {
		parts = append(parts, v.Color)
	}
	return strings.Join(parts, " ")
}

type vehicleSource []models.Vehicle

func (s vehicleSource) String(i int) string { return SearchText(s[i]) }
func (s vehicleSource) Len() int            { return len(s) }

// Search returns vehicles matching query, best first. An empty query
// returns every vehicle in input order. limit <= 0 means no limit.
func Search(vehicles []models.Vehicle, query string, limit int) []Match {
	query = strings.TrimSpace(query)
	var out []Match
	if query == "" {
		for _, v := range vehicles {
			out = append(out, Match{Vehicle: v})
		}
	} else {
		for _, m := range fuzzy.FindFrom(query, vehicleSource(vehicles)) {
			out = append(out, Match{Vehicle: vehicles[m.Index], Score: m.Score})
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
