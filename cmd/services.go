package cmd

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/kadilac/internal/api"
	"github.com/marcus/kadilac/internal/cascade"
	"github.com/marcus/kadilac/internal/config"
	"github.com/marcus/kadilac/internal/db"
	"github.com/marcus/kadilac/internal/fipe"
)

// loadSettings reads config.json and applies env overrides
func loadSettings() (config.Settings, error) {
	cfg, err := config.Load(getHomeDir())
	if err != nil {
		return config.Settings{}, fmt.Errorf("load config: %w", err)
	}
	return config.Resolve(cfg)
}

func newBackend(s config.Settings) (*api.Client, error) {
	return api.NewClient(s.BackendURL, s.RequestTimeout,
		api.WithToken(s.Token),
		api.WithTenant(s.TenantID),
	)
}

// newFipeSource returns the lookup service behind the on-disk cache.
// When the cache cannot be opened lookups go straight upstream.
func newFipeSource(s config.Settings, noCache bool) (cascade.Source, func()) {
	client := fipe.NewClient(s.FipeURL, s.RequestTimeout)
	if noCache {
		return client, func() {}
	}
	store, err := db.Open(getHomeDir())
	if err != nil {
		slog.Warn("lookup cache unavailable", "err", err)
		return client, func() {}
	}
	return fipe.NewCachedSource(client, store, s.CacheTTL), func() {
		if err := store.Close(); err != nil {
			slog.Warn("close lookup cache", "err", err)
		}
	}
}

// runProgram runs an interactive view full screen and returns its final model
func runProgram(m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run interactive view: %w", err)
	}
	return final, nil
}
