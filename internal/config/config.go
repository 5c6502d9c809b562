package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/marcus/kadilac/internal/models"
)

const configFile = "config.json"

// Defaults applied by Resolve when the config leaves a field empty.
const (
	DefaultFipeURL        = "https://parallelum.com.br/fipe/api/v1"
	DefaultCacheTTL       = 24 * time.Hour
	DefaultRequestTimeout = 15 * time.Second
)

// HomeDir returns the kadilac state directory.
// Priority: KADILAC_HOME env > ~/.kadilac
func HomeDir() (string, error) {
	if v := os.Getenv("KADILAC_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".kadilac"), nil
}

// Load reads the config from disk
func Load(dir string) (*models.Config, error) {
	configPath := filepath.Join(dir, configFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.Config{}, nil
		}
		return nil, err
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk
func Save(dir string, cfg *models.Config) error {
	configPath := filepath.Join(dir, configFile)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// The token lives here, keep it private to the user
	return os.WriteFile(configPath, data, 0600)
}

// Settings is the effective configuration after env overrides and defaults.
type Settings struct {
	BackendURL     string
	Token          string
	TenantID       string
	FipeURL        string
	CacheTTL       time.Duration
	SellerName     string
	RequestTimeout time.Duration
}

// Resolve merges the file config with the environment.
// Priority: KADILAC_* env > config file > defaults.
func Resolve(cfg *models.Config) (Settings, error) {
	if cfg == nil {
		cfg = &models.Config{}
	}
	s := Settings{
		BackendURL:     envOr("KADILAC_BACKEND_URL", cfg.BackendURL),
		Token:          envOr("KADILAC_TOKEN", cfg.Token),
		TenantID:       envOr("KADILAC_TENANT", cfg.TenantID),
		FipeURL:        envOr("KADILAC_FIPE_URL", cfg.FipeURL),
		SellerName:     cfg.SellerName,
		CacheTTL:       DefaultCacheTTL,
		RequestTimeout: DefaultRequestTimeout,
	}
	if s.FipeURL == "" {
		s.FipeURL = DefaultFipeURL
	}
	if cfg.CacheTTL != "" {
		d, err := time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			return Settings{}, fmt.Errorf("cache_ttl: %w", err)
		}
		s.CacheTTL = d
	}
	if cfg.RequestTimeout != "" {
		d, err := time.ParseDuration(cfg.RequestTimeout)
		if err != nil {
			return Settings{}, fmt.Errorf("request_timeout: %w", err)
		}
		if d <= 0 {
			return Settings{}, fmt.Errorf("request_timeout must be positive, got %s", d)
		}
		s.RequestTimeout = d
	}
	return s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// field maps a config key to its storage in models.Config
type field struct {
	get      func(*models.Config) string
	set      func(*models.Config, string)
	validate func(string) error
}

func durationValue(v string) error {
	if v == "" {
		return nil
	}
	_, err := time.ParseDuration(v)
	return err
}

var fields = map[string]field{
	"backend_url": {
		get: func(c *models.Config) string { return c.BackendURL },
		set: func(c *models.Config, v string) { c.BackendURL = v },
	},
	"token": {
		get: func(c *models.Config) string { return c.Token },
		set: func(c *models.Config, v string) { c.Token = v },
	},
	"tenant_id": {
		get: func(c *models.Config) string { return c.TenantID },
		set: func(c *models.Config, v string) { c.TenantID = v },
	},
	"fipe_url": {
		get: func(c *models.Config) string { return c.FipeURL },
		set: func(c *models.Config, v string) { c.FipeURL = v },
	},
	"cache_ttl": {
		get:      func(c *models.Config) string { return c.CacheTTL },
		set:      func(c *models.Config, v string) { c.CacheTTL = v },
		validate: durationValue,
	},
	"seller_name": {
		get: func(c *models.Config) string { return c.SellerName },
		set: func(c *models.Config, v string) { c.SellerName = v },
	},
	"request_timeout": {
		get:      func(c *models.Config) string { return c.RequestTimeout },
		set:      func(c *models.Config, v string) { c.RequestTimeout = v },
		validate: durationValue,
	},
}

// Keys returns the settable config keys, sorted
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the stored value of key
func Get(dir, key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	cfg, err := Load(dir)
	if err != nil {
		return "", err
	}
	return f.get(cfg), nil
}

// Set stores value under key
func Set(dir, key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if f.validate != nil {
		if err := f.validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	cfg, err := Load(dir)
	if err != nil {
		return err
	}
	f.set(cfg, value)
	return Save(dir, cfg)
}
