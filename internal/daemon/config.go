// Package daemon holds process configuration and wiring for the cleanmap
// server. Configuration comes from the environment, matching how the
// service has always been deployed (PORT, ADMIN_UIDS, JWT_SECRET).
package daemon

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config is the full daemon configuration.
type Config struct {
	API    APIConfig
	Store  StoreConfig
	Auth   AuthConfig
	Awards AwardsConfig
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host    string `env:"CLEANMAP_HOST" envDefault:"0.0.0.0"`
	Port    int    `env:"PORT" envDefault:"3000"`
	Metrics bool   `env:"CLEANMAP_METRICS" envDefault:"true"`
}

// StoreConfig controls where the document stores live.
type StoreConfig struct {
	DataDir string `env:"CLEANMAP_DATA_DIR" envDefault:"."`

	// LenientLedger makes a corrupt points file load as empty instead of
	// failing every credit. Off by default; losing totals silently is
	// worse than refusing to run.
	LenientLedger bool `env:"CLEANMAP_LENIENT_LEDGER" envDefault:"false"`
}

// AuthConfig controls token verification and the moderator allow-list.
type AuthConfig struct {
	JWTSecret     string   `env:"JWT_SECRET,notEmpty"`
	AdminSubjects []string `env:"ADMIN_UIDS" envSeparator:","`
}

// AwardsConfig points at the optional award-table TOML file. Empty means
// the compiled-in default table.
type AwardsConfig struct {
	TablePath string `env:"CLEANMAP_AWARD_TABLE"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ListenAddr returns the host:port the API server binds.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// MarkersPath returns the marker store's backing file.
func (c Config) MarkersPath() string {
	return filepath.Join(c.Store.DataDir, "markers.json")
}

// LedgerPath returns the points store's backing file.
func (c Config) LedgerPath() string {
	return filepath.Join(c.Store.DataDir, "points.json")
}
