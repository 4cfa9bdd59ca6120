package daemon

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cleanmap/cleanmap/internal/api"
	"github.com/cleanmap/cleanmap/internal/auth"
	"github.com/cleanmap/cleanmap/internal/award"
	"github.com/cleanmap/cleanmap/internal/ledger"
	"github.com/cleanmap/cleanmap/internal/registry"
	"github.com/cleanmap/cleanmap/internal/resolution"
)

// Run wires the stores, core services and HTTP server, then serves until
// ctx is cancelled. It returns once the listener has drained.
func Run(ctx context.Context, cfg Config) error {
	if err := os.MkdirAll(cfg.Store.DataDir, 0o755); err != nil {
		return err
	}

	table := award.DefaultTable()
	if cfg.Awards.TablePath != "" {
		var err error
		table, err = award.LoadTable(cfg.Awards.TablePath)
		if err != nil {
			return err
		}
		log.Printf("[cleanmap] award table loaded from %s (%d tiers)", cfg.Awards.TablePath, len(table.Tiers))
	}

	markers := registry.New(registry.NewStore(cfg.MarkersPath()))
	points := ledger.New(ledger.NewStore(cfg.LedgerPath(), cfg.Store.LenientLedger))
	verifier := auth.NewVerifier([]byte(cfg.Auth.JWTSecret), cfg.Auth.AdminSubjects)
	resolver := resolution.New(markers, points, table, verifier.IsAdmin)

	server := api.NewServer(markers, points, resolver, verifier)
	if cfg.API.Metrics {
		server.EnableMetrics()
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[cleanmap] listening on %s (markers=%s points=%s admins=%d)",
			cfg.ListenAddr(), cfg.MarkersPath(), cfg.LedgerPath(), len(cfg.Auth.AdminSubjects))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Printf("[cleanmap] shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
