package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/internal/census"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/config"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.Effective
	version   string
	commit    string
	buildDate string

	boundary *auth.Boundary

	srv          *http.Server
	censusCancel context.CancelFunc
}

// New validates the effective config and opens the store. It does not
// start the HTTP server or the census job; call Run to start those and
// block until shutdown.
func New(eff config.Effective, version, commit, buildDate string) (*App, error) {
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	if err := store.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}

	a := &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		boundary:  auth.NewBoundary(eff.Config.Security.TokenSecret),
	}
	return a, nil
}

// Run starts the census scheduler (if enabled) and the HTTP server, and
// blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	cancel, err := census.Start(ctx, a.eff)
	if err != nil {
		return err
	}
	a.censusCancel = cancel

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains the HTTP server, stops the census job, and closes the
// store.
func (a *App) Shutdown(ctx context.Context) error {
	if a.censusCancel != nil {
		a.censusCancel()
	}
	var err error
	if a.srv != nil {
		err = a.srv.Shutdown(ctx)
	}
	if cerr := store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func validateConfig(eff config.Effective) error {
	if eff.Addr == "" {
		return fmt.Errorf("no listen address configured")
	}
	if eff.DBPath == "" {
		return fmt.Errorf("no database path configured")
	}
	if eff.Config == nil || eff.Config.Security.TokenSecret == "" {
		return fmt.Errorf("security.token_secret is required (or set CRUISE_TOKEN_SECRET)")
	}
	return nil
}
