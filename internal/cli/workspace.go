package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"heygen-batch/internal/config"
	"heygen-batch/internal/model"
	"heygen-batch/internal/studio"
	"heygen-batch/internal/tracking"
)

// workspace bundles the pieces every batch command needs: loaded settings,
// the tracking store, and a logger. The ledger lock is held for the
// workspace's lifetime so two invocations cannot interleave writes.
type workspace struct {
	settings config.Settings
	logger   *slog.Logger
	store    *tracking.Store
	lock     *tracking.Lock
}

func openWorkspace(settingsPath string, verbose bool) (*workspace, error) {
	settings, err := config.Load(settingsPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger(verbose)

	// The lock file lives next to the ledger; make sure the directory exists
	// before the first run ever writes anything.
	if err := tracking.Mkdir(filepath.Dir(settings.TrackingPath)); err != nil {
		return nil, err
	}
	lock, err := tracking.AcquireLock(settings.TrackingPath)
	if err != nil {
		return nil, err
	}

	return &workspace{
		settings: settings,
		logger:   logger,
		store:    tracking.NewStore(settings.TrackingPath, logger),
		lock:     lock,
	}, nil
}

func (w *workspace) close() {
	if w.lock != nil {
		w.lock.Release()
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// launchStudio starts the browser session with the workspace settings.
// Downloads land in the output directory, where the poll loop finalizes them.
func (w *workspace) launchStudio(ctx context.Context) (*studio.Client, error) {
	if err := os.MkdirAll(w.settings.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", w.settings.OutputDir, err)
	}
	return studio.Launch(ctx, studio.Options{
		ProfileDir:  w.settings.ProfileDir,
		DownloadDir: w.settings.OutputDir,
		BaseURL:     w.settings.BaseURL,
		Headless:    w.settings.Headless,
	}, w.logger)
}

// resolveSession picks the tracking session for a submit run. An existing
// session with work in it is resumed (new projects append) unless the user
// asks for a fresh one; fresh/resume flags skip the prompt.
func (w *workspace) resolveSession(fresh, resume bool) (model.Session, error) {
	existing, ok := w.store.Load()
	if !ok || existing.TotalVideos() == 0 {
		return w.store.NewSession(), nil
	}
	if fresh {
		return w.store.NewSession(), nil
	}
	if resume {
		return existing, nil
	}

	keep, err := promptConfirm(
		fmt.Sprintf("Found a tracking session from %s with %d videos (%d pending). Resume it?",
			existing.SessionStart, existing.TotalVideos(), existing.PendingCount()),
		true)
	if err != nil {
		return model.Session{}, err
	}
	if keep {
		return existing, nil
	}
	return w.store.NewSession(), nil
}
