// Package download watches the browser's download directory, finalizes
// completed files under their video names, and runs the polling loop that
// drains the tracking ledger.
package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WaitForFile blocks until a new completed download appears in dir. A file
// counts once its modification time is no more than a second before since, it
// carries no in-progress suffix, and its size is nonzero and unchanged
// between two polls.
// There is no timeout; large renders can take minutes and the ctx is the only
// way out.
func WaitForFile(ctx context.Context, dir string, since time.Time, poll time.Duration) (string, error) {
	if poll <= 0 {
		poll = 2 * time.Second
	}

	// Filesystem timestamps are coarser than the wall clock and can land
	// slightly before the trigger time; give them a second of slack.
	cutoff := since.Add(-time.Second)

	var lastPath string
	var lastSize int64 = -1
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		path, size := newestDownload(dir, cutoff)
		if path != "" && size > 0 && path == lastPath && size == lastSize {
			return path, nil
		}
		lastPath, lastSize = path, size

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("wait for download in %s: %w", dir, ctx.Err())
		case <-ticker.C:
		}
	}
}

// newestDownload returns the most recently modified completed file in dir
// newer than since, or "" when none qualifies.
func newestDownload(dir string, since time.Time) (string, int64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0
	}

	var bestPath string
	var bestSize int64
	var bestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || inProgress(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(since) {
			continue
		}
		if bestPath == "" || info.ModTime().After(bestMod) {
			bestPath = filepath.Join(dir, entry.Name())
			bestSize = info.Size()
			bestMod = info.ModTime()
		}
	}
	return bestPath, bestSize
}

// inProgress reports whether name is a partial download the browser has not
// finished writing yet.
func inProgress(name string) bool {
	return strings.HasSuffix(name, ".crdownload") || strings.HasSuffix(name, ".tmp")
}
