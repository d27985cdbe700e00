package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"heygen-batch/internal/model"
	"heygen-batch/internal/tracking"
)

// fakeBrowser serves ready titles per folder and materializes downloads as
// real files in the watched directory.
type fakeBrowser struct {
	t   *testing.T
	dir string

	ready       map[string][]string
	opened      []string
	failTrigger int
	downloads   int
}

func (f *fakeBrowser) OpenFolder(name string) error {
	f.opened = append(f.opened, name)
	return nil
}

func (f *fakeBrowser) ReadyVideoTitles() ([]string, error) {
	return f.ready[f.opened[len(f.opened)-1]], nil
}

func (f *fakeBrowser) TriggerDownload(title string) error {
	if f.failTrigger > 0 {
		f.failTrigger--
		return errors.New("download menu missing")
	}
	f.downloads++
	path := filepath.Join(f.dir, fmt.Sprintf("render-%d.mp4", f.downloads))
	if err := os.WriteFile(path, []byte("video payload"), 0o644); err != nil {
		f.t.Fatalf("fake download: %v", err)
	}
	return nil
}

func testSession(store *tracking.Store) model.Session {
	sess := store.NewSession()
	cfg := model.RenderConfig{Quality: "720p", FPS: "25", Subtitles: "yes", AvatarName: "Ann"}
	tracking.AddProject(&sess, "Launch", "08-29-2026 03-04 PM Launch", cfg)
	tracking.AddVideo(&sess, "Launch", "scene_01", "intro.txt", "08/29/2026 03:04 PM scene_01")
	tracking.AddVideo(&sess, "Launch", "scene_02", "outro.txt", "08/29/2026 03:04 PM scene_02")
	return sess
}

func testRunner(t *testing.T, fake *fakeBrowser) (*Runner, *tracking.Store) {
	t.Helper()
	store := tracking.NewStore(filepath.Join(t.TempDir(), "ledger.json"), nil)
	r := NewRunner(fake, store, nil, Options{
		DownloadDir:  fake.dir,
		PollInterval: time.Millisecond,
		SettlePoll:   5 * time.Millisecond,
	})
	return r, store
}

func TestRunDownloadsUntilDrained(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeBrowser{t: t, dir: dir, ready: map[string][]string{
		"08-29-2026 03-04 PM Launch": {
			"08/29/2026 03:04 PM scene_01\n0:42",
			"08/29/2026 03:04 PM scene_02\n1:05",
		},
	}}
	r, store := testRunner(t, fake)
	sess := testSession(store)

	if err := r.Run(context.Background(), &sess); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sess.PendingCount() != 0 || sess.DownloadedCount() != 2 {
		t.Fatalf("pending=%d downloaded=%d", sess.PendingCount(), sess.DownloadedCount())
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("ledger not persisted")
	}
	for _, v := range loaded.Projects[0].Videos {
		if v.Status != model.StatusDownloaded {
			t.Fatalf("video %s status %q", v.SceneFolder, v.Status)
		}
		if v.DownloadedAt == "" || v.OutputFile == "" {
			t.Fatalf("video %s missing download fields: %+v", v.SceneFolder, v)
		}
		if _, err := os.Stat(v.OutputFile); err != nil {
			t.Fatalf("output file %s: %v", v.OutputFile, err)
		}
	}
	want := filepath.Join(dir, "08-29-2026 03-04 PM scene_01.mp4")
	if loaded.Projects[0].Videos[0].OutputFile != want {
		t.Fatalf("output = %q, want %q", loaded.Projects[0].Videos[0].OutputFile, want)
	}
}

func TestRunSurvivesLedgerWriteFailure(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeBrowser{t: t, dir: dir, ready: map[string][]string{
		"08-29-2026 03-04 PM Launch": {
			"08/29/2026 03:04 PM scene_01",
			"08/29/2026 03:04 PM scene_02",
		},
	}}

	// The ledger's parent is a regular file, so every Save fails.
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	store := tracking.NewStore(filepath.Join(blocked, "ledger.json"), nil)
	r := NewRunner(fake, store, nil, Options{
		DownloadDir:  dir,
		PollInterval: time.Millisecond,
		SettlePoll:   5 * time.Millisecond,
	})
	sess := testSession(store)

	if err := r.Run(context.Background(), &sess); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sess.PendingCount() != 0 || sess.DownloadedCount() != 2 {
		t.Fatalf("pending=%d downloaded=%d", sess.PendingCount(), sess.DownloadedCount())
	}
	if fake.downloads != 2 {
		t.Fatalf("downloads = %d, files must not be re-fetched", fake.downloads)
	}
}

func TestRunRecordsFailureAndRetries(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeBrowser{t: t, dir: dir, failTrigger: 1, ready: map[string][]string{
		"08-29-2026 03-04 PM Launch": {
			"08/29/2026 03:04 PM scene_01",
			"08/29/2026 03:04 PM scene_02",
		},
	}}
	r, store := testRunner(t, fake)
	sess := testSession(store)

	if err := r.Run(context.Background(), &sess); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// First trigger failed, the cycle retried it, and the loop still drained.
	if sess.DownloadedCount() != 2 {
		t.Fatalf("downloaded = %d", sess.DownloadedCount())
	}
	for _, v := range sess.Projects[0].Videos {
		if v.Status != model.StatusDownloaded {
			t.Fatalf("video %s stuck in %q (%s)", v.SceneFolder, v.Status, v.ErrorMessage)
		}
	}
}

func TestRunSkipsVideosNotReady(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeBrowser{t: t, dir: dir, ready: map[string][]string{
		"08-29-2026 03-04 PM Launch": {"08/29/2026 03:04 PM scene_02"},
	}}
	r, store := testRunner(t, fake)
	sess := testSession(store)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// scene_01 never becomes ready; stop after the loop has had time to
		// download scene_02 and come around again.
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	err := r.Run(ctx, &sess)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run: %v", err)
	}
	if sess.DownloadedCount() != 1 || sess.PendingCount() != 1 {
		t.Fatalf("downloaded=%d pending=%d", sess.DownloadedCount(), sess.PendingCount())
	}
}

func TestRunReturnsWhenNothingPending(t *testing.T) {
	fake := &fakeBrowser{t: t, dir: t.TempDir()}
	r, store := testRunner(t, fake)
	sess := testSession(store)
	for i := range sess.Projects[0].Videos {
		sess.Projects[0].Videos[i].Status = model.StatusDownloaded
	}

	if err := r.Run(context.Background(), &sess); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fake.opened) != 0 {
		t.Fatalf("browser touched with empty queue: %v", fake.opened)
	}
}
