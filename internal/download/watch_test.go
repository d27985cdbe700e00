package download

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForFileIgnoresOldAndPartial(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "previous.mp4")
	if err := os.WriteFile(old, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	since := time.Now()
	if err := os.WriteFile(filepath.Join(dir, "video.mp4.crdownload"), []byte("partial"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(50 * time.Millisecond)
		if err := os.WriteFile(filepath.Join(dir, "video.mp4"), []byte("finished"), 0o644); err != nil {
			t.Errorf("write: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := WaitForFile(ctx, dir, since, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForFile: %v", err)
	}
	if filepath.Base(got) != "video.mp4" {
		t.Fatalf("got %q", got)
	}
	<-done
}

func TestWaitForFileToleratesTimestampLag(t *testing.T) {
	dir := t.TempDir()
	since := time.Now()

	// Coarse filesystem timestamps can land just before the trigger time even
	// for a file written afterwards.
	path := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(path, []byte("finished"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lagged := since.Add(-200 * time.Millisecond)
	if err := os.Chtimes(path, lagged, lagged); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := WaitForFile(ctx, dir, since, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForFile: %v", err)
	}
	if got != path {
		t.Fatalf("got %q, want %q", got, path)
	}
}

func TestWaitForFileWaitsForStableSize(t *testing.T) {
	dir := t.TempDir()
	since := time.Now()
	path := filepath.Join(dir, "grow.mp4")

	// Writes land faster than the poll interval, so every poll during the
	// write phase sees a different size and the watcher must keep waiting.
	var data []byte
	go func() {
		for i := 0; i < 20; i++ {
			data = append(data, "grow"...)
			os.WriteFile(path, data, 0o644)
			time.Sleep(5 * time.Millisecond)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := WaitForFile(ctx, dir, since, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForFile: %v", err)
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 80 {
		t.Fatalf("returned before writes settled: size %d", info.Size())
	}
}

func TestWaitForFileCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	if _, err := WaitForFile(ctx, dir, time.Now(), 10*time.Millisecond); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestFinalize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "render.mp4")
	if err := os.WriteFile(src, []byte("video"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Finalize(src, dir, "08/29/2026 03:04 PM scene_01")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	want := filepath.Join(dir, "08-29-2026 03-04 PM scene_01.mp4")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source still present after rename")
	}
}

func TestFinalizeReplacesStaleTarget(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src := filepath.Join(dir, "download.mp4")
	if err := os.WriteFile(src, []byte("fresh"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Finalize(src, dir, "clip")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "fresh" {
		t.Fatalf("target holds %q", data)
	}
}

func TestFinalizeDefaultsExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "download")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Finalize(src, dir, "named")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if filepath.Ext(got) != ".mp4" {
		t.Fatalf("got %q", got)
	}
}
