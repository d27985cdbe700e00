package tracking

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteBytesReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "ledger.json")

	if err := WriteBytes(path, []byte("first")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := WriteBytes(path, []byte("second")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("content %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".heygen-tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	in := map[string]string{"session_id": "abc"}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Fatal("missing trailing newline")
	}

	var out map[string]string
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if out["session_id"] != "abc" {
		t.Fatalf("round trip: %+v", out)
	}
}

func TestWriteBytesFailsWhenParentIsFile(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	if err := WriteBytes(filepath.Join(blocked, "ledger.json"), []byte("data")); err == nil {
		t.Fatal("expected error for file parent")
	}
}
