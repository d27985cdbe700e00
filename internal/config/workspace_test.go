package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeWorkspaceSettings(t *testing.T, root string) string {
	t.Helper()
	path := filepath.Join(root, "settings.toml")
	content := fmt.Sprintf(
		"profile_dir = %q\ninput_dir = %q\noutput_dir = %q\ntracking_path = %q\navatar_config_path = %q\n",
		filepath.Join(root, "profile"),
		filepath.Join(root, "in"),
		filepath.Join(root, "out"),
		filepath.Join(root, "tracking.json"),
		filepath.Join(root, "config.txt"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestInitWorkspaceCreatesLayout(t *testing.T) {
	root := t.TempDir()
	path := writeWorkspaceSettings(t, root)

	res, err := InitWorkspace(path)
	if err != nil {
		t.Fatalf("InitWorkspace: %v", err)
	}
	if res.CreatedSettings {
		t.Fatal("existing settings reported as created")
	}
	if !res.CreatedAvatars {
		t.Fatal("avatar config not created")
	}
	for _, dir := range []string{filepath.Join(root, "in"), filepath.Join(root, "out")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("directory %s missing", dir)
		}
	}

	// Idempotent: second run creates nothing.
	again, err := InitWorkspace(path)
	if err != nil {
		t.Fatalf("InitWorkspace again: %v", err)
	}
	if again.CreatedSettings || again.CreatedAvatars {
		t.Fatalf("second init recreated files: %+v", again)
	}
}

func TestDoctorFlagsMissingProfileAndAvatars(t *testing.T) {
	root := t.TempDir()
	path := writeWorkspaceSettings(t, root)
	res, err := InitWorkspace(path)
	if err != nil {
		t.Fatalf("InitWorkspace: %v", err)
	}

	checks := map[string]DoctorCheck{}
	for _, c := range res.DoctorResult.Checks {
		checks[c.Name] = c
	}
	if checks["browser:profile"].OK {
		t.Fatal("missing profile passed the check")
	}
	if checks["config:avatars"].OK {
		t.Fatal("empty avatar list passed the check")
	}
	if !checks["directory:input"].OK || !checks["directory:output"].OK {
		t.Fatalf("directory checks failed: %+v", res.DoctorResult.Checks)
	}
	if res.DoctorResult.OK {
		t.Fatal("doctor reported OK with failing checks")
	}
}

func TestDoctorPassesOnCompleteWorkspace(t *testing.T) {
	root := t.TempDir()
	path := writeWorkspaceSettings(t, root)
	if _, err := InitWorkspace(path); err != nil {
		t.Fatalf("InitWorkspace: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "profile"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "config.txt"),
		[]byte("available_avatars: Abigail, Daniel\n"), 0o644); err != nil {
		t.Fatalf("write avatars: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	res, err := Doctor(s)
	if err != nil {
		t.Fatalf("Doctor: %v", err)
	}
	for _, c := range res.Checks {
		if c.Name == "dependency:chrome" {
			continue // depends on the host
		}
		if !c.OK {
			t.Fatalf("check %s failed: %s", c.Name, c.Message)
		}
	}
}
