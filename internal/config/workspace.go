package config

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type DoctorResult struct {
	OK     bool          `json:"ok"`
	Checks []DoctorCheck `json:"checks"`
}

type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type InitWorkspaceResult struct {
	SettingsPath    string       `json:"settings_path"`
	CreatedSettings bool         `json:"created_settings"`
	CreatedAvatars  bool         `json:"created_avatars"`
	DoctorResult    DoctorResult `json:"doctor"`
}

// chromeCandidates are the browser binaries probed in order. CHROME_PATH
// overrides the search.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// Doctor runs the preflight checks for a workspace described by s.
func Doctor(s Settings) (DoctorResult, error) {
	checks := make([]DoctorCheck, 0, 5)

	browserOK, browserMessage := findBrowser()
	checks = append(checks, DoctorCheck{
		Name:    "dependency:chrome",
		OK:      browserOK,
		Message: browserMessage,
	})

	inputOK, inputMessage := ensureWritableDir(s.InputDir)
	checks = append(checks, DoctorCheck{
		Name:    "directory:input",
		OK:      inputOK,
		Message: inputMessage,
	})

	outputOK, outputMessage := ensureWritableDir(s.OutputDir)
	checks = append(checks, DoctorCheck{
		Name:    "directory:output",
		OK:      outputOK,
		Message: outputMessage,
	})

	avatars, err := LoadAvatars(s.AvatarConfigPath, nil)
	avatarCheck := DoctorCheck{Name: "config:avatars", OK: err == nil && len(avatars) > 0}
	switch {
	case err != nil:
		avatarCheck.Message = err.Error()
	case len(avatars) == 0:
		avatarCheck.Message = "no avatars listed; add an available_avatars line to " + s.AvatarConfigPath
	default:
		avatarCheck.Message = pluralAvatars(len(avatars))
	}
	checks = append(checks, avatarCheck)

	profileCheck := DoctorCheck{Name: "browser:profile", OK: true}
	if _, err := os.Stat(s.ProfileDir); err != nil {
		profileCheck.OK = false
		profileCheck.Message = "no logged-in profile; run `heygen-batch profile`"
	} else {
		profileCheck.Message = "profile present at " + s.ProfileDir
	}
	checks = append(checks, profileCheck)

	ok := true
	for _, c := range checks {
		if !c.OK {
			ok = false
			break
		}
	}
	return DoctorResult{OK: ok, Checks: checks}, nil
}

// InitWorkspace creates the settings file, avatar config, and working
// directories, then reports the doctor checks. Existing files are left
// untouched.
func InitWorkspace(settingsPath string) (InitWorkspaceResult, error) {
	settingsPath = normalizePath(settingsPath)
	createdSettings, err := Ensure(settingsPath)
	if err != nil {
		return InitWorkspaceResult{}, err
	}
	s, err := Load(settingsPath)
	if err != nil {
		return InitWorkspaceResult{}, err
	}

	for _, dir := range []string{s.InputDir, s.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return InitWorkspaceResult{}, err
		}
	}
	createdAvatars, err := EnsureAvatarConfig(s.AvatarConfigPath)
	if err != nil {
		return InitWorkspaceResult{}, err
	}

	doc, err := Doctor(s)
	if err != nil {
		return InitWorkspaceResult{}, err
	}
	return InitWorkspaceResult{
		SettingsPath:    settingsPath,
		CreatedSettings: createdSettings,
		CreatedAvatars:  createdAvatars,
		DoctorResult:    doc,
	}, nil
}

func findBrowser() (bool, string) {
	if override := strings.TrimSpace(os.Getenv("CHROME_PATH")); override != "" {
		if _, err := os.Stat(override); err == nil {
			return true, "chrome found at " + override + " (CHROME_PATH)"
		}
		return false, "CHROME_PATH set but not found: " + override
	}
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return true, "chrome found at " + path
		}
	}
	return false, "no chrome/chromium binary on PATH"
}

func ensureWritableDir(path string) (bool, string) {
	if strings.TrimSpace(path) == "" {
		return false, "empty path"
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, err.Error()
	}
	f, err := os.CreateTemp(path, "heygen-batch-check-*.tmp")
	if err != nil {
		return false, err.Error()
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return true, "writable"
}

func pluralAvatars(n int) string {
	if n == 1 {
		return "1 avatar configured"
	}
	return strconv.Itoa(n) + " avatars configured"
}
