// Package config loads the workspace settings file and the avatar list.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_settings.toml
var sampleSettings string

const DefaultSettingsPath = "config/settings.toml"

const (
	DefaultPollIntervalSeconds        = 90
	DefaultDownloadSettleSeconds      = 2
	DefaultSubmitDelaySeconds         = 5
	DefaultAvatarSearchTimeoutSeconds = 30
	DefaultBaseURL                    = "https://www.heygen.com/"
)

// Settings is the explicit configuration value handed to the tracking store,
// submission driver, and poll loop at construction time.
type Settings struct {
	ProfileDir                 string `toml:"profile_dir"`
	InputDir                   string `toml:"input_dir"`
	OutputDir                  string `toml:"output_dir"`
	TrackingPath               string `toml:"tracking_path"`
	AvatarConfigPath           string `toml:"avatar_config_path"`
	BaseURL                    string `toml:"base_url"`
	Headless                   bool   `toml:"headless"`
	PollIntervalSeconds        int    `toml:"poll_interval_seconds"`
	DownloadSettleSeconds      int    `toml:"download_settle_seconds"`
	SubmitDelaySeconds         int    `toml:"submit_delay_seconds"`
	AvatarSearchTimeoutSeconds int    `toml:"avatar_search_timeout_seconds"`
}

func DefaultSettings() Settings {
	return Settings{
		ProfileDir:                 "chrome_profile",
		InputDir:                   "inputFiles",
		OutputDir:                  "outputFiles",
		TrackingPath:               "tracking.json",
		AvatarConfigPath:           "config/config.txt",
		BaseURL:                    DefaultBaseURL,
		Headless:                   false,
		PollIntervalSeconds:        DefaultPollIntervalSeconds,
		DownloadSettleSeconds:      DefaultDownloadSettleSeconds,
		SubmitDelaySeconds:         DefaultSubmitDelaySeconds,
		AvatarSearchTimeoutSeconds: DefaultAvatarSearchTimeoutSeconds,
	}
}

// Load reads settings from path. A missing file yields the defaults; a
// malformed file is an error the caller should surface.
func Load(path string) (Settings, error) {
	path = normalizePath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	s := DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return normalize(s), nil
}

// Ensure writes the commented sample settings file when none exists yet and
// reports whether it created one.
func Ensure(path string) (bool, error) {
	path = normalizePath(path)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat settings %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create settings directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(sampleSettings), 0o644); err != nil {
		return false, fmt.Errorf("write sample settings %s: %w", path, err)
	}
	return true, nil
}

func normalize(s Settings) Settings {
	d := DefaultSettings()
	if strings.TrimSpace(s.ProfileDir) == "" {
		s.ProfileDir = d.ProfileDir
	}
	if strings.TrimSpace(s.InputDir) == "" {
		s.InputDir = d.InputDir
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		s.OutputDir = d.OutputDir
	}
	if strings.TrimSpace(s.TrackingPath) == "" {
		s.TrackingPath = d.TrackingPath
	}
	if strings.TrimSpace(s.AvatarConfigPath) == "" {
		s.AvatarConfigPath = d.AvatarConfigPath
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		s.BaseURL = d.BaseURL
	}
	if s.PollIntervalSeconds <= 0 {
		s.PollIntervalSeconds = d.PollIntervalSeconds
	}
	if s.DownloadSettleSeconds <= 0 {
		s.DownloadSettleSeconds = d.DownloadSettleSeconds
	}
	if s.SubmitDelaySeconds < 0 {
		s.SubmitDelaySeconds = d.SubmitDelaySeconds
	}
	if s.AvatarSearchTimeoutSeconds <= 0 {
		s.AvatarSearchTimeoutSeconds = d.AvatarSearchTimeoutSeconds
	}
	return s
}

func normalizePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return DefaultSettingsPath
	}
	return p
}

func (s Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

func (s Settings) DownloadSettle() time.Duration {
	return time.Duration(s.DownloadSettleSeconds) * time.Second
}

func (s Settings) SubmitDelay() time.Duration {
	return time.Duration(s.SubmitDelaySeconds) * time.Second
}

func (s Settings) AvatarSearchTimeout() time.Duration {
	return time.Duration(s.AvatarSearchTimeoutSeconds) * time.Second
}
