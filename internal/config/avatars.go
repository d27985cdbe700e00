package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const avatarsKey = "available_avatars:"

const sampleAvatarConfig = `# Avatar names exactly as they appear in the app, comma separated.
# Example: available_avatars: Abigail, Daniel, Marcus
available_avatars:
`

// EnsureAvatarConfig writes the commented sample avatar config when none
// exists yet and reports whether it created one.
func EnsureAvatarConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat avatar config %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create avatar config directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(sampleAvatarConfig), 0o644); err != nil {
		return false, fmt.Errorf("write sample avatar config %s: %w", path, err)
	}
	return true, nil
}

// LoadAvatars parses the avatar config file: a line of the form
// `available_avatars: Name1, Name2`. Entries are trimmed and empties
// dropped. A missing file yields an empty list with a logged warning, not an
// error.
func LoadAvatars(path string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("avatar config not found", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("read avatar config %s: %w", path, err)
	}
	return ParseAvatars(string(data)), nil
}

// ParseAvatars extracts the avatar names from the config file content.
// Comment lines are skipped; when several lines carry the key, the last one
// wins, so an uncommented line always overrides the sample's example.
func ParseAvatars(content string) []string {
	var avatars []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		idx := strings.Index(line, avatarsKey)
		if idx < 0 {
			continue
		}
		parts := strings.Split(line[idx+len(avatarsKey):], ",")
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			if name := strings.TrimSpace(p); name != "" {
				names = append(names, name)
			}
		}
		avatars = names
	}
	if len(avatars) == 0 {
		return nil
	}
	return avatars
}
