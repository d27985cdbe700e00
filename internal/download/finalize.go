package download

import (
	"fmt"
	"os"
	"path/filepath"

	"heygen-batch/internal/textutil"
)

// Finalize renames a completed download to the video's ledger name inside
// outputDir, keeping the downloaded extension (.mp4 when the browser gave it
// none). An existing file under the target name is a stale earlier attempt
// and is replaced.
func Finalize(srcPath, outputDir, videoName string) (string, error) {
	ext := filepath.Ext(srcPath)
	if ext == "" {
		ext = ".mp4"
	}
	target := filepath.Join(outputDir, textutil.SanitizeFileName(videoName)+ext)

	if target == srcPath {
		return target, nil
	}
	if _, err := os.Stat(target); err == nil {
		if err := os.Remove(target); err != nil {
			return "", fmt.Errorf("replace stale file %s: %w", target, err)
		}
	}
	if err := os.Rename(srcPath, target); err != nil {
		return "", fmt.Errorf("finalize download %s: %w", srcPath, err)
	}
	return target, nil
}
