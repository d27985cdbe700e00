// Package textutil holds small string helpers shared by the submission and
// download paths.
package textutil

import "strings"

// fileNameReplacer maps the characters the remote service emits in video
// names that are unsafe in filenames. Each one becomes a dash so the result
// keeps its length.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	":", "-",
	"\\", "-",
	"|", "-",
)

// SanitizeFileName replaces filesystem-unsafe characters in a display name
// with dashes. All other characters, including spaces, are preserved.
func SanitizeFileName(name string) string {
	return fileNameReplacer.Replace(name)
}

// TruncateAtSentence cuts text to at most limit bytes, ending at the last
// sentence boundary (. ! ? or newline) inside the window. When the window
// contains no boundary it hard-cuts at the limit.
func TruncateAtSentence(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}

	window := text[:limit]
	last := -1
	for _, ending := range []string{".", "!", "?", "\n"} {
		if pos := strings.LastIndex(window, ending); pos > last {
			last = pos
		}
	}
	if last == -1 {
		return window
	}
	return window[:last+1]
}
