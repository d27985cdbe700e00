package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanInput walks the input tree: first-level directories are projects,
// second-level directories are scenes, and a scene's script is its first
// .txt/.text file. Scenes without a script are returned with an empty
// ScriptPath so callers can report them before NewJob drops them.
func ScanInput(inputDir string) ([]ProjectScenes, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input directory %s: %w", inputDir, err)
	}

	projects := make([]ProjectScenes, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		scenes, err := scanScenes(filepath.Join(inputDir, e.Name()))
		if err != nil {
			return nil, err
		}
		projects = append(projects, ProjectScenes{Name: e.Name(), Scenes: scenes})
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no project folders found in %s", inputDir)
	}
	return projects, nil
}

func scanScenes(projectDir string) ([]Scene, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("read project directory %s: %w", projectDir, err)
	}

	scenes := make([]Scene, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sc := Scene{Folder: e.Name()}
		if path, name := findScript(filepath.Join(projectDir, e.Name())); path != "" {
			sc.ScriptPath = path
			sc.ScriptName = name
		}
		scenes = append(scenes, sc)
	}
	return scenes, nil
}

// findScript picks the first .txt or .text file in the scene directory, in
// name order, and returns its path plus its base name without extension.
func findScript(sceneDir string) (string, string) {
	entries, err := os.ReadDir(sceneDir)
	if err != nil {
		return "", ""
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".txt" || ext == ".text" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", ""
	}
	sort.Strings(names)
	name := names[0]
	return filepath.Join(sceneDir, name), strings.TrimSuffix(name, filepath.Ext(name))
}
