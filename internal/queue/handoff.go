package queue

import (
	"fmt"
	"strings"

	"heygen-batch/internal/model"
	"heygen-batch/internal/textutil"
	"heygen-batch/internal/tracking"
)

// Handoff is the result of loading an externally built queue file: one
// single-project job plus the render configuration it was built with.
type Handoff struct {
	Job         Job
	ProjectName string
	Config      model.RenderConfig
}

type handoffFile struct {
	ProjectName string `json:"project_name"`
	Avatar      string `json:"avatar"`
	Config      struct {
		Quality   string `json:"quality"`
		FPS       string `json:"fps"`
		Subtitles string `json:"subtitles"`
	} `json:"config"`
	Items []struct {
		Title  string `json:"title"`
		Script string `json:"script"`
	} `json:"items"`
}

// LoadHandoff reads a queue file produced outside the interactive builder.
// Items with blank scripts are dropped; blank titles are numbered. An empty
// avatar or a queue with no usable item is an error.
func LoadHandoff(path string) (Handoff, error) {
	var raw handoffFile
	if err := tracking.ReadJSON(path, &raw); err != nil {
		return Handoff{}, fmt.Errorf("load queue handoff: %w", err)
	}

	avatar := strings.TrimSpace(raw.Avatar)
	if avatar == "" {
		return Handoff{}, fmt.Errorf("queue handoff %s: avatar is required", path)
	}

	projectName := strings.TrimSpace(raw.ProjectName)
	if projectName == "" {
		projectName = "Pasted Scripts"
	}

	scenes := make([]Scene, 0, len(raw.Items))
	for i, item := range raw.Items {
		script := strings.TrimSpace(item.Script)
		if script == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = fmt.Sprintf("Untitled %d", i+1)
		}
		scriptName := textutil.SanitizeFileName(title)
		if strings.TrimSpace(scriptName) == "" {
			scriptName = fmt.Sprintf("pasted_%d", i+1)
		}
		scenes = append(scenes, Scene{
			Folder:     title,
			ScriptName: scriptName,
			ScriptText: script,
		})
	}
	if len(scenes) == 0 {
		return Handoff{}, fmt.Errorf("queue handoff %s: no items with script text", path)
	}

	job, _, err := NewJob(avatar, []ProjectScenes{{Name: projectName, Scenes: scenes}})
	if err != nil {
		return Handoff{}, fmt.Errorf("queue handoff %s: %w", path, err)
	}

	cfg := model.RenderConfig{
		Quality:    defaultString(raw.Config.Quality, "720p"),
		FPS:        defaultString(raw.Config.FPS, "25"),
		Subtitles:  defaultString(raw.Config.Subtitles, "yes"),
		AvatarName: avatar,
	}
	return Handoff{Job: job, ProjectName: projectName, Config: cfg}, nil
}

func defaultString(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}
