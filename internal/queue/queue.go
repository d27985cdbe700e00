// Package queue assembles submission jobs, either from the interactive
// builder or from an external handoff file.
package queue

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNoAvatar     = errors.New("job requires an avatar")
	ErrNoValidScene = errors.New("job requires at least one project with a scripted scene")
)

// Scene is one video to render. A scene carries either a script file path
// (input-tree mode) or inline script text (handoff mode).
type Scene struct {
	Folder     string
	ScriptPath string
	ScriptName string
	ScriptText string
}

func (s Scene) HasScript() bool {
	return s.ScriptPath != "" || s.ScriptText != ""
}

// ProjectScenes is one named project and the scenes selected from it.
type ProjectScenes struct {
	Name   string
	Scenes []Scene
}

// Job pairs one avatar with one or more projects submitted under it.
type Job struct {
	ID       string
	Avatar   string
	Projects []ProjectScenes
}

// NewJob validates and builds one queue entry. Projects without any scripted
// scene are dropped; a job that would end up empty is refused.
func NewJob(avatar string, projects []ProjectScenes) (Job, []string, error) {
	if avatar == "" {
		return Job{}, nil, ErrNoAvatar
	}

	kept := make([]ProjectScenes, 0, len(projects))
	dropped := make([]string, 0)
	for _, p := range projects {
		scenes := make([]Scene, 0, len(p.Scenes))
		for _, sc := range p.Scenes {
			if sc.HasScript() {
				scenes = append(scenes, sc)
			}
		}
		if len(scenes) == 0 {
			dropped = append(dropped, p.Name)
			continue
		}
		kept = append(kept, ProjectScenes{Name: p.Name, Scenes: scenes})
	}
	if len(kept) == 0 {
		return Job{}, dropped, fmt.Errorf("%w", ErrNoValidScene)
	}

	return Job{
		ID:       uuid.NewString(),
		Avatar:   avatar,
		Projects: kept,
	}, dropped, nil
}

// SceneCount returns the number of scenes across the job's projects.
func (j Job) SceneCount() int {
	n := 0
	for _, p := range j.Projects {
		n += len(p.Scenes)
	}
	return n
}
