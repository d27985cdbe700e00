// Package submit walks a queue job through the browser flow and records
// every accepted render in the tracking ledger.
package submit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"heygen-batch/internal/model"
	"heygen-batch/internal/queue"
	"heygen-batch/internal/studio"
	"heygen-batch/internal/textutil"
	"heygen-batch/internal/tracking"
)

// maxScriptChars is the length cap the remote editor enforces. Longer
// scripts are trimmed at a sentence boundary before submission.
const maxScriptChars = 25000

// Studio is the slice of the browser client the submitter drives. Narrowed
// to an interface so tests can run the flow against a fake page.
type Studio interface {
	OpenHome() error
	CreateFolder(name string) error
	SelectAvatar(name string, timeout time.Duration) error
	OpenEditor() error
	InsertScript(text string) error
	SetVideoName(name string) error
	PrepareRender(cfg studio.RenderSettings) error
	OpenGenerateDialog() error
	ApplyGenerateSettings(cfg studio.RenderSettings, folder string) error
	ConfirmSubmit() error
}

type Options struct {
	// HaltOnError stops the whole job at the first failed scene instead of
	// logging and moving on. Used by handoff mode.
	HaltOnError bool

	SceneDelay    time.Duration
	AvatarTimeout time.Duration
}

// SceneError records one scene that could not be submitted. Failed scenes
// never enter the ledger; rerunning the job picks them up again.
type SceneError struct {
	Project string
	Scene   string
	Err     error
}

type Result struct {
	Submitted int
	Failed    []SceneError
}

type Driver struct {
	studio Studio
	store  *tracking.Store
	logger *slog.Logger
	opts   Options

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewDriver(st Studio, store *tracking.Store, logger *slog.Logger, opts Options) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SceneDelay <= 0 {
		opts.SceneDelay = 5 * time.Second
	}
	if opts.AvatarTimeout <= 0 {
		opts.AvatarTimeout = 30 * time.Second
	}
	return &Driver{
		studio: st,
		store:  store,
		logger: logger,
		opts:   opts,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Run submits every scene of job under cfg, recording each accepted render
// in sess and persisting the ledger after every mutation. Scenes are only
// written to the ledger once the app has accepted them, so a crash mid-run
// never leaves phantom jobs behind.
func (d *Driver) Run(ctx context.Context, sess *model.Session, job queue.Job, cfg model.RenderConfig) (Result, error) {
	var res Result
	cfg.AvatarName = job.Avatar
	settings := renderSettings(cfg)

	for _, proj := range job.Projects {
		folder := d.now().Format("01-02-2006 03-04 PM") + " " + proj.Name

		if err := d.openProjectFolder(folder); err != nil {
			res.Failed = append(res.Failed, SceneError{Project: proj.Name, Err: err})
			d.logger.Error("project folder failed", "project", proj.Name, "error", err)
			if d.opts.HaltOnError {
				return res, fmt.Errorf("project %s: %w", proj.Name, err)
			}
			continue
		}

		tracking.AddProject(sess, proj.Name, folder, cfg)
		if err := d.store.Save(*sess); err != nil {
			return res, err
		}
		d.logger.Info("project started", "project", proj.Name, "folder", folder, "scenes", len(proj.Scenes))

		for i, scene := range proj.Scenes {
			videoName, scriptFile, err := d.submitScene(job.Avatar, folder, scene, settings)
			if err != nil {
				res.Failed = append(res.Failed, SceneError{Project: proj.Name, Scene: scene.Folder, Err: err})
				d.logger.Error("scene failed", "project", proj.Name, "scene", scene.Folder, "error", err)
				if d.opts.HaltOnError {
					return res, fmt.Errorf("scene %s: %w", scene.Folder, err)
				}
			} else {
				if _, err := tracking.AddVideo(sess, proj.Name, scene.Folder, scriptFile, videoName); err != nil {
					return res, err
				}
				if err := d.store.Save(*sess); err != nil {
					return res, err
				}
				res.Submitted++
				d.logger.Info("scene submitted", "project", proj.Name, "scene", scene.Folder, "video", videoName)
			}

			if i < len(proj.Scenes)-1 {
				if err := d.sleep(ctx, d.opts.SceneDelay); err != nil {
					return res, err
				}
			}
		}
	}
	return res, nil
}

func (d *Driver) openProjectFolder(folder string) error {
	if err := d.studio.OpenHome(); err != nil {
		return err
	}
	return d.studio.CreateFolder(folder)
}

func (d *Driver) submitScene(avatar, folder string, scene queue.Scene, settings studio.RenderSettings) (videoName, scriptFile string, err error) {
	text, scriptFile, err := sceneScript(scene)
	if err != nil {
		return "", "", err
	}
	videoName = d.now().Format("01/02/2006 03:04 PM") + " " + scene.Folder

	steps := []struct {
		name string
		fn   func() error
	}{
		{"open home", d.studio.OpenHome},
		{"select avatar", func() error { return d.studio.SelectAvatar(avatar, d.opts.AvatarTimeout) }},
		{"open editor", d.studio.OpenEditor},
		{"insert script", func() error { return d.studio.InsertScript(text) }},
		{"set video name", func() error { return d.studio.SetVideoName(videoName) }},
		{"prepare render", func() error { return d.studio.PrepareRender(settings) }},
		{"open generate dialog", d.studio.OpenGenerateDialog},
		{"apply generate settings", func() error { return d.studio.ApplyGenerateSettings(settings, folder) }},
		{"confirm submit", d.studio.ConfirmSubmit},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return "", "", fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return videoName, scriptFile, nil
}

// sceneScript resolves the scene's script text and the file name recorded in
// the ledger, trimming overlong scripts at a sentence boundary.
func sceneScript(scene queue.Scene) (text, scriptFile string, err error) {
	switch {
	case scene.ScriptPath != "":
		raw, err := os.ReadFile(scene.ScriptPath)
		if err != nil {
			return "", "", fmt.Errorf("read script %s: %w", scene.ScriptPath, err)
		}
		text = string(raw)
		scriptFile = filepath.Base(scene.ScriptPath)
	case scene.ScriptText != "":
		text = scene.ScriptText
		scriptFile = scene.ScriptName
	default:
		return "", "", fmt.Errorf("scene %s has no script", scene.Folder)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", fmt.Errorf("script %s is empty", scriptFile)
	}
	return textutil.TruncateAtSentence(text, maxScriptChars), scriptFile, nil
}

func renderSettings(cfg model.RenderConfig) studio.RenderSettings {
	return studio.RenderSettings{
		Quality:   cfg.Quality,
		FPS:       cfg.FPS,
		Subtitles: strings.EqualFold(strings.TrimSpace(cfg.Subtitles), "yes"),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
