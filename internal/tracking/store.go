// Package tracking owns the persisted job ledger: a JSON snapshot of every
// submitted video and its status, rewritten in full after each mutation so a
// crash loses at most one in-memory update.
package tracking

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"heygen-batch/internal/model"
)

var (
	ErrProjectNotFound = errors.New("project not found in session")
	ErrDuplicateScene  = errors.New("scene id already tracked in session")
)

// Store reads and writes the session ledger at a fixed path. Load failures
// are reported as "absent" and logged, never returned, so a bad ledger can
// not take down a submission in progress.
type Store struct {
	path   string
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string {
	return s.path
}

// NewSession returns a fresh empty session stamped with the current time.
func (s *Store) NewSession() model.Session {
	return model.Session{
		SessionStart: now(),
		Projects:     []model.Project{},
	}
}

// Load returns the persisted session and true, or a zero session and false
// when no usable ledger exists. Missing, unreadable, and malformed files are
// all treated the same way: absent, with a logged warning for the latter two.
func (s *Store) Load() (model.Session, bool) {
	if _, err := os.Stat(s.path); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("tracking ledger unreadable", "path", s.path, "error", err)
		}
		return model.Session{}, false
	}

	var sess model.Session
	if err := ReadJSON(s.path, &sess); err != nil {
		s.logger.Warn("tracking ledger malformed, starting without it", "path", s.path, "error", err)
		return model.Session{}, false
	}
	s.repair(&sess)
	return sess, true
}

// Save serializes the full session. The caller decides whether a failure is
// retried or tolerated; submissions keep going with in-memory state only.
func (s *Store) Save(sess model.Session) error {
	if err := WriteJSON(s.path, sess); err != nil {
		return fmt.Errorf("save tracking ledger: %w", err)
	}
	return nil
}

// repair normalizes fields a hand-edited or partial ledger may carry, rather
// than trusting them downstream: unknown statuses fall back to processing.
func (s *Store) repair(sess *model.Session) {
	if sess.Projects == nil {
		sess.Projects = []model.Project{}
	}
	for pi := range sess.Projects {
		p := &sess.Projects[pi]
		if p.Status == "" {
			p.Status = model.StatusProcessing
		}
		for vi := range p.Videos {
			v := &p.Videos[vi]
			if model.IsKnownStatus(v.Status) && v.Status != "" {
				continue
			}
			s.logger.Warn("repairing unknown video status", "scene", v.SceneFolder, "status", v.Status)
			v.Status = model.StatusProcessing
		}
	}
}

// AddProject appends a new project with an empty video list and returns a
// pointer into the session for immediate further mutation.
func AddProject(sess *model.Session, name, folderName string, cfg model.RenderConfig) *model.Project {
	sess.Projects = append(sess.Projects, model.Project{
		ProjectName:      name,
		HeyGenFolderName: folderName,
		StartedAt:        now(),
		Config:           cfg,
		Videos:           []model.VideoJob{},
		Status:           model.StatusProcessing,
	})
	return &sess.Projects[len(sess.Projects)-1]
}

// AddVideo appends a job to the named project (first exact-name match).
// The scene id must be unique across the whole session because status
// updates look jobs up session-wide.
func AddVideo(sess *model.Session, projectName, sceneFolder, scriptFile, videoName string) (*model.VideoJob, error) {
	if findVideo(sess, sceneFolder) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateScene, sceneFolder)
	}
	for pi := range sess.Projects {
		p := &sess.Projects[pi]
		if p.ProjectName != projectName {
			continue
		}
		p.Videos = append(p.Videos, model.VideoJob{
			SceneFolder: sceneFolder,
			ScriptFile:  scriptFile,
			VideoName:   videoName,
			SubmittedAt: now(),
			Status:      model.StatusProcessing,
		})
		return &p.Videos[len(p.Videos)-1], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectName)
}

// UpdateVideoStatus finds the first job with the given scene id across all
// projects and applies the status change. A miss returns false and changes
// nothing; the poll loop can race a stale in-memory copy, so a miss is
// benign. A transition to downloaded stamps DownloadedAt and OutputFile; an
// error message is recorded whatever the status. Download fields from a
// prior success are never cleared.
func UpdateVideoStatus(sess *model.Session, sceneFolder, status, outputFile, errorMessage string) bool {
	v := findVideo(sess, sceneFolder)
	if v == nil {
		return false
	}
	if err := model.TransitionVideoStatus(v, status); err != nil {
		return false
	}
	if status == model.StatusDownloaded {
		v.DownloadedAt = now()
		v.OutputFile = outputFile
	}
	if errorMessage != "" {
		v.ErrorMessage = errorMessage
	}
	return true
}

func findVideo(sess *model.Session, sceneFolder string) *model.VideoJob {
	for pi := range sess.Projects {
		for vi := range sess.Projects[pi].Videos {
			if sess.Projects[pi].Videos[vi].SceneFolder == sceneFolder {
				return &sess.Projects[pi].Videos[vi]
			}
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
