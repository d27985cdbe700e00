package download

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"heygen-batch/internal/model"
	"heygen-batch/internal/tracking"
)

// Browser is the slice of the studio client the download loop needs.
type Browser interface {
	OpenFolder(name string) error
	ReadyVideoTitles() ([]string, error)
	TriggerDownload(title string) error
}

type Options struct {
	DownloadDir  string
	PollInterval time.Duration
	SettlePoll   time.Duration
}

// Runner polls the remote folders until every ledger job is downloaded.
type Runner struct {
	browser Browser
	store   *tracking.Store
	logger  *slog.Logger
	opts    Options

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(browser Browser, store *tracking.Store, logger *slog.Logger, opts Options) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 90 * time.Second
	}
	if opts.SettlePoll <= 0 {
		opts.SettlePoll = 2 * time.Second
	}
	return &Runner{
		browser: browser,
		store:   store,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Run drives poll cycles until no job is left in processing state. Per-job
// failures are written back to the ledger and retried next cycle; only
// cancellation aborts the loop. The in-memory session stays authoritative
// even when a ledger write fails, so finished downloads are never redone.
func (r *Runner) Run(ctx context.Context, sess *model.Session) error {
	for {
		pending := sess.PendingCount()
		if pending == 0 {
			r.logger.Info("all videos downloaded", "total", sess.TotalVideos())
			return nil
		}
		r.logger.Info("poll cycle", "pending", pending, "downloaded", sess.DownloadedCount())

		for i := range sess.Projects {
			if err := r.pollProject(ctx, sess, &sess.Projects[i]); err != nil {
				return err
			}
		}

		if sess.PendingCount() == 0 {
			continue
		}
		if err := r.sleep(ctx, r.opts.PollInterval); err != nil {
			return err
		}
	}
}

func (r *Runner) pollProject(ctx context.Context, sess *model.Session, proj *model.Project) error {
	pending := proj.PendingVideos()
	if len(pending) == 0 {
		return nil
	}

	if err := r.browser.OpenFolder(proj.HeyGenFolderName); err != nil {
		r.logger.Warn("open folder failed", "folder", proj.HeyGenFolderName, "error", err)
		return nil
	}
	titles, err := r.browser.ReadyVideoTitles()
	if err != nil {
		r.logger.Warn("list videos failed", "folder", proj.HeyGenFolderName, "error", err)
		return nil
	}

	for _, video := range pending {
		title, ok := matchTitle(titles, video.VideoName)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.downloadOne(ctx, sess, video, title); err != nil {
			return err
		}
	}

	if len(proj.Videos) > 0 && len(proj.PendingVideos()) == 0 && proj.Status != model.StatusDownloaded {
		proj.Status = model.StatusDownloaded
		r.saveLedger(sess)
		r.logger.Info("project complete", "project", proj.ProjectName)
	}
	return nil
}

// saveLedger persists the session, logging failures instead of propagating
// them. Files already on disk must not be re-downloaded just because the
// ledger write failed.
func (r *Runner) saveLedger(sess *model.Session) {
	if err := r.store.Save(*sess); err != nil {
		r.logger.Error("persist ledger failed, continuing with in-memory state", "error", err)
	}
}

// downloadOne fetches a single ready video and records the outcome. Failures
// keep the job pending with the error message set, so it is retried.
func (r *Runner) downloadOne(ctx context.Context, sess *model.Session, video model.VideoJob, title string) error {
	r.logger.Info("video ready", "scene", video.SceneFolder, "video", video.VideoName)

	output, err := r.fetch(ctx, video, title)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		r.logger.Error("download failed", "scene", video.SceneFolder, "error", err)
		tracking.UpdateVideoStatus(sess, video.SceneFolder, model.StatusProcessing, "", err.Error())
		r.saveLedger(sess)
		return nil
	}

	tracking.UpdateVideoStatus(sess, video.SceneFolder, model.StatusDownloaded, output, "")
	r.saveLedger(sess)
	r.logger.Info("video downloaded", "scene", video.SceneFolder, "file", output)
	return nil
}

func (r *Runner) fetch(ctx context.Context, video model.VideoJob, title string) (string, error) {
	start := r.now()
	if err := r.browser.TriggerDownload(title); err != nil {
		return "", err
	}
	path, err := WaitForFile(ctx, r.opts.DownloadDir, start, r.opts.SettlePoll)
	if err != nil {
		return "", err
	}
	return Finalize(path, r.opts.DownloadDir, video.VideoName)
}

// matchTitle finds the card whose text contains the video name. Cards carry
// surrounding text (duration, badges) around the title, so containment is
// the only reliable match.
func matchTitle(titles []string, videoName string) (string, bool) {
	for _, t := range titles {
		if strings.Contains(t, videoName) {
			return t, true
		}
	}
	return "", false
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
