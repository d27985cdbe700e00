package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"heygen-batch/internal/config"
	"heygen-batch/internal/download"
	"heygen-batch/internal/model"
	"heygen-batch/internal/queue"
	"heygen-batch/internal/studio"
	"heygen-batch/internal/submit"
)

// submitPlan is one job ready to hand to the submission driver. Handoff
// queues halt on the first failure so the external producer sees a clean
// error; interactively built queues log and keep going.
type submitPlan struct {
	Job         queue.Job
	Config      model.RenderConfig
	HaltOnError bool
}

type submitSummary struct {
	Jobs      int             `json:"jobs"`
	Submitted int             `json:"submitted"`
	Failed    []submitFailure `json:"failed,omitempty"`
}

type submitFailure struct {
	Project string `json:"project"`
	Scene   string `json:"scene,omitempty"`
	Error   string `json:"error"`
}

func runSubmit(args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	settingsPath := fs.String("settings", config.DefaultSettingsPath, "settings file path")
	queueFile := fs.String("queue", "", "submit a prebuilt queue file instead of the interactive builder")
	fresh := fs.Bool("fresh", false, "start a new tracking session even when one exists")
	resume := fs.Bool("resume", false, "append to the existing tracking session without asking")
	verbose := fs.Bool("verbose", false, "debug logging")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := openWorkspace(*settingsPath, *verbose)
	if err != nil {
		return err
	}
	defer ws.close()

	plans, err := buildPlans(ws, strings.TrimSpace(*queueFile))
	if err != nil {
		return err
	}

	sess, err := ws.resolveSession(*fresh, *resume)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	client, err := ws.launchStudio(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := runSubmission(ctx, ws, client, &sess, plans)
	if err != nil {
		return err
	}
	return printSubmitSummary(summary, *jsonOut)
}

func runDownload(args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	settingsPath := fs.String("settings", config.DefaultSettingsPath, "settings file path")
	verbose := fs.Bool("verbose", false, "debug logging")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := openWorkspace(*settingsPath, *verbose)
	if err != nil {
		return err
	}
	defer ws.close()

	sess, ok := ws.store.Load()
	if !ok || sess.TotalVideos() == 0 {
		fmt.Println("no tracking session; run `heygen-batch submit` first")
		return nil
	}
	if sess.PendingCount() == 0 {
		fmt.Printf("nothing pending: %d/%d videos already downloaded\n", sess.DownloadedCount(), sess.TotalVideos())
		return nil
	}

	ctx, stop := signalContext()
	defer stop()
	client, err := ws.launchStudio(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := runPolling(ctx, ws, client, &sess); err != nil {
		return err
	}
	return printDownloadSummary(sess, *jsonOut)
}

// runBatch is submit followed by the poll loop on the same browser session.
func runBatch(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	settingsPath := fs.String("settings", config.DefaultSettingsPath, "settings file path")
	queueFile := fs.String("queue", "", "submit a prebuilt queue file instead of the interactive builder")
	fresh := fs.Bool("fresh", false, "start a new tracking session even when one exists")
	resume := fs.Bool("resume", false, "append to the existing tracking session without asking")
	verbose := fs.Bool("verbose", false, "debug logging")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := openWorkspace(*settingsPath, *verbose)
	if err != nil {
		return err
	}
	defer ws.close()

	plans, err := buildPlans(ws, strings.TrimSpace(*queueFile))
	if err != nil {
		return err
	}

	sess, err := ws.resolveSession(*fresh, *resume)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	client, err := ws.launchStudio(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := runSubmission(ctx, ws, client, &sess, plans)
	if err != nil {
		return err
	}
	if err := printSubmitSummary(summary, *jsonOut); err != nil {
		return err
	}
	if sess.PendingCount() == 0 {
		return errors.New("nothing was submitted; not starting the download loop")
	}

	if err := runPolling(ctx, ws, client, &sess); err != nil {
		return err
	}
	return printDownloadSummary(sess, *jsonOut)
}

// buildPlans resolves what to submit: a handoff queue file, or jobs built in
// the interactive queue builder.
func buildPlans(ws *workspace, queueFile string) ([]submitPlan, error) {
	if queueFile != "" {
		handoff, err := queue.LoadHandoff(queueFile)
		if err != nil {
			return nil, err
		}
		return []submitPlan{{Job: handoff.Job, Config: handoff.Config, HaltOnError: true}}, nil
	}

	if !stdinIsTTY() {
		return nil, errors.New("interactive queue builder requires a terminal; use --queue <file>")
	}

	projects, err := queue.ScanInput(ws.settings.InputDir)
	if err != nil {
		return nil, err
	}
	avatars, err := config.LoadAvatars(ws.settings.AvatarConfigPath, ws.logger)
	if err != nil {
		return nil, err
	}
	if len(avatars) == 0 {
		return nil, fmt.Errorf("no avatars configured; add an available_avatars line to %s", ws.settings.AvatarConfigPath)
	}

	jobs, err := runBuilder(projects, avatars)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, errors.New("queue is empty; nothing to submit")
	}

	cfg, err := promptRenderConfig()
	if err != nil {
		return nil, err
	}

	plans := make([]submitPlan, 0, len(jobs))
	for _, job := range jobs {
		plans = append(plans, submitPlan{Job: job, Config: cfg})
	}
	return plans, nil
}

// promptRenderConfig asks for the render settings shared by every job in
// this run.
func promptRenderConfig() (model.RenderConfig, error) {
	quality, err := promptChoice("Quality", []string{"720p", "1080p"}, "720p")
	if err != nil {
		return model.RenderConfig{}, err
	}
	fps, err := promptChoice("Frame rate", []string{"25", "30", "60"}, "25")
	if err != nil {
		return model.RenderConfig{}, err
	}
	subtitles, err := promptConfirm("Burn in subtitles?", true)
	if err != nil {
		return model.RenderConfig{}, err
	}
	cfg := model.RenderConfig{Quality: quality, FPS: fps, Subtitles: "no"}
	if subtitles {
		cfg.Subtitles = "yes"
	}
	return cfg, nil
}

func runSubmission(ctx context.Context, ws *workspace, client *studio.Client, sess *model.Session, plans []submitPlan) (submitSummary, error) {
	summary := submitSummary{Jobs: len(plans)}
	for _, plan := range plans {
		driver := submit.NewDriver(client, ws.store, ws.logger, submit.Options{
			HaltOnError:   plan.HaltOnError,
			SceneDelay:    ws.settings.SubmitDelay(),
			AvatarTimeout: ws.settings.AvatarSearchTimeout(),
		})
		res, err := driver.Run(ctx, sess, plan.Job, plan.Config)
		summary.Submitted += res.Submitted
		for _, f := range res.Failed {
			failure := submitFailure{Project: f.Project, Scene: f.Scene}
			if f.Err != nil {
				failure.Error = f.Err.Error()
			}
			summary.Failed = append(summary.Failed, failure)
		}
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func runPolling(ctx context.Context, ws *workspace, client *studio.Client, sess *model.Session) error {
	runner := download.NewRunner(client, ws.store, ws.logger, download.Options{
		DownloadDir:  ws.settings.OutputDir,
		PollInterval: ws.settings.PollInterval(),
		SettlePoll:   ws.settings.DownloadSettle(),
	})
	return runner.Run(ctx, sess)
}

func printSubmitSummary(summary submitSummary, jsonOut bool) error {
	if jsonOut {
		return printJSON(summary)
	}
	fmt.Println("submit summary")
	fmt.Printf("jobs: %d\n", summary.Jobs)
	fmt.Printf("submitted: %d\n", summary.Submitted)
	fmt.Printf("failed: %d\n", len(summary.Failed))
	for _, f := range summary.Failed {
		target := f.Project
		if f.Scene != "" {
			target += "/" + f.Scene
		}
		fmt.Printf("  %s: %s\n", target, f.Error)
	}
	return nil
}

func printDownloadSummary(sess model.Session, jsonOut bool) error {
	if jsonOut {
		return printJSON(map[string]int{
			"downloaded": sess.DownloadedCount(),
			"pending":    sess.PendingCount(),
			"total":      sess.TotalVideos(),
		})
	}
	fmt.Println("download summary")
	fmt.Printf("downloaded: %d/%d\n", sess.DownloadedCount(), sess.TotalVideos())
	if pending := sess.PendingCount(); pending > 0 {
		fmt.Printf("pending: %d (rerun `heygen-batch download` to continue)\n", pending)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
