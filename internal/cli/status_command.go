package cli

import (
	"flag"
	"fmt"

	"heygen-batch/internal/config"
	"heygen-batch/internal/model"
	"heygen-batch/internal/tracking"
)

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	settingsPath := fs.String("settings", config.DefaultSettingsPath, "settings file path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(*settingsPath)
	if err != nil {
		return err
	}
	store := tracking.NewStore(settings.TrackingPath, newLogger(false))
	sess, ok := store.Load()
	if !ok {
		fmt.Println("no tracking session found")
		return nil
	}

	if *jsonOut {
		return printJSON(sess)
	}

	fmt.Printf("session started: %s\n", sess.SessionStart)
	fmt.Printf("videos: %d total, %d downloaded, %d pending\n",
		sess.TotalVideos(), sess.DownloadedCount(), sess.PendingCount())
	fmt.Println()

	rows := make([][]string, 0, sess.TotalVideos())
	for _, p := range sess.Projects {
		for _, v := range p.Videos {
			rows = append(rows, []string{
				p.ProjectName,
				v.SceneFolder,
				v.VideoName,
				v.Status,
				statusDetail(v),
			})
		}
	}
	fmt.Println(renderTable([]string{"Project", "Scene", "Video", "Status", "Detail"}, rows))
	return nil
}

// statusDetail is the rightmost column: where the file went, or what is
// holding the job up.
func statusDetail(v model.VideoJob) string {
	if v.Status == model.StatusDownloaded {
		return v.OutputFile
	}
	if v.ErrorMessage != "" {
		return "last error: " + v.ErrorMessage
	}
	return "rendering"
}
