package model

// Session is the canonical tracking ledger: one run spanning one or more
// projects. It is persisted as a whole after every mutation.
type Session struct {
	SessionStart string    `json:"session_start"`
	Projects     []Project `json:"projects"`
}

// Project is a named batch of videos submitted into one remote folder.
type Project struct {
	ProjectName      string       `json:"project_name"`
	HeyGenFolderName string       `json:"heygen_folder_name"`
	StartedAt        string       `json:"started_at"`
	Config           RenderConfig `json:"config"`
	Videos           []VideoJob   `json:"videos"`
	Status           string       `json:"status"`
}

// VideoJob is one requested render, keyed by SceneFolder. SceneFolder must be
// unique across the whole session because status updates scan every project.
type VideoJob struct {
	SceneFolder  string `json:"scene_folder"`
	ScriptFile   string `json:"script_file"`
	VideoName    string `json:"video_name"`
	SubmittedAt  string `json:"submitted_at"`
	Status       string `json:"status"`
	DownloadedAt string `json:"downloaded_at,omitempty"`
	OutputFile   string `json:"output_file,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// RenderConfig is the configuration snapshot applied to every video in a
// project.
type RenderConfig struct {
	Quality    string `json:"quality"`
	FPS        string `json:"fps"`
	Subtitles  string `json:"subtitles"`
	AvatarName string `json:"avatar_name,omitempty"`
}

// PendingVideos returns the project's jobs still in StatusProcessing.
func (p Project) PendingVideos() []VideoJob {
	out := make([]VideoJob, 0, len(p.Videos))
	for _, v := range p.Videos {
		if v.Status == StatusProcessing {
			out = append(out, v)
		}
	}
	return out
}

// PendingCount returns the number of StatusProcessing jobs across the whole
// session.
func (s Session) PendingCount() int {
	n := 0
	for _, p := range s.Projects {
		for _, v := range p.Videos {
			if v.Status == StatusProcessing {
				n++
			}
		}
	}
	return n
}

// DownloadedCount returns the number of StatusDownloaded jobs across the
// whole session.
func (s Session) DownloadedCount() int {
	n := 0
	for _, p := range s.Projects {
		for _, v := range p.Videos {
			if v.Status == StatusDownloaded {
				n++
			}
		}
	}
	return n
}

// TotalVideos returns the number of jobs across the whole session.
func (s Session) TotalVideos() int {
	n := 0
	for _, p := range s.Projects {
		n += len(p.Videos)
	}
	return n
}
