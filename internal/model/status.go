package model

import "fmt"

const (
	StatusProcessing = "processing"
	StatusDownloaded = "downloaded"
)

// A failed job deliberately has no distinct state: it stays in processing
// with ErrorMessage set so the poll loop retries it indefinitely. Re-entering
// processing after a download never clears DownloadedAt/OutputFile.
var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusProcessing: true,
	},
	StatusProcessing: {
		StatusProcessing: true,
		StatusDownloaded: true,
	},
	StatusDownloaded: {
		StatusDownloaded: true,
		StatusProcessing: true, // error re-entry; prior download fields survive
	},
}

func IsKnownStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// TransitionVideoStatus moves a job to toStatus, rejecting transitions the
// map above does not allow. Download bookkeeping (timestamps, output file)
// is the Tracking Store's responsibility, not this function's.
func TransitionVideoStatus(video *VideoJob, toStatus string) error {
	from := video.Status
	if !CanTransition(from, toStatus) {
		return fmt.Errorf("invalid video status transition: %q -> %q (scene=%s)", from, toStatus, video.SceneFolder)
	}
	video.Status = toStatus
	return nil
}
