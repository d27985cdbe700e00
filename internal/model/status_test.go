package model

import "testing"

func TestCanTransition_AllowsExpectedPaths(t *testing.T) {
	cases := []struct {
		from string
		to   string
	}{
		{"", StatusProcessing},
		{StatusProcessing, StatusProcessing},
		{StatusProcessing, StatusDownloaded},
		{StatusDownloaded, StatusProcessing},
		{StatusDownloaded, StatusDownloaded},
	}

	for _, tc := range cases {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected transition %q -> %q to be allowed", tc.from, tc.to)
		}
	}
}

func TestCanTransition_RejectsInvalidPaths(t *testing.T) {
	cases := []struct {
		from string
		to   string
	}{
		{"", StatusDownloaded},
		{StatusProcessing, "failed"},
		{"not_a_state", StatusProcessing},
	}

	for _, tc := range cases {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected transition %q -> %q to be rejected", tc.from, tc.to)
		}
	}
}

func TestTransitionVideoStatus_BlocksIllegalTransition(t *testing.T) {
	video := VideoJob{
		SceneFolder: "scene-1",
		Status:      StatusProcessing,
	}

	if err := TransitionVideoStatus(&video, "failed"); err == nil {
		t.Fatalf("expected illegal transition error")
	}
	if video.Status != StatusProcessing {
		t.Fatalf("status changed on rejected transition: %q", video.Status)
	}
}

func TestSessionCounts(t *testing.T) {
	s := Session{
		Projects: []Project{
			{
				ProjectName: "alpha",
				Videos: []VideoJob{
					{SceneFolder: "a1", Status: StatusDownloaded},
					{SceneFolder: "a2", Status: StatusDownloaded},
				},
			},
			{
				ProjectName: "beta",
				Videos: []VideoJob{
					{SceneFolder: "b1", Status: StatusProcessing},
				},
			},
		},
	}

	if got := s.PendingCount(); got != 1 {
		t.Fatalf("pending count: got %d want 1", got)
	}
	if got := s.DownloadedCount(); got != 2 {
		t.Fatalf("downloaded count: got %d want 2", got)
	}
	if got := s.TotalVideos(); got != 3 {
		t.Fatalf("total videos: got %d want 3", got)
	}
	if got := len(s.Projects[1].PendingVideos()); got != 1 {
		t.Fatalf("project pending videos: got %d want 1", got)
	}
}
