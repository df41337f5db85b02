package cmd

import (
	"testing"
	"time"

	"kani/internal/config"
	"kani/internal/media"
)

func TestSegmentJob(t *testing.T) {
	old := cfg
	defer func() { cfg = old }()
	cfg = config.Default()

	resolved := media.ResolvedStream{
		URL:        "https://a1.example.com/media/stream_720p.m3u8",
		Resolution: "720p",
	}

	job := segmentJob(resolved, nil, "ep.ts")
	if job.UseProxy {
		t.Error("proxy requested with none configured")
	}
	if job.BaseURL != "https://a1.example.com/media/" {
		t.Errorf("BaseURL = %q", job.BaseURL)
	}
	if job.OutputPath != "ep.ts" {
		t.Errorf("OutputPath = %q", job.OutputPath)
	}

	cfg.Net.Proxy = "http://127.0.0.1:8080"
	if job := segmentJob(resolved, nil, "ep.ts"); !job.UseProxy {
		t.Error("configured proxy not applied to segment downloads")
	}
}

func TestAvailability(t *testing.T) {
	now := time.Date(2019, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		airDate time.Time
		want    string
	}{
		{"aired", now.Add(-time.Hour), "now"},
		{"pending", now.Add(90 * time.Minute), "in 1h30m0s"},
		{"not in feed", time.Time{}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := availability(tt.airDate, now); got != tt.want {
				t.Errorf("availability() = %q, want %q", got, tt.want)
			}
		})
	}
}
