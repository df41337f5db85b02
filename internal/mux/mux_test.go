package mux

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"kani/internal/media"
)

func TestOutputBase(t *testing.T) {
	tests := []struct {
		name  string
		parts NameParts
		want  string
	}{
		{
			name: "standard",
			parts: NameParts{
				Group: "KANI", Title: "Kobo the Crab", Episode: "E05",
				Suffix: "SIZEp", Quality: "720p",
			},
			want: "[KANI] Kobo the Crab - E05 [720p]",
		},
		{
			name: "no suffix",
			parts: NameParts{
				Group: "KANI", Title: "Kobo the Crab", Episode: "S01",
				Suffix: "", Quality: "1080p",
			},
			want: "[KANI] Kobo the Crab - S01",
		},
		{
			name: "suffix without placeholder",
			parts: NameParts{
				Group: "KANI", Title: "Kobo the Crab", Episode: "E12",
				Suffix: "WEB", Quality: "480p",
			},
			want: "[KANI] Kobo the Crab - E12 [WEB]",
		},
		{
			name: "unsafe characters",
			parts: NameParts{
				Group: "KANI", Title: "What: Is? This", Episode: "E01",
				Suffix: "SIZEp", Quality: "720p",
			},
			want: "[KANI] What_ Is_ This - E01 [720p]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputBase(tt.parts); got != tt.want {
				t.Errorf("OutputBase() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEpisodeLabel(t *testing.T) {
	key := media.EpisodeKey{Kind: media.Episode, Number: 5}
	tests := []struct {
		name, pageNum, want string
	}{
		{"no page number", "", "E05"},
		{"page number padded", "7", "07"},
		{"page number kept", "12", "12"},
		{"long number unpadded", "100", "100"},
		{"non-numeric kept", "6.5", "6.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EpisodeLabel(key, tt.pageNum); got != tt.want {
				t.Errorf("EpisodeLabel(%v, %q) = %q, want %q", key, tt.pageNum, got, tt.want)
			}
		})
	}
}

func TestSynthesize(t *testing.T) {
	sub := media.SubtitleTrack{
		ID: "101", LangCode: "eng", LangLabel: "English (US)", File: "ep.101 eng.ass",
	}

	t.Run("no video means no plan", func(t *testing.T) {
		if _, ok := Synthesize(PlanInput{VideoFile: "", Subtitles: []media.SubtitleTrack{sub}}); ok {
			t.Error("expected no plan without a video file")
		}
	})

	t.Run("mp4 leaves subtitles unmuxed", func(t *testing.T) {
		plan, ok := Synthesize(PlanInput{
			VideoFile: "ep.ts", AudioLang: "jpn",
			Subtitles: []media.SubtitleTrack{sub},
			Fonts:     []string{"Arial"},
			MP4:       true, MuxSubs: true,
		})
		if !ok {
			t.Fatal("expected a plan")
		}
		if plan.Container != media.MP4 {
			t.Errorf("container = %v, want mp4", plan.Container)
		}
		if len(plan.Subtitles) != 0 {
			t.Errorf("mp4 plan carries subtitles: %v", plan.Subtitles)
		}
		if len(plan.Fonts) != 0 {
			t.Errorf("mp4 plan carries fonts: %v", plan.Fonts)
		}
	})

	t.Run("subs excluded when muxing disabled", func(t *testing.T) {
		plan, ok := Synthesize(PlanInput{
			VideoFile: "ep.ts",
			Subtitles: []media.SubtitleTrack{sub},
			MuxSubs:   false,
		})
		if !ok {
			t.Fatal("expected a plan")
		}
		if len(plan.Subtitles) != 0 {
			t.Errorf("plan carries subtitles despite disabled muxing: %v", plan.Subtitles)
		}
	})
}

func TestResolveFonts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Arial.ttf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Trebuchet MS.otf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := ResolveFonts([]string{"Arial", "Trebuchet MS", "Missing Font"}, dir)
	want := []string{
		filepath.Join(dir, "Arial.ttf"),
		filepath.Join(dir, "Trebuchet MS.otf"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveFonts() = %v, want %v", got, want)
	}
}

func TestMkvmergeArgs(t *testing.T) {
	plan := media.MuxPlan{
		Container:  media.MKV,
		VideoFile:  "ep.ts",
		AudioLang:  "jpn",
		OutputBase: "[KANI] Show - E05 [720p]",
		ReleaseTag: "KANI",
		Subtitles: []media.SubtitleTrack{
			{LangCode: "eng", LangLabel: "English (US)", Title: "Signs Only", File: "ep.101 eng.ass"},
		},
		Fonts: []string{"/fonts/Arial.ttf"},
	}
	got := MkvmergeArgs(plan)
	want := []string{
		"--output", "[KANI] Show - E05 [720p].mkv",
		"--disable-track-statistics-tags",
		"--engage", "no_variable_data",
		"--track-name", "0:[KANI]",
		"--language", "1:jpn",
		"ep.ts",
		"--track-name", "0:English (US) / Signs Only",
		"--language", "0:eng",
		"--default-track", "0:no",
		"ep.101 eng.ass",
		"--attach-file", "/fonts/Arial.ttf",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MkvmergeArgs() = %v, want %v", got, want)
	}
}

func TestFFmpegArgs(t *testing.T) {
	plan := media.MuxPlan{
		Container:  media.MP4,
		VideoFile:  "ep.ts",
		AudioLang:  "eng",
		ReleaseTag: "KANI",
		OutputBase: "[KANI] Show - E05 [720p]",
	}
	got := FFmpegArgs(plan)
	if got[len(got)-1] != "[KANI] Show - E05 [720p].mp4" {
		t.Errorf("last arg = %q, want output mp4 path", got[len(got)-1])
	}
	joined := ""
	for _, a := range got {
		joined += a + " "
	}
	for _, must := range []string{"-map", "-c:v", "copy", "language=eng"} {
		found := false
		for _, a := range got {
			if a == must {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("args missing %q in %q", must, joined)
		}
	}
}

func TestCleanup(t *testing.T) {
	t.Run("delete", func(t *testing.T) {
		dir := t.TempDir()
		video := filepath.Join(dir, "ep.ts")
		subFile := filepath.Join(dir, "ep.101 eng.ass")
		for _, f := range []string{video, subFile} {
			if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		plan := media.MuxPlan{
			VideoFile: video,
			Subtitles: []media.SubtitleTrack{{File: subFile}},
		}
		if err := Cleanup(plan, false, ""); err != nil {
			t.Fatal(err)
		}
		for _, f := range []string{video, subFile} {
			if _, err := os.Stat(f); !os.IsNotExist(err) {
				t.Errorf("%s still exists", f)
			}
		}
	})

	t.Run("mp4 keeps subtitle scripts", func(t *testing.T) {
		dir := t.TempDir()
		video := filepath.Join(dir, "ep.ts")
		subFile := filepath.Join(dir, "ep.101 eng.ass")
		for _, f := range []string{video, subFile} {
			if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		plan, ok := Synthesize(PlanInput{
			VideoFile: video,
			Subtitles: []media.SubtitleTrack{{File: subFile}},
			MP4:       true, MuxSubs: true,
		})
		if !ok {
			t.Fatal("expected a plan")
		}
		if err := Cleanup(plan, false, ""); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(video); !os.IsNotExist(err) {
			t.Errorf("%s still exists", video)
		}
		if _, err := os.Stat(subFile); err != nil {
			t.Errorf("subtitle script removed: %v", err)
		}
	})

	t.Run("move to trash", func(t *testing.T) {
		dir := t.TempDir()
		trash := filepath.Join(dir, "trash")
		video := filepath.Join(dir, "ep.ts")
		if err := os.WriteFile(video, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		plan := media.MuxPlan{VideoFile: video}
		if err := Cleanup(plan, true, trash); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(trash, "ep.ts")); err != nil {
			t.Errorf("trashed file missing: %v", err)
		}
	})
}
