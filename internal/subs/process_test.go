package subs

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleRaws() []Raw {
	ass := "[V4+ Styles]\r\nStyle: Default,Trebuchet MS,24\r\n"
	return []Raw{
		{ID: "101", Lang: "en - us", Title: "English (US)", Body: []byte(ass)},
		{ID: "102", Lang: "de - de", Title: "German", Body: []byte(ass)},
		{ID: "103", Lang: "xx - zz", Title: "Mystery", Body: []byte(ass)},
	}
}

func TestProcessAll(t *testing.T) {
	dir := t.TempDir()
	res := Process(sampleRaws(), "all", "[GRP] Show - 01 [720p]", dir)

	// the unmapped language is dropped, the rest are kept
	if len(res.Tracks) != 2 {
		t.Fatalf("tracks = %d, want 2", len(res.Tracks))
	}

	first := res.Tracks[0]
	if first.LangCode != "eng" || first.LangLabel != "English (US)" {
		t.Errorf("track[0] language = %s/%s", first.LangCode, first.LangLabel)
	}
	wantName := "[GRP] Show - 01 [720p].101 eng English (US).ass"
	if filepath.Base(first.File) != wantName {
		t.Errorf("track file = %q, want %q", filepath.Base(first.File), wantName)
	}
	if _, err := os.Stat(first.File); err != nil {
		t.Errorf("track file not written: %v", err)
	}

	if len(res.Fonts) != 1 || res.Fonts[0] != "Trebuchet MS" {
		t.Errorf("fonts = %v", res.Fonts)
	}
}

func TestProcessLanguageFilter(t *testing.T) {
	dir := t.TempDir()
	res := Process(sampleRaws(), "ger", "base", dir)

	if len(res.Tracks) != 1 || res.Tracks[0].LangCode != "ger" {
		t.Fatalf("tracks = %+v", res.Tracks)
	}

	// filtered-out tracks are not written to disk
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 file on disk, got %d", len(entries))
	}
}

func TestProcessNone(t *testing.T) {
	dir := t.TempDir()
	res := Process(sampleRaws(), "none", "base", dir)
	if len(res.Tracks) != 0 {
		t.Errorf("tracks = %+v, want none", res.Tracks)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("no files should be written, found %d", len(entries))
	}
}
