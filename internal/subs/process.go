package subs

import (
	"fmt"
	"os"

	"kani/internal/console"
	"kani/internal/httputil"
	"kani/internal/lang"
	"kani/internal/media"
)

// Raw is a fetched subtitle before normalization. Both acquisition
// generations produce this shape.
type Raw struct {
	ID    string
	Lang  string // table tag, e.g. "en - us"
	Title string
	Body  []byte // complete ASS payload
}

// Result is the outcome of processing one episode's subtitles.
type Result struct {
	Tracks []media.SubtitleTrack
	// Fonts is the union of font names referenced by all kept tracks.
	Fonts []string
}

// Process normalizes fetched subtitles into tracks on disk. Tracks
// with a language tag outside the fixed table are dropped with a
// reported error. The filter ("all", "none", or one ISO code) decides
// whether a track is written and kept; filtered tracks are an
// informational skip, not a failure. Per-track write failures skip
// that track only.
func Process(raws []Raw, filter string, outputBase string, dir string) Result {
	var res Result
	var fontSets [][]string

	for _, r := range raws {
		code, ok := lang.Lookup(r.Lang)
		if !ok {
			console.Errorf("language code for %q not found, dropping subtitle %s", r.Lang, r.ID)
			continue
		}

		if filter == "none" || (filter != "all" && filter != code.ISO) {
			console.Infof("subtitle %s [%s] download skipped by language filter", r.ID, code.ISO)
			continue
		}

		name := fmt.Sprintf("%s.%s %s %s.ass", outputBase, r.ID, code.ISO, code.Label)
		path, err := httputil.SafePath(dir, name)
		if err != nil {
			console.Errorf("subtitle %s: %v", r.ID, err)
			continue
		}
		if err := os.WriteFile(path, r.Body, 0644); err != nil {
			console.Errorf("writing subtitle %s: %v", r.ID, err)
			continue
		}
		console.Infof("downloaded: %s", name)

		fonts := ExtractFonts(string(r.Body))
		fontSets = append(fontSets, fonts)

		res.Tracks = append(res.Tracks, media.SubtitleTrack{
			ID:        r.ID,
			LangCode:  code.ISO,
			LangLabel: code.Label,
			Title:     r.Title,
			File:      path,
			Fonts:     fonts,
		})
	}

	res.Fonts = UnionFonts(fontSets...)
	return res
}
