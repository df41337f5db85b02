package provider

import (
	"fmt"
	"regexp"
	"strings"

	"kani/internal/catalog"
	"kani/internal/console"
	"kani/internal/lang"
	"kani/internal/subs"
)

// Vilos is the current generation: the media page's player
// configuration already lists direct subtitle track URLs.
type Vilos struct {
	site
}

func (v *Vilos) Name() string { return "vilos" }

func (v *Vilos) EpisodeFeed(showID string) (*catalog.Feed, error) {
	return v.site.EpisodeFeed(showID)
}

var subIDRegex = regexp.MustCompile(`_(\d+)\.txt`)

func (v *Vilos) Subtitles(req SubtitleRequest) ([]subs.Raw, error) {
	if req.Media == nil || len(req.Media.Subtitles) == 0 {
		return nil, fmt.Errorf("no subtitle urls in stream metadata, try the oldsubs option for sub versions")
	}

	var raws []subs.Raw
	for _, desc := range req.Media.Subtitles {
		body, err := v.client.FetchRaw(desc.URL, false)
		if err != nil {
			console.Errorf("subtitle %s: %v", desc.Language, err)
			continue
		}

		id := "0"
		if m := subIDRegex.FindStringSubmatch(desc.URL); m != nil {
			id = m[1]
		}

		raws = append(raws, subs.Raw{
			ID:    id,
			Lang:  lang.NormalizeTag(desc.Language),
			Title: titleFromPayload(body),
			Body:  body,
		})
	}
	return raws, nil
}

// titleFromPayload reads the script title off the second payload
// line, stripping the fixed label prefix.
func titleFromPayload(body []byte) string {
	lines := strings.SplitN(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n", 3)
	if len(lines) < 2 {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(lines[1]), "Title: ")
}
