// Package stream resolves an episode's media page into a chosen
// playable stream variant.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Typed per-episode failures. They abort the download and mux stages
// of one episode only; subtitle acquisition still proceeds.
var (
	ErrRegionLocked     = errors.New("video not available in your region due to licensing restrictions")
	ErrNoStreamMetadata = errors.New("no stream metadata on media page, premium locked for your region")
	ErrClipOnly         = errors.New("only a clip stream is available")
	ErrNoRawStream      = errors.New("no full raw stream available, session likely expired")
)

// mediaMarker introduces the embedded player configuration block on
// the media page.
const mediaMarker = "vilos.config.media = {"

// Media is the embedded player configuration of one media page.
type Media struct {
	Metadata  Metadata           `json:"metadata"`
	Streams   []EncodedStream    `json:"streams"`
	Subtitles []SubtitleDescript `json:"subtitles"`
}

// Metadata carries the page-level episode fields we consume.
type Metadata struct {
	EpisodeNumber string `json:"episode_number"`
}

// EncodedStream is one delivery option listed by the player config.
type EncodedStream struct {
	Format      string  `json:"format"`
	AudioLang   string  `json:"audio_lang"`
	HardsubLang *string `json:"hardsub_lang"`
	URL         string  `json:"url"`
}

// SubtitleDescript is a direct subtitle descriptor used by the
// current-generation acquisition path.
type SubtitleDescript struct {
	Language string `json:"language"`
	URL      string `json:"url"`
	Format   string `json:"format"`
}

// ExtractMedia locates the embedded configuration block in a media
// page body. Absence of the marker means the page carries no playable
// stream metadata.
func ExtractMedia(pageBody string) (*Media, error) {
	start := strings.Index(pageBody, mediaMarker)
	if start == -1 {
		return nil, ErrNoStreamMetadata
	}
	rest := pageBody[start+len(mediaMarker)-1:]

	end := strings.Index(rest, "};")
	if end == -1 {
		return nil, ErrNoStreamMetadata
	}

	var m Media
	if err := json.Unmarshal([]byte(rest[:end+1]), &m); err != nil {
		return nil, fmt.Errorf("parsing media block: %w", err)
	}
	return &m, nil
}

// FindRawStream picks the full raw stream from the delivery list: an
// adaptive ("hls") format with no hardsub language whose URL is not a
// clip-style path. Full raw streams are expected to be unique per
// episode, so duplicates resolve last-wins.
func FindRawStream(m *Media) (string, error) {
	raw := ""
	clipSeen := false

	for _, s := range m.Streams {
		if strings.Contains(s.URL, "clipFrom") {
			clipSeen = true
			continue
		}
		if s.Format == "hls" && s.HardsubLang == nil {
			raw = s.URL
		}
	}

	if raw == "" {
		if clipSeen {
			return "", ErrClipOnly
		}
		return "", ErrNoRawStream
	}
	return raw, nil
}
