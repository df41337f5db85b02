// Package provider implements the two protocol generations of the
// streaming service API. Both serve the same capability set — fetch
// the episode catalog, fetch subtitles — and are selected by
// configuration, not by branching at call sites.
package provider

import (
	"kani/internal/catalog"
	"kani/internal/httputil"
	"kani/internal/stream"
	"kani/internal/subs"
)

// Generation is one protocol generation of the service API.
type Generation interface {
	Name() string

	// EpisodeFeed fetches and parses the episode catalog of a show.
	EpisodeFeed(showID string) (*catalog.Feed, error)

	// Subtitles fetches the raw subtitle payloads for one episode.
	// Per-subtitle failures are skipped, never abort the rest.
	Subtitles(req SubtitleRequest) ([]subs.Raw, error)
}

// SubtitleRequest carries the per-episode inputs of an acquisition.
type SubtitleRequest struct {
	MediaID string
	// HasStream reports whether the stream lookup succeeded. The
	// legacy generation re-derives the video id when it did not.
	HasStream bool
	// Media is the page's player configuration; the current
	// generation reads its subtitle descriptors. May be nil.
	Media *stream.Media
}

// New selects the generation. The legacy generation uses the
// encrypted XML subtitle RPC; the current one reads direct track
// URLs from the stream metadata.
func New(client *httputil.Client, base string, legacy bool) Generation {
	s := site{client: client, base: base}
	if legacy {
		return &Legacy{site: s}
	}
	return &Vilos{site: s}
}

// site is the shared transport surface of both generations.
type site struct {
	client *httputil.Client
	base   string
}

func (s site) url() string { return "https://" + s.base }

// EpisodeFeed is shared: the service never shipped a second-
// generation catalog feed, so both strategies read the syndication
// endpoint.
func (s site) EpisodeFeed(showID string) (*catalog.Feed, error) {
	res, err := s.client.Fetch(s.url()+"/syndication/feed?type=episodes&lang=enUS&id="+showID, nil)
	if err != nil {
		return nil, err
	}
	return catalog.Parse(res.Body)
}
