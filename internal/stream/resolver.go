package stream

import (
	"fmt"
	"strings"

	"kani/internal/hls"
	"kani/internal/httputil"
)

// Resolver fetches media pages and master playlists.
type Resolver struct {
	client *httputil.Client
	base   string // site hostname
}

// NewResolver builds a resolver against the given site hostname.
func NewResolver(client *httputil.Client, base string) *Resolver {
	return &Resolver{client: client, base: base}
}

func (r *Resolver) siteURL() string { return "https://" + r.base }

// MediaPage fetches the episode's media page and extracts the
// embedded player configuration. A trailing redirect to the site root
// is a region lock and terminal for the episode.
func (r *Resolver) MediaPage(mediaID string) (*Media, error) {
	res, err := r.client.Fetch(fmt.Sprintf("%s/media-%s", r.siteURL(), mediaID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching media page: %w", err)
	}

	if n := len(res.Redirects); n > 0 {
		last := strings.TrimSuffix(res.Redirects[n-1], "/")
		if last == strings.TrimSuffix(r.siteURL(), "/") {
			return nil, ErrRegionLocked
		}
	}

	return ExtractMedia(string(res.Body))
}

// MasterTable fetches the adaptive playlist at url and folds it into
// a quality table.
func (r *Resolver) MasterTable(url string) (*Table, error) {
	body, err := r.client.FetchRaw(url, false)
	if err != nil {
		return nil, fmt.Errorf("fetching video playlists: %w", err)
	}
	variants, err := hls.ParseMaster(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing master playlist: %w", err)
	}
	return BuildTable(variants), nil
}

// MediaPlaylist fetches and parses the chunk playlist of a resolved
// stream.
func (r *Resolver) MediaPlaylist(url string) (*hls.MediaPlaylist, error) {
	body, err := r.client.FetchRaw(url, false)
	if err != nil {
		return nil, fmt.Errorf("fetching video playlist: %w", err)
	}
	return hls.ParseMedia(string(body))
}
