// Package hls parses HLS master and media playlists. Parsing is pure:
// no network access, no state.
package hls

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Variant is one #EXT-X-STREAM-INF entry of a master playlist.
type Variant struct {
	ResolutionHeight int
	Bandwidth        int // bits per second, as declared
	URI              string
}

// Key describes segment encryption declared by #EXT-X-KEY.
type Key struct {
	Method string
	URI    string
	IV     string
}

// Segment is one media segment of a variant playlist.
type Segment struct {
	URI      string
	Duration float64
	Sequence int
	Key      *Key // encryption active for this segment, nil if none
}

// MediaPlaylist is a parsed variant playlist.
type MediaPlaylist struct {
	Segments       []Segment
	TargetDuration float64
}

// ParseMaster extracts the variant list from a master playlist.
func ParseMaster(text string) ([]Variant, error) {
	if !strings.HasPrefix(strings.TrimSpace(text), "#EXTM3U") {
		return nil, fmt.Errorf("not an m3u8 playlist")
	}

	var variants []Variant
	var pending *Variant

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			attrs := parseAttributes(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
			v := Variant{}
			if bw, err := strconv.Atoi(attrs["BANDWIDTH"]); err == nil {
				v.Bandwidth = bw
			}
			if res := attrs["RESOLUTION"]; res != "" {
				if idx := strings.IndexByte(res, 'x'); idx != -1 {
					if h, err := strconv.Atoi(res[idx+1:]); err == nil {
						v.ResolutionHeight = h
					}
				}
			}
			pending = &v
		case line == "" || strings.HasPrefix(line, "#"):
			// ignore
		default:
			if pending != nil {
				pending.URI = line
				variants = append(variants, *pending)
				pending = nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning playlist: %w", err)
	}

	if len(variants) == 0 {
		return nil, fmt.Errorf("no variant streams in playlist")
	}
	return variants, nil
}

// ParseMedia extracts the segment list from a variant playlist.
// An #EXT-X-KEY tag applies to all following segments until replaced.
func ParseMedia(text string) (*MediaPlaylist, error) {
	if !strings.HasPrefix(strings.TrimSpace(text), "#EXTM3U") {
		return nil, fmt.Errorf("not an m3u8 playlist")
	}

	pl := &MediaPlaylist{}
	var duration float64
	var key *Key
	seq := 0

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			pl.TargetDuration, _ = strconv.ParseFloat(strings.TrimPrefix(line, "#EXT-X-TARGETDURATION:"), 64)
		case strings.HasPrefix(line, "#EXT-X-MEDIA-SEQUENCE:"):
			seq, _ = strconv.Atoi(strings.TrimPrefix(line, "#EXT-X-MEDIA-SEQUENCE:"))
		case strings.HasPrefix(line, "#EXT-X-KEY:"):
			attrs := parseAttributes(strings.TrimPrefix(line, "#EXT-X-KEY:"))
			if attrs["METHOD"] == "NONE" {
				key = nil
			} else {
				key = &Key{Method: attrs["METHOD"], URI: attrs["URI"], IV: attrs["IV"]}
			}
		case strings.HasPrefix(line, "#EXTINF:"):
			value := strings.TrimPrefix(line, "#EXTINF:")
			if idx := strings.IndexByte(value, ','); idx != -1 {
				value = value[:idx]
			}
			duration, _ = strconv.ParseFloat(value, 64)
		case line == "" || strings.HasPrefix(line, "#"):
			// ignore
		default:
			pl.Segments = append(pl.Segments, Segment{
				URI:      line,
				Duration: duration,
				Sequence: seq,
				Key:      key,
			})
			seq++
			duration = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning playlist: %w", err)
	}

	if len(pl.Segments) == 0 {
		return nil, fmt.Errorf("no segments in playlist")
	}
	return pl, nil
}

// parseAttributes splits an attribute list such as
// `BANDWIDTH=640000,RESOLUTION=1280x720,CODECS="avc1,mp4a"` into a map.
// Quoted values may contain commas.
func parseAttributes(list string) map[string]string {
	attrs := make(map[string]string)
	var k strings.Builder
	var v strings.Builder
	inValue := false
	inQuotes := false

	flush := func() {
		if k.Len() > 0 {
			attrs[k.String()] = v.String()
		}
		k.Reset()
		v.Reset()
		inValue = false
	}

	for _, r := range list {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == '=' && !inValue:
			inValue = true
		case r == ',' && !inQuotes:
			flush()
		case inValue:
			v.WriteRune(r)
		default:
			k.WriteRune(r)
		}
	}
	flush()
	return attrs
}

// BaseURL returns the directory portion of a playlist URL, with a
// trailing slash, for resolving relative segment URIs.
func BaseURL(playlistURL string) string {
	idx := strings.LastIndexByte(playlistURL, '/')
	if idx == -1 {
		return playlistURL
	}
	return playlistURL[:idx+1]
}

// ResolveURI joins a possibly-relative segment URI with the base URL.
func ResolveURI(base, uri string) string {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	return base + uri
}
