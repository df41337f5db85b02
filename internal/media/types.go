// Package media defines shared types for the kani application.
package media

import (
	"fmt"
	"time"
)

// EpisodeKind distinguishes numbered episodes from specials.
type EpisodeKind int

const (
	Episode EpisodeKind = iota
	Special
)

// Letter returns the single-letter prefix used in canonical keys.
func (k EpisodeKind) Letter() string {
	if k == Special {
		return "S"
	}
	return "E"
}

// EpisodeKey identifies one episode within a series feed.
// The canonical string form is the kind letter plus a zero-padded
// two-digit number, e.g. "E05" or "S01".
type EpisodeKey struct {
	Kind   EpisodeKind
	Number int
}

func (k EpisodeKey) String() string {
	return fmt.Sprintf("%s%02d", k.Kind.Letter(), k.Number)
}

// Less orders keys by kind, then by number.
func (k EpisodeKey) Less(other EpisodeKey) bool {
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	return k.Number < other.Number
}

// CatalogEpisode is one entry of a parsed episode feed.
// Immutable once built.
type CatalogEpisode struct {
	MediaID        string
	SeriesTitle    string
	EpisodeTitle   string
	Key            EpisodeKey
	PremiumAirDate time.Time
	FreeAirDate    time.Time
	SubtitleLangs  []string // raw feed language tags, e.g. "en - us"
}

// QualityTable maps server -> resolution label -> variant URL.
// Values are never empty strings.
type QualityTable map[string]map[string]string

// ResolvedStream is the single variant chosen for download.
// The zero value means "unresolved".
type ResolvedStream struct {
	Server     string
	Resolution string
	URL        string
}

// Resolved reports whether a stream was actually selected.
func (r ResolvedStream) Resolved() bool { return r.URL != "" }

// SubtitleTrack is one normalized subtitle, written to disk.
// Both acquisition generations converge to this shape.
type SubtitleTrack struct {
	ID        string
	LangCode  string // ISO-639-2 three-letter code
	LangLabel string // human-readable language name
	Title     string
	File      string   // on-disk path
	Fonts     []string // font names referenced by the script
}

// Container is the output container format of a mux plan.
type Container int

const (
	MKV Container = iota
	MP4
)

func (c Container) String() string {
	if c == MP4 {
		return "mp4"
	}
	return "mkv"
}

// MuxPlan is the declarative input for one muxer invocation.
// It is consumed by the mux package and never persisted, except for
// the optional serialized options file written for auditing.
type MuxPlan struct {
	Container  Container
	VideoFile  string
	AudioLang  string
	ReleaseTag string
	Subtitles  []SubtitleTrack
	Fonts      []string // font file paths that exist on disk (mkv only)
	OutputBase string
}
