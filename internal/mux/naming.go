package mux

import (
	"fmt"
	"strings"

	"kani/internal/httputil"
	"kani/internal/media"
)

// NameParts are the inputs to the output base name.
type NameParts struct {
	Group   string
	Title   string // series title, or the -t override
	Episode string // canonical episode key, or the --ep override
	Suffix  string // tag appended in brackets, SIZEp expands to the resolution
	Quality string // selected resolution label, e.g. "720p"
}

// EpisodeLabel picks the episode part of the output name. A number
// supplied by the media page wins over the feed key; bare digits are
// zero-padded to two places, anything else is used as-is.
func EpisodeLabel(key media.EpisodeKey, pageNumber string) string {
	if pageNumber == "" {
		return key.String()
	}
	if isDigits(pageNumber) && len(pageNumber) < 2 {
		return "0" + pageNumber
	}
	return pageNumber
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// OutputBase builds the extension-less output file name:
// "[group] title - epnum [suffix]". The suffix bracket is omitted when
// the suffix is empty.
func OutputBase(p NameParts) string {
	suffix := strings.ReplaceAll(p.Suffix, "SIZEp", p.Quality)
	name := fmt.Sprintf("[%s] %s - %s", p.Group, p.Title, p.Episode)
	if suffix != "" {
		name = fmt.Sprintf("%s [%s]", name, suffix)
	}
	return httputil.SanitizeFilename(name)
}
