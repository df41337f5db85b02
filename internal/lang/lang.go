// Package lang holds the fixed language code tables shared by the
// catalog, subtitle and mux stages.
package lang

import (
	"regexp"
	"sort"
	"strings"
)

// Code is one entry of the subtitle language table.
type Code struct {
	ISO   string // ISO-639-2 three-letter code
	Label string // human-readable name
}

// dubNames maps the display names used in "(... Dub)" title suffixes
// to ISO codes. The empty name maps to the unknown code.
var dubNames = map[string]string{
	"English":    "eng",
	"Spanish":    "spa",
	"French":     "fre",
	"Portuguese": "por",
	"Arabic":     "ara",
	"Italian":    "ita",
	"German":     "ger",
	"Russian":    "rus",
	"Japanese":   "jpn",
	"":           "unk",
}

// subtitleCodes is the closed table of subtitle language tags the
// service emits. Tags outside this table never produce a track.
var subtitleCodes = map[string]Code{
	"en - us": {"eng", "English (US)"},
	"es - la": {"spa", "Spanish (Latin American)"},
	"es - es": {"spa", "Spanish"},
	"fr - fr": {"fre", "French"},
	"pt - br": {"por", "Portuguese (Brazilian)"},
	"pt - pt": {"por", "Portuguese"},
	"ar - me": {"ara", "Arabic"},
	"it - it": {"ita", "Italian"},
	"de - de": {"ger", "German"},
	"ru - ru": {"rus", "Russian"},
	"":        {"unk", "Unknown"},
}

var dubRegex = regexp.MustCompile(`\((English|Spanish|French|Portuguese|Arabic|Italian|German|Russian|Japanese) Dub\)$`)

// DetectDub extracts the audio language code from a "(<Lang> Dub)"
// title suffix. Returns the empty string when no suffix is present.
func DetectDub(title string) string {
	m := dubRegex.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return ""
	}
	return dubNames[m[1]]
}

// DubCodes returns the deduplicated, sorted set of valid audio
// language codes for flag validation.
func DubCodes() []string {
	seen := make(map[string]bool, len(dubNames))
	var codes []string
	for _, c := range dubNames {
		if !seen[c] {
			seen[c] = true
			codes = append(codes, c)
		}
	}
	sort.Strings(codes)
	return codes
}

// IsDubCode reports whether code is a known audio language code.
func IsDubCode(code string) bool {
	for _, c := range dubNames {
		if c == code {
			return true
		}
	}
	return false
}

// Lookup resolves a raw subtitle language tag (e.g. "en - us")
// against the fixed table.
func Lookup(tag string) (Code, bool) {
	c, ok := subtitleCodes[tag]
	return c, ok
}

// NormalizeTag converts a compact four-letter tag such as "enUS" into
// the table form "en - us". Tags already in table form pass through.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if strings.Contains(tag, " - ") {
		return strings.ToLower(tag)
	}
	if len(tag) != 4 {
		return strings.ToLower(tag)
	}
	return strings.ToLower(tag[:2] + " - " + tag[2:])
}

// DescribeList maps a comma-separated list of raw subtitle tags to
// human-readable names. Unknown tags are returned separately so the
// caller can report them.
func DescribeList(csv string) (labels []string, unknown []string) {
	for _, tag := range strings.Split(csv, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		c, ok := subtitleCodes[tag]
		if !ok {
			unknown = append(unknown, tag)
			continue
		}
		labels = append(labels, c.Label)
	}
	return labels, unknown
}

// ResolveAudio applies the audio language precedence: a dub detected
// in the series title wins over one detected in the episode title,
// which wins over the user default.
func ResolveAudio(titleDub, episodeDub, fallback string) string {
	if titleDub != "" {
		return titleDub
	}
	if episodeDub != "" {
		return episodeDub
	}
	return fallback
}
