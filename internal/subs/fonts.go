package subs

import (
	"regexp"
	"sort"
	"strings"
)

var fnOverrideRegex = regexp.MustCompile(`\\fn([^\\}]+)`)

// ExtractFonts returns the font names referenced by an ASS payload:
// the Fontname field of every Style line plus inline \fn overrides.
// The result is deduplicated and sorted.
func ExtractFonts(ass string) []string {
	seen := make(map[string]bool)

	for _, line := range strings.Split(ass, "\n") {
		line = strings.TrimRight(line, "\r")
		if name, ok := strings.CutPrefix(line, "Style: "); ok {
			fields := strings.Split(name, ",")
			if len(fields) > 1 {
				if font := strings.TrimSpace(fields[1]); font != "" {
					seen[font] = true
				}
			}
		}
	}

	for _, m := range fnOverrideRegex.FindAllStringSubmatch(ass, -1) {
		if font := strings.TrimSpace(m[1]); font != "" {
			seen[font] = true
		}
	}

	fonts := make([]string, 0, len(seen))
	for f := range seen {
		fonts = append(fonts, f)
	}
	sort.Strings(fonts)
	return fonts
}

// UnionFonts merges font name sets, keeping the result deduplicated
// and sorted.
func UnionFonts(sets ...[]string) []string {
	seen := make(map[string]bool)
	for _, set := range sets {
		for _, f := range set {
			seen[f] = true
		}
	}
	union := make([]string, 0, len(seen))
	for f := range seen {
		union = append(union, f)
	}
	sort.Strings(union)
	return union
}
