// Package selector parses episode selection strings such as
// "1,E05,S2,E01-E10" into canonical episode key sets.
package selector

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"kani/internal/media"
)

var tokenRegex = regexp.MustCompile(`^(?i)(E|S)?(\d{1,3})$`)

// Result is the parsed selection.
type Result struct {
	Keys []media.EpisodeKey
	// Batch is true when more than one episode was selected. In batch
	// mode per-episode filename number overrides are ignored.
	Batch bool
}

// Contains reports whether key is part of the selection.
func (r Result) Contains(key media.EpisodeKey) bool {
	for _, k := range r.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Canonical returns the comma-joined canonical form of the selection.
func (r Result) Canonical() string {
	parts := make([]string, len(r.Keys))
	for i, k := range r.Keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}

// Parse expands a comma-separated selector string into a sorted,
// deduplicated set of episode keys. Tokens are a bare number, a
// letter-prefixed number ("E12", "s3") or a range ("E01-E10", "5-8").
// Malformed tokens and reversed ranges expand to nothing; they are
// ignored, not errors.
func Parse(input string) Result {
	set := make(map[media.EpisodeKey]bool)

	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		for _, key := range expandToken(token) {
			set[key] = true
		}
	}

	keys := make([]media.EpisodeKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	return Result{Keys: keys, Batch: len(keys) > 1}
}

func expandToken(token string) []media.EpisodeKey {
	if strings.Contains(token, "-") {
		return expandRange(token)
	}

	m := tokenRegex.FindStringSubmatch(token)
	if m == nil {
		return nil
	}
	num, _ := strconv.Atoi(m[2])
	return []media.EpisodeKey{{Kind: kindFromLetter(m[1]), Number: num}}
}

func expandRange(token string) []media.EpisodeKey {
	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return nil
	}

	left := tokenRegex.FindStringSubmatch(parts[0])
	right := tokenRegex.FindStringSubmatch(parts[1])
	if left == nil || right == nil {
		return nil
	}

	// The kind is taken from the left endpoint. A right endpoint may
	// carry a letter too, but only if it resolves to the same kind.
	kind := kindFromLetter(left[1])
	if right[1] != "" && kindFromLetter(right[1]) != kind {
		return nil
	}

	first, _ := strconv.Atoi(left[2])
	last, _ := strconv.Atoi(right[2])

	// Reversed or empty ranges are silently ignored, matching the
	// historical behavior of the selector.
	if first >= last {
		return nil
	}

	keys := make([]media.EpisodeKey, 0, last-first+1)
	for n := first; n <= last; n++ {
		keys = append(keys, media.EpisodeKey{Kind: kind, Number: n})
	}
	return keys
}

// kindFromLetter maps a token prefix to its kind. Only a case
// insensitive "S" selects specials; anything else is an episode.
func kindFromLetter(letter string) media.EpisodeKind {
	if strings.EqualFold(letter, "S") {
		return media.Special
	}
	return media.Episode
}
