package catalog

import (
	"time"

	"kani/internal/media"
	"kani/internal/selector"
)

// Selection is the outcome of matching a feed against a selector set.
type Selection struct {
	// Episodes are the entries to process, in feed traversal order.
	Episodes []media.CatalogEpisode
	// NotYetAvailable are selected entries whose premium air date is
	// still in the future. They are reported, not processed.
	NotYetAvailable []media.CatalogEpisode
}

// Match selects feed entries whose key is in the selector set and
// whose premium air date is not in the future relative to now.
func Match(feed *Feed, sel selector.Result, now time.Time) Selection {
	var s Selection
	for _, ep := range feed.Episodes {
		if !sel.Contains(ep.Key) {
			continue
		}
		if ep.PremiumAirDate.After(now) {
			s.NotYetAvailable = append(s.NotYetAvailable, ep)
			continue
		}
		s.Episodes = append(s.Episodes, ep)
	}
	return s
}
