// Package catalog parses the episode syndication feed and matches it
// against an episode selection.
package catalog

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"kani/internal/media"
)

// Feed is a parsed episode syndication feed.
type Feed struct {
	Title     string
	Simulcast bool
	Episodes  []media.CatalogEpisode
}

var numericRegex = regexp.MustCompile(`^\d+$`)

// feed dates come in RFC1123 flavors depending on the zone spelling
var dateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
}

// Parse builds a Feed from the syndication XML. Entries are walked in
// broadcast order: feeds flagged as simulcast list newest first and
// are reversed. Entries without a numeric episode number are specials
// and numbered by a running counter independent of regular episodes.
func Parse(body []byte) (*Feed, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	channel := doc.Find("channel")
	if channel.Length() == 0 {
		return nil, fmt.Errorf("feed has no channel element")
	}

	feed := &Feed{
		Title:     strings.TrimSuffix(strings.TrimSpace(channel.Find("title").First().Text()), " Episodes"),
		Simulcast: channel.Find(`crunchyroll\:simulcast`).Length() > 0,
	}

	items := channel.Find("item")
	count := items.Length()

	specials := 0
	for i := 0; i < count; i++ {
		idx := i
		if feed.Simulcast {
			idx = count - i - 1
		}
		item := items.Eq(idx)

		rawNum := strings.TrimSpace(item.Find(`crunchyroll\:episodenumber`).Text())
		key := media.EpisodeKey{Kind: media.Episode}
		if numericRegex.MatchString(rawNum) {
			key.Number, _ = strconv.Atoi(rawNum)
		} else {
			specials++
			key = media.EpisodeKey{Kind: media.Special, Number: specials}
		}

		ep := media.CatalogEpisode{
			MediaID:        strings.TrimSpace(item.Find(`crunchyroll\:mediaid`).Text()),
			SeriesTitle:    feed.Title,
			EpisodeTitle:   strings.TrimSpace(item.Find(`crunchyroll\:episodetitle`).Text()),
			Key:            key,
			PremiumAirDate: parseDate(item.Find(`crunchyroll\:premiumpubdate`).Text()),
			FreeAirDate:    parseDate(item.Find(`crunchyroll\:freepubdate`).Text()),
		}

		if subs := strings.TrimSpace(item.Find(`crunchyroll\:subtitlelanguages`).Text()); subs != "" {
			ep.SubtitleLangs = strings.Split(subs, ",")
		}

		feed.Episodes = append(feed.Episodes, ep)
	}

	return feed, nil
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
