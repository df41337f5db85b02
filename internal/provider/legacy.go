package provider

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"kani/internal/catalog"
	"kani/internal/console"
	"kani/internal/lang"
	"kani/internal/subs"
)

// Legacy talks to the first-generation XML RPC endpoints. Subtitle
// payloads are encrypted and need the id-keyed decryptor.
type Legacy struct {
	site
}

func (l *Legacy) Name() string { return "legacy" }

func (l *Legacy) EpisodeFeed(showID string) (*catalog.Feed, error) {
	return l.site.EpisodeFeed(showID)
}

// standard-config RPC parameters of the 480p encode, used only to
// re-derive the internal video id.
const (
	stdVideoFormat  = "106"
	stdVideoQuality = "61"
)

// listingEntry is one subtitle advertised by the listing RPC.
type listingEntry struct {
	ID    string
	Title string
}

func (l *Legacy) Subtitles(req SubtitleRequest) ([]subs.Raw, error) {
	mediaID := req.MediaID
	if !req.HasStream {
		derived, err := l.deriveVideoID(req.MediaID)
		if err != nil {
			console.Errorf("re-deriving video id: %v", err)
			mediaID = "0"
		} else {
			mediaID = derived
		}
	}

	if n, err := strconv.Atoi(mediaID); err != nil || n <= 0 {
		return nil, fmt.Errorf("can't get video id for subtitles list")
	}

	res, err := l.client.Fetch(l.url()+"/xml/?req=RpcApiSubtitle_GetListing&media_id="+mediaID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching subtitle listing: %w", err)
	}
	entries, err := parseSubtitleListing(res.Body)
	if err != nil {
		return nil, err
	}

	var raws []subs.Raw
	for _, entry := range entries {
		raw, err := l.fetchOne(entry)
		if err != nil {
			console.Errorf("subtitle %s: %v", entry.ID, err)
			continue
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

func (l *Legacy) fetchOne(entry listingEntry) (subs.Raw, error) {
	res, err := l.client.Fetch(l.url()+"/xml/?req=RpcApiSubtitle_GetXml&subtitle_script_id="+entry.ID, nil)
	if err != nil {
		return subs.Raw{}, fmt.Errorf("fetching payload: %w", err)
	}

	id, err := strconv.Atoi(entry.ID)
	if err != nil {
		return subs.Raw{}, fmt.Errorf("non-numeric subtitle id %q", entry.ID)
	}

	decrypted, err := subs.Decrypt(id, res.Body)
	if err != nil {
		return subs.Raw{}, fmt.Errorf("decrypting: %w", err)
	}

	script, err := subs.ParseScript(decrypted)
	if err != nil {
		return subs.Raw{}, err
	}

	return subs.Raw{
		ID:    entry.ID,
		Lang:  lang.NormalizeTag(script.LangCode),
		Title: script.Title,
		Body:  []byte(script.ASS),
	}, nil
}

// deriveVideoID asks the standard-config RPC for the internal media
// id when the primary stream lookup failed.
func (l *Legacy) deriveVideoID(mediaID string) (string, error) {
	params := url.Values{
		"req":           {"RpcApiVideoPlayer_GetStandardConfig"},
		"media_id":      {mediaID},
		"video_format":  {stdVideoFormat},
		"video_quality": {stdVideoQuality},
		"aff":           {"crunchyroll-website"},
		"current_page":  {l.url()},
	}
	res, err := l.client.Fetch(l.url()+"/xml/?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	return parseStandardConfigMediaID(res.Body)
}

func parseSubtitleListing(body []byte) ([]listingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing subtitle listing: %w", err)
	}

	var entries []listingEntry
	doc.Find("subtitle").Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr("id")
		if !ok || id == "" {
			return
		}
		title, _ := s.Attr("title")
		entries = append(entries, listingEntry{ID: id, Title: title})
	})
	return entries, nil
}

func parseStandardConfigMediaID(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing standard config: %w", err)
	}
	id := strings.TrimSpace(doc.Find("media_metadata media_id").First().Text())
	if id == "" {
		return "", fmt.Errorf("standard config has no media id")
	}
	return id, nil
}
