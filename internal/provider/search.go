package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"kani/internal/httputil"
)

// SearchResult is one series entry of the search page.
type SearchResult struct {
	Name string
	URI  string // site-relative series path
}

// SearchClient scrapes the public search and listing pages. Search is
// generation-independent.
type SearchClient struct {
	client *httputil.Client
	base   string
}

// NewSearchClient builds a search client for the given site hostname.
func NewSearchClient(client *httputil.Client, base string) *SearchClient {
	return &SearchClient{client: client, base: base}
}

func (s *SearchClient) url() string { return "https://" + s.base }

var secureCommentRegex = regexp.MustCompile(`(?s)^/\*-secure-\n(.*)\n\*/$`)

// Search queries the search page and returns the series results.
// Library-only and non-series entries are dropped.
func (s *SearchClient) Search(query string, page int) ([]SearchResult, error) {
	params := url.Values{
		"q":  {query},
		"sp": {fmt.Sprint(page)},
		"st": {"m"},
	}
	res, err := s.client.Fetch(s.url()+"/search_page?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	html, err := unwrapSecureJSON(res.Body)
	if err != nil {
		return nil, err
	}
	return parseSearchResults(html)
}

// unwrapSecureJSON strips the secure comment wrapper off the search
// response and returns the embedded result HTML.
func unwrapSecureJSON(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if m := secureCommentRegex.FindSubmatch(trimmed); m != nil {
		trimmed = m[1]
	}

	var payload struct {
		Data struct {
			MainHTML string `json:"main_html"`
		} `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return "", fmt.Errorf("parsing search response: %w", err)
	}
	if payload.Data.MainHTML == "" {
		return "", fmt.Errorf("search response has no result markup")
	}
	return payload.Data.MainHTML, nil
}

func parseSearchResults(html string) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + html + "</body></html>"))
	if err != nil {
		return nil, fmt.Errorf("parsing search markup: %w", err)
	}

	var results []SearchResult
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		href, ok := li.Find("a").First().Attr("href")
		if !ok {
			return
		}
		name := li.Find(".name").First()
		if name.Length() == 0 {
			return
		}

		// The name node holds the title text followed by a nested
		// "(Series)" / "(Episode)" type marker.
		kind := strings.Trim(strings.TrimSpace(name.Children().First().Text()), "()")
		title := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name.Text()), name.Children().First().Text()))

		if kind != "Series" || strings.HasPrefix(href, "/library/") {
			return
		}
		results = append(results, SearchResult{Name: title, URI: strings.TrimPrefix(href, "/")})
	})
	return results, nil
}

// Season is one season listed on a series videos page.
type Season struct {
	Title string
	// ShowID is the feed id usable with -s, or 0 when the season is
	// region locked.
	ShowID int
}

// Seasons lists the seasons of a series page, resolving each
// season's feed id through its first episode's media page.
func (s *SearchClient) Seasons(seriesURI, fallbackTitle string) ([]Season, error) {
	res, err := s.client.Fetch(s.url()+"/"+strings.TrimPrefix(seriesURI, "/")+"/videos", &httputil.Options{
		Headers: map[string]string{"X-Requested-With": "XMLHttpRequest"},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching season list: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + string(res.Body) + "</body></html>"))
	if err != nil {
		return nil, fmt.Errorf("parsing season list: %w", err)
	}

	list := doc.Find("ul.list-of-seasons")
	if list.Length() == 0 {
		return nil, fmt.Errorf("removed from the catalog")
	}

	var seasons []Season
	var walkErr error
	list.ChildrenFiltered("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		season := Season{Title: fallbackTitle}
		if t, ok := li.Find("a").First().Attr("title"); ok && t != "" {
			season.Title = t
		}

		if id, ok := firstEpisodeID(li); ok {
			showID, err := s.ShowIDFromVideoPage(id)
			if err != nil {
				walkErr = err
				return false
			}
			season.ShowID = showID
		}
		seasons = append(seasons, season)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return seasons, nil
}

var digitsRegex = regexp.MustCompile(`(\d+)`)

func firstEpisodeID(li *goquery.Selection) (string, bool) {
	id, ok := li.Find("[id]").First().Attr("id")
	if !ok {
		return "", false
	}
	m := digitsRegex.FindStringSubmatch(id)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var collectionIDRegex = regexp.MustCompile(`collection_id: "(\d+)"`)

// ShowIDFromVideoPage extracts the collection id from an episode's
// media page. Returns 0 when the page carries none (region lock).
func (s *SearchClient) ShowIDFromVideoPage(mediaID string) (int, error) {
	res, err := s.client.Fetch(s.url()+"/media-"+mediaID, nil)
	if err != nil {
		return 0, fmt.Errorf("fetching video page: %w", err)
	}
	m := collectionIDRegex.FindSubmatch(res.Body)
	if m == nil {
		return 0, nil
	}
	var id int
	fmt.Sscanf(string(m[1]), "%d", &id)
	return id, nil
}
