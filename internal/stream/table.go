package stream

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"kani/internal/hls"
	"kani/internal/media"
)

// Selection failures. Both skip the episode's download and mux stages
// while subtitles are still attempted.
var (
	ErrServerNotSelected  = errors.New("server not selected")
	ErrQualityNotSelected = errors.New("quality not selected")
)

// Table is the per-episode server x quality table built from a master
// playlist, plus the reporting metadata derived alongside it.
type Table struct {
	Qualities media.QualityTable
	// Servers in discovery order.
	Servers []string
	// MaxHeight is the highest resolution observed across variants.
	MaxHeight int
	// Report is the deduplicated, sorted human-readable quality list.
	Report []string
	// Warnings collects data-integrity notes (same server+resolution
	// with divergent URLs). Not fatal.
	Warnings []string
}

// BuildTable folds master playlist variants into a quality table.
// Variants with empty URLs are dropped. When two variants share a
// server and resolution but disagree on the URL, the first one wins
// and a warning is recorded.
func BuildTable(variants []hls.Variant) *Table {
	t := &Table{Qualities: make(media.QualityTable)}
	reportSeen := make(map[string]bool)

	for _, v := range variants {
		if v.URI == "" || v.ResolutionHeight == 0 {
			continue
		}
		server := hostOf(v.URI)
		if server == "" {
			continue
		}
		label := fmt.Sprintf("%dp", v.ResolutionHeight)
		if v.ResolutionHeight > t.MaxHeight {
			t.MaxHeight = v.ResolutionHeight
		}

		if _, ok := t.Qualities[server]; !ok {
			t.Qualities[server] = make(map[string]string)
			t.Servers = append(t.Servers, server)
		}
		if existing, ok := t.Qualities[server][label]; ok {
			if existing != v.URI {
				t.Warnings = append(t.Warnings,
					fmt.Sprintf("divergent URLs for %s @ %s, keeping first", server, label))
			}
		} else {
			t.Qualities[server][label] = v.URI
		}

		entry := fmt.Sprintf("%s (%dKiB/s)", label, v.Bandwidth/1024)
		if !reportSeen[entry] {
			reportSeen[entry] = true
			t.Report = append(t.Report, entry)
		}
	}

	sort.Slice(t.Report, func(i, j int) bool {
		return reportHeight(t.Report[i]) < reportHeight(t.Report[j])
	})
	return t
}

func reportHeight(entry string) int {
	h, _ := strconv.Atoi(strings.TrimSuffix(strings.Fields(entry)[0], "p"))
	return h
}

func hostOf(uri string) string {
	rest, ok := strings.CutPrefix(uri, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(uri, "http://")
		if !ok {
			return ""
		}
	}
	if idx := strings.IndexByte(rest, '/'); idx != -1 {
		rest = rest[:idx]
	}
	return rest
}

// OrderedServers returns the server list with preferred hostname
// suffixes moved to the front in priority order. Remaining servers
// keep discovery order.
func (t *Table) OrderedServers(preferred []string) []string {
	ordered := make([]string, 0, len(t.Servers))
	taken := make(map[string]bool)

	for _, suffix := range preferred {
		for _, s := range t.Servers {
			if !taken[s] && strings.HasSuffix(s, suffix) {
				ordered = append(ordered, s)
				taken[s] = true
			}
		}
	}
	for _, s := range t.Servers {
		if !taken[s] {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

// Select applies the quality and server preferences over the table.
// The quality "max" resolves to the highest observed resolution.
// serverIndex is 1-based over the preferred-first server ordering.
// Selection is pure: identical inputs return identical results.
func (t *Table) Select(quality string, serverIndex int, preferred []string) (media.ResolvedStream, error) {
	if quality == "max" || heightOf(quality) > t.MaxHeight {
		quality = fmt.Sprintf("%dp", t.MaxHeight)
	}

	servers := t.OrderedServers(preferred)
	if serverIndex < 1 || serverIndex > len(servers) {
		return media.ResolvedStream{}, fmt.Errorf("%w: index %d of %d servers", ErrServerNotSelected, serverIndex, len(servers))
	}

	server := servers[serverIndex-1]
	url, ok := t.Qualities[server][quality]
	if !ok {
		return media.ResolvedStream{}, fmt.Errorf("%w: %s not offered by %s", ErrQualityNotSelected, quality, server)
	}

	return media.ResolvedStream{Server: server, Resolution: quality, URL: url}, nil
}

func heightOf(label string) int {
	h, _ := strconv.Atoi(strings.TrimSuffix(label, "p"))
	return h
}
