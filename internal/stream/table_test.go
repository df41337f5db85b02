package stream

import (
	"errors"
	"testing"

	"kani/internal/hls"
)

func testVariants() []hls.Variant {
	return []hls.Variant{
		{ResolutionHeight: 240, Bandwidth: 640 * 1024, URI: "https://cdn1.dlvr1.net/v/240.m3u8"},
		{ResolutionHeight: 1080, Bandwidth: 4100 * 1024, URI: "https://cdn1.dlvr1.net/v/1080.m3u8"},
		{ResolutionHeight: 720, Bandwidth: 2100 * 1024, URI: "https://a.vrv.co/v/720.m3u8"},
		{ResolutionHeight: 1080, Bandwidth: 4100 * 1024, URI: "https://a.vrv.co/v/1080.m3u8"},
		{ResolutionHeight: 720, Bandwidth: 2100 * 1024, URI: "https://cdn2.dlvr1.net/v/720.m3u8"},
	}
}

func TestBuildTable(t *testing.T) {
	table := BuildTable(testVariants())

	if table.MaxHeight != 1080 {
		t.Errorf("MaxHeight = %d", table.MaxHeight)
	}
	if len(table.Servers) != 3 {
		t.Fatalf("Servers = %v", table.Servers)
	}
	// discovery order
	if table.Servers[0] != "cdn1.dlvr1.net" || table.Servers[1] != "a.vrv.co" {
		t.Errorf("discovery order = %v", table.Servers)
	}
	if got := table.Qualities["a.vrv.co"]["720p"]; got != "https://a.vrv.co/v/720.m3u8" {
		t.Errorf("table entry = %q", got)
	}
	// report is deduplicated and sorted ascending
	want := []string{"240p (640KiB/s)", "720p (2100KiB/s)", "1080p (4100KiB/s)"}
	if len(table.Report) != len(want) {
		t.Fatalf("Report = %v", table.Report)
	}
	for i := range want {
		if table.Report[i] != want[i] {
			t.Errorf("Report[%d] = %q, want %q", i, table.Report[i], want[i])
		}
	}
}

func TestBuildTableDivergentURLWarning(t *testing.T) {
	table := BuildTable([]hls.Variant{
		{ResolutionHeight: 720, Bandwidth: 1, URI: "https://a.vrv.co/v/720a.m3u8"},
		{ResolutionHeight: 720, Bandwidth: 1, URI: "https://a.vrv.co/v/720b.m3u8"},
	})
	if len(table.Warnings) != 1 {
		t.Fatalf("Warnings = %v", table.Warnings)
	}
	// first wins
	if got := table.Qualities["a.vrv.co"]["720p"]; got != "https://a.vrv.co/v/720a.m3u8" {
		t.Errorf("entry = %q", got)
	}
}

func TestBuildTableNeverStoresEmptyURL(t *testing.T) {
	table := BuildTable([]hls.Variant{
		{ResolutionHeight: 720, Bandwidth: 1, URI: ""},
		{ResolutionHeight: 480, Bandwidth: 1, URI: "https://a.vrv.co/v/480.m3u8"},
	})
	for server, res := range table.Qualities {
		for label, url := range res {
			if url == "" {
				t.Errorf("empty URL stored for %s %s", server, label)
			}
		}
	}
}

func TestOrderedServersPreferredFirst(t *testing.T) {
	table := BuildTable(testVariants())
	ordered := table.OrderedServers([]string{".vrv.co"})
	if ordered[0] != "a.vrv.co" {
		t.Errorf("ordered = %v", ordered)
	}
	// remaining keep discovery order
	if ordered[1] != "cdn1.dlvr1.net" || ordered[2] != "cdn2.dlvr1.net" {
		t.Errorf("ordered tail = %v", ordered)
	}
}

func TestSelect(t *testing.T) {
	table := BuildTable(testVariants())
	preferred := []string{".vrv.co"}

	got, err := table.Select("720p", 1, preferred)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.Server != "a.vrv.co" || got.Resolution != "720p" {
		t.Errorf("selected %+v", got)
	}

	// deterministic: repeated calls return the identical result
	again, err := table.Select("720p", 1, preferred)
	if err != nil || again != got {
		t.Errorf("selection not deterministic: %+v vs %+v", got, again)
	}
}

func TestSelectMax(t *testing.T) {
	table := BuildTable(testVariants())
	got, err := table.Select("max", 1, []string{".vrv.co"})
	if err != nil {
		t.Fatalf("Select max: %v", err)
	}
	if got.Resolution != "1080p" {
		t.Errorf("max resolved to %q", got.Resolution)
	}
}

func TestSelectOverMaxClamps(t *testing.T) {
	table := BuildTable([]hls.Variant{
		{ResolutionHeight: 480, Bandwidth: 1, URI: "https://a.vrv.co/v/480.m3u8"},
	})
	got, err := table.Select("1080p", 1, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got.Resolution != "480p" {
		t.Errorf("clamped to %q, want 480p", got.Resolution)
	}
}

func TestSelectFailures(t *testing.T) {
	table := BuildTable(testVariants())

	if _, err := table.Select("720p", 9, nil); !errors.Is(err, ErrServerNotSelected) {
		t.Errorf("out-of-range server err = %v", err)
	}
	if _, err := table.Select("720p", 0, nil); !errors.Is(err, ErrServerNotSelected) {
		t.Errorf("zero server err = %v", err)
	}
	// cdn1 has no 720p entry in discovery order position 1
	if _, err := table.Select("720p", 1, nil); !errors.Is(err, ErrQualityNotSelected) {
		t.Errorf("missing quality err = %v", err)
	}
}
