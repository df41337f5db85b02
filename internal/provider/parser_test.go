package provider

import (
	"strings"
	"testing"
)

func TestParseSubtitleListing(t *testing.T) {
	body := `<?xml version="1.0" encoding="utf-8"?>
<subtitles>
  <media_id>785001</media_id>
  <subtitle id="20394" title="[English (US)]" />
  <subtitle id="20395" title="[Deutsch]" />
  <subtitle title="[missing id]" />
</subtitles>`

	entries, err := parseSubtitleListing([]byte(body))
	if err != nil {
		t.Fatalf("parseSubtitleListing: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ID != "20394" || entries[0].Title != "[English (US)]" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].ID != "20395" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestParseStandardConfigMediaID(t *testing.T) {
	body := `<?xml version="1.0" encoding="utf-8"?>
<config>
  <media_metadata>
    <media_id>785001</media_id>
    <series_id>1234</series_id>
  </media_metadata>
</config>`

	id, err := parseStandardConfigMediaID([]byte(body))
	if err != nil {
		t.Fatalf("parseStandardConfigMediaID: %v", err)
	}
	if id != "785001" {
		t.Errorf("id = %q", id)
	}

	if _, err := parseStandardConfigMediaID([]byte("<config></config>")); err == nil {
		t.Error("expected error when media id is absent")
	}
}

func TestTitleFromPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"crlf payload", "[Script Info]\r\nTitle: English (US)\r\nScriptType: v4.00+\r\n", "English (US)"},
		{"lf payload", "[Script Info]\nTitle: German\n", "German"},
		{"missing title line", "[Script Info]", ""},
		{"unlabelled second line", "[Script Info]\r\nScriptType: v4.00+\r\n", "ScriptType: v4.00+"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFromPayload([]byte(tt.body)); got != tt.want {
				t.Errorf("titleFromPayload = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrapSecureJSON(t *testing.T) {
	wrapped := "/*-secure-\n{\"result_code\":1,\"data\":{\"main_html\":\"<ul><li>x</li></ul>\"}}\n*/"
	html, err := unwrapSecureJSON([]byte(wrapped))
	if err != nil {
		t.Fatalf("unwrapSecureJSON: %v", err)
	}
	if html != "<ul><li>x</li></ul>" {
		t.Errorf("html = %q", html)
	}

	// bare JSON without the comment wrapper also parses
	bare := `{"data":{"main_html":"<p>ok</p>"}}`
	if html, err := unwrapSecureJSON([]byte(bare)); err != nil || html != "<p>ok</p>" {
		t.Errorf("bare = %q, %v", html, err)
	}

	if _, err := unwrapSecureJSON([]byte("{}")); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestParseSearchResults(t *testing.T) {
	html := `<ul>
  <li><a href="/kobo-the-crab"><span class="name">Kobo the Crab <span>(Series)</span></span></a></li>
  <li><a href="/library/something"><span class="name">Library Thing <span>(Series)</span></span></a></li>
  <li><a href="/media-123"><span class="name">Some Episode <span>(Episode)</span></span></a></li>
</ul>`

	results, err := parseSearchResults(html)
	if err != nil {
		t.Fatalf("parseSearchResults: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %+v, want 1 series", results)
	}
	if results[0].URI != "kobo-the-crab" {
		t.Errorf("URI = %q", results[0].URI)
	}
	if !strings.Contains(results[0].Name, "Kobo the Crab") {
		t.Errorf("Name = %q", results[0].Name)
	}
}
