package hls

import "testing"

const masterFixture = `#EXTM3U
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=640000,RESOLUTION=428x240,CODECS="avc1.42c015,mp4a.40.2"
https://a.example.net/v/240.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=1100000,RESOLUTION=856x480
https://a.example.net/v/480.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=4100000,RESOLUTION=1920x1080
https://b.example.org/v/1080.m3u8
`

const mediaFixture = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXT-X-KEY:METHOD=AES-128,URI="https://a.example.net/key",IV=0x0123456789abcdef0123456789abcdef
#EXTINF:9.600,
seg-0.ts
#EXTINF:9.600,
seg-1.ts
#EXT-X-KEY:METHOD=NONE
#EXTINF:4.821,
seg-2.ts
#EXT-X-ENDLIST
`

func TestParseMaster(t *testing.T) {
	variants, err := ParseMaster(masterFixture)
	if err != nil {
		t.Fatalf("ParseMaster: %v", err)
	}
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(variants))
	}
	if variants[0].ResolutionHeight != 240 || variants[0].Bandwidth != 640000 {
		t.Errorf("variant[0] = %+v", variants[0])
	}
	if variants[2].URI != "https://b.example.org/v/1080.m3u8" {
		t.Errorf("variant[2].URI = %q", variants[2].URI)
	}
}

func TestParseMasterRejectsGarbage(t *testing.T) {
	if _, err := ParseMaster("<html>not a playlist</html>"); err == nil {
		t.Error("expected error for non-m3u8 input")
	}
	if _, err := ParseMaster("#EXTM3U\n"); err == nil {
		t.Error("expected error for playlist without variants")
	}
}

func TestParseMedia(t *testing.T) {
	pl, err := ParseMedia(mediaFixture)
	if err != nil {
		t.Fatalf("ParseMedia: %v", err)
	}
	if len(pl.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(pl.Segments))
	}
	if pl.TargetDuration != 10 {
		t.Errorf("TargetDuration = %v, want 10", pl.TargetDuration)
	}

	first := pl.Segments[0]
	if first.Key == nil || first.Key.Method != "AES-128" {
		t.Errorf("segment 0 key = %+v, want AES-128", first.Key)
	}
	if first.Key.URI != "https://a.example.net/key" {
		t.Errorf("key URI = %q", first.Key.URI)
	}
	if first.Duration != 9.6 {
		t.Errorf("segment 0 duration = %v", first.Duration)
	}

	if pl.Segments[2].Key != nil {
		t.Error("METHOD=NONE should clear the active key")
	}
	if pl.Segments[2].Sequence != 2 {
		t.Errorf("segment 2 sequence = %d", pl.Segments[2].Sequence)
	}
}

func TestParseAttributesQuotedComma(t *testing.T) {
	attrs := parseAttributes(`BANDWIDTH=1,CODECS="avc1.42c015,mp4a.40.2",RESOLUTION=640x360`)
	if attrs["CODECS"] != "avc1.42c015,mp4a.40.2" {
		t.Errorf("CODECS = %q", attrs["CODECS"])
	}
	if attrs["RESOLUTION"] != "640x360" {
		t.Errorf("RESOLUTION = %q", attrs["RESOLUTION"])
	}
}

func TestResolveURI(t *testing.T) {
	base := BaseURL("https://a.example.net/v/480.m3u8")
	if base != "https://a.example.net/v/" {
		t.Errorf("BaseURL = %q", base)
	}
	if got := ResolveURI(base, "seg-0.ts"); got != "https://a.example.net/v/seg-0.ts" {
		t.Errorf("ResolveURI relative = %q", got)
	}
	if got := ResolveURI(base, "https://c.example.com/seg.ts"); got != "https://c.example.com/seg.ts" {
		t.Errorf("ResolveURI absolute = %q", got)
	}
}
