package subs

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Script is a decrypted legacy subtitle script.
type Script struct {
	ID       string
	Title    string
	LangCode string // compact tag, e.g. "enUS"
	ASS      string // rendered track text
}

type scriptXML struct {
	XMLName   xml.Name   `xml:"subtitle_script"`
	ID        string     `xml:"id,attr"`
	Title     string     `xml:"title,attr"`
	LangCode  string     `xml:"lang_code,attr"`
	WrapStyle string     `xml:"wrap_style,attr"`
	PlayResX  string     `xml:"play_res_x,attr"`
	PlayResY  string     `xml:"play_res_y,attr"`
	Styles    []styleXML `xml:"styles>style"`
	Events    []eventXML `xml:"events>event"`
}

type styleXML struct {
	Name            string `xml:"name,attr"`
	FontName        string `xml:"font_name,attr"`
	FontSize        string `xml:"font_size,attr"`
	PrimaryColour   string `xml:"primary_colour,attr"`
	SecondaryColour string `xml:"secondary_colour,attr"`
	OutlineColour   string `xml:"outline_colour,attr"`
	BackColour      string `xml:"back_colour,attr"`
	Bold            string `xml:"bold,attr"`
	Italic          string `xml:"italic,attr"`
	Underline       string `xml:"underline,attr"`
	Strikeout       string `xml:"strikeout,attr"`
	ScaleX          string `xml:"scale_x,attr"`
	ScaleY          string `xml:"scale_y,attr"`
	Spacing         string `xml:"spacing,attr"`
	Angle           string `xml:"angle,attr"`
	BorderStyle     string `xml:"border_style,attr"`
	Outline         string `xml:"outline,attr"`
	Shadow          string `xml:"shadow,attr"`
	Alignment       string `xml:"alignment,attr"`
	MarginL         string `xml:"margin_l,attr"`
	MarginR         string `xml:"margin_r,attr"`
	MarginV         string `xml:"margin_v,attr"`
	Encoding        string `xml:"encoding,attr"`
}

type eventXML struct {
	Start   string `xml:"start,attr"`
	End     string `xml:"end,attr"`
	Style   string `xml:"style,attr"`
	Name    string `xml:"name,attr"`
	MarginL string `xml:"margin_l,attr"`
	MarginR string `xml:"margin_r,attr"`
	MarginV string `xml:"margin_v,attr"`
	Effect  string `xml:"effect,attr"`
	Text    string `xml:"text,attr"`
}

// ParseScript parses a decrypted script and renders it as an ASS
// track.
func ParseScript(data []byte) (*Script, error) {
	var sx scriptXML
	if err := xml.Unmarshal(data, &sx); err != nil {
		return nil, fmt.Errorf("parsing subtitle script: %w", err)
	}

	var b strings.Builder
	b.WriteString("[Script Info]\r\n")
	fmt.Fprintf(&b, "Title: %s\r\n", sx.Title)
	b.WriteString("ScriptType: v4.00+\r\n")
	fmt.Fprintf(&b, "WrapStyle: %s\r\n", sx.WrapStyle)
	fmt.Fprintf(&b, "PlayResX: %s\r\n", sx.PlayResX)
	fmt.Fprintf(&b, "PlayResY: %s\r\n", sx.PlayResY)
	b.WriteString("\r\n[V4+ Styles]\r\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, " +
		"Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, " +
		"Alignment, MarginL, MarginR, MarginV, Encoding\r\n")
	for _, s := range sx.Styles {
		fmt.Fprintf(&b, "Style: %s\r\n", strings.Join([]string{
			s.Name, s.FontName, s.FontSize, s.PrimaryColour, s.SecondaryColour,
			s.OutlineColour, s.BackColour, s.Bold, s.Italic, s.Underline, s.Strikeout,
			s.ScaleX, s.ScaleY, s.Spacing, s.Angle, s.BorderStyle, s.Outline, s.Shadow,
			s.Alignment, s.MarginL, s.MarginR, s.MarginV, s.Encoding,
		}, ","))
	}
	b.WriteString("\r\n[Events]\r\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\n")
	for _, e := range sx.Events {
		fmt.Fprintf(&b, "Dialogue: 0,%s\r\n", strings.Join([]string{
			e.Start, e.End, e.Style, e.Name, e.MarginL, e.MarginR, e.MarginV, e.Effect, e.Text,
		}, ","))
	}

	return &Script{
		ID:       sx.ID,
		Title:    sx.Title,
		LangCode: sx.LangCode,
		ASS:      b.String(),
	}, nil
}
