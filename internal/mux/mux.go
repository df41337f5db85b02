// Package mux synthesizes and executes muxer invocations. A plan is
// built declaratively from the downloaded artifacts and then handed to
// mkvmerge or ffmpeg.
package mux

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"kani/internal/config"
	"kani/internal/console"
	"kani/internal/media"
)

// PlanInput collects everything known about an episode after download.
type PlanInput struct {
	VideoFile  string // empty when the stream was not downloaded
	AudioLang  string
	ReleaseTag string
	Subtitles  []media.SubtitleTrack
	Fonts      []string // font names referenced by the subtitle scripts
	OutputBase string
	MP4        bool
	MuxSubs    bool
	FontsDir   string
}

// Synthesize builds the mux plan for one episode. It returns false
// when there is nothing to mux, which happens when no video file was
// produced.
func Synthesize(in PlanInput) (media.MuxPlan, bool) {
	if in.VideoFile == "" {
		return media.MuxPlan{}, false
	}

	plan := media.MuxPlan{
		Container:  media.MKV,
		VideoFile:  in.VideoFile,
		AudioLang:  in.AudioLang,
		ReleaseTag: in.ReleaseTag,
		OutputBase: in.OutputBase,
	}
	if in.MP4 {
		plan.Container = media.MP4
	}

	// Subtitle tracks only go into mkv output; the mp4 remux copies
	// video and audio and the scripts stay on disk beside it.
	if in.MuxSubs && len(in.Subtitles) > 0 && plan.Container == media.MKV {
		plan.Subtitles = in.Subtitles
		plan.Fonts = ResolveFonts(in.Fonts, in.FontsDir)
	}
	return plan, true
}

// fontExtensions are tried in order when resolving a font name to a
// file in the fonts directory.
var fontExtensions = []string{".ttf", ".otf", ".TTF", ".OTF"}

// ResolveFonts maps font names to files that actually exist in dir.
// Names with no matching file are dropped with a warning.
func ResolveFonts(names []string, dir string) []string {
	var paths []string
	for _, name := range names {
		found := ""
		for _, ext := range fontExtensions {
			candidate := filepath.Join(dir, name+ext)
			if _, err := os.Stat(candidate); err == nil {
				found = candidate
				break
			}
		}
		if found == "" {
			console.Warnf("font %q not found in %s, skipping attachment", name, dir)
			continue
		}
		paths = append(paths, found)
	}
	return paths
}

// MkvmergeArgs builds the argument list for an mkvmerge invocation.
func MkvmergeArgs(plan media.MuxPlan) []string {
	args := []string{
		"--output", plan.OutputBase + ".mkv",
		"--disable-track-statistics-tags",
		"--engage", "no_variable_data",
		"--track-name", "0:[" + plan.ReleaseTag + "]",
		"--language", "1:" + plan.AudioLang,
		plan.VideoFile,
	}
	for _, sub := range plan.Subtitles {
		name := sub.LangLabel
		if sub.Title != "" {
			name += " / " + sub.Title
		}
		args = append(args,
			"--track-name", "0:"+name,
			"--language", "0:"+sub.LangCode,
			"--default-track", "0:no",
			sub.File,
		)
	}
	for _, font := range plan.Fonts {
		args = append(args, "--attach-file", font)
	}
	return args
}

// FFmpegArgs builds the argument list for an ffmpeg remux to mp4.
func FFmpegArgs(plan media.MuxPlan) []string {
	return []string{
		"-i", plan.VideoFile,
		"-map", "0",
		"-c:v", "copy",
		"-c:a", "copy",
		"-metadata", "encoding_tool=kani",
		"-metadata:s:v:0", "title=[" + plan.ReleaseTag + "]",
		"-metadata:s:a:0", "language=" + plan.AudioLang,
		plan.OutputBase + ".mp4",
	}
}

// Available reports whether the binary can be found, either as a path
// or on PATH.
func Available(bin string) bool {
	_, err := exec.LookPath(bin)
	return err == nil
}

// writeOptionsFile serializes mkvmerge arguments to a JSON options
// file, the form mkvmerge accepts via @file. Long subtitle and font
// lists overflow command lines otherwise.
func writeOptionsFile(plan media.MuxPlan, args []string) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("serializing options: %w", err)
	}
	path := plan.OutputBase + ".options.json"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing options file: %w", err)
	}
	return path, nil
}

// Run executes the muxer for the plan. With mkv output the arguments
// go through an options file; the file is removed afterwards unless
// keepOptions is set.
func Run(plan media.MuxPlan, cfg *config.Config, keepOptions bool) error {
	if plan.Container == media.MP4 {
		return runCommand(cfg.Bins.FFmpeg, FFmpegArgs(plan))
	}

	args := MkvmergeArgs(plan)
	optFile, err := writeOptionsFile(plan, args)
	if err != nil {
		return err
	}
	if !keepOptions {
		defer os.Remove(optFile)
	}
	return runCommand(cfg.Bins.MKVMerge, []string{"@" + optFile})
}

func runCommand(bin string, args []string) error {
	cmd := exec.Command(bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", filepath.Base(bin), err, out)
	}
	return nil
}
