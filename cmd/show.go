package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"kani/internal/catalog"
	"kani/internal/config"
	"kani/internal/console"
	"kani/internal/download"
	"kani/internal/hls"
	"kani/internal/lang"
	"kani/internal/media"
	"kani/internal/mux"
	"kani/internal/provider"
	"kani/internal/selector"
	"kani/internal/stream"
	"kani/internal/subs"
)

// showRun is the root command body: fetch the feed, print it, match
// the selection and process each selected episode in order. Episode
// failures are reported and never block the remaining episodes.
func showRun(cmd *cobra.Command, args []string) error {
	if flagShow == "" {
		return cmd.Help()
	}

	gen := provider.New(client, cfg.Base, cfg.CLI.OldSubs)
	console.Debugf("using %s subtitle generation", gen.Name())

	feed, err := gen.EpisodeFeed(flagShow)
	if err != nil {
		return fmt.Errorf("fetching episode feed: %w", err)
	}

	titleDub := lang.DetectDub(feed.Title)
	now := time.Now()
	printFeed(feed, now)

	if flagEpisodes == "" {
		return nil
	}

	sel := selector.Parse(flagEpisodes)
	if len(sel.Keys) == 0 {
		return fmt.Errorf("selection %q matches no episodes", flagEpisodes)
	}
	selection := catalog.Match(feed, sel, now)

	for _, ep := range selection.NotYetAvailable {
		console.Warnf("%s %q airs %s, skipping", ep.Key, ep.EpisodeTitle,
			ep.PremiumAirDate.Format(time.RFC1123))
	}
	if len(selection.Episodes) == 0 {
		console.Warnf("no selected episode is available yet")
		return nil
	}

	for _, ep := range selection.Episodes {
		if err := processEpisode(gen, feed, ep, titleDub, sel.Batch); err != nil {
			console.Errorf("%s: %v", ep.Key, err)
		}
	}
	return nil
}

// printFeed renders the episode listing with availability info.
func printFeed(feed *catalog.Feed, now time.Time) {
	console.Printf("%s", feed.Title)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Title", "Subtitles", "Premium", "Free"})
	for _, ep := range feed.Episodes {
		labels, unknown := lang.DescribeList(strings.Join(ep.SubtitleLangs, ", "))
		subsCol := strings.Join(labels, ", ")
		if len(unknown) > 0 {
			subsCol += " (+" + strings.Join(unknown, ", ") + ")"
		}
		t.AppendRow(table.Row{ep.Key, ep.EpisodeTitle, subsCol,
			availability(ep.PremiumAirDate, now), availability(ep.FreeAirDate, now)})
	}
	t.Render()
}

func availability(airDate, now time.Time) string {
	if airDate.IsZero() {
		return "unknown"
	}
	if !airDate.After(now) {
		return "now"
	}
	return fmt.Sprintf("in %s", airDate.Sub(now).Round(time.Minute))
}

// processEpisode runs the full per-episode pipeline. Subtitles are
// attempted even when the stream stage failed; only the download and
// mux stages depend on a resolved stream.
func processEpisode(gen provider.Generation, feed *catalog.Feed, ep media.CatalogEpisode, titleDub string, batch bool) error {
	console.Infof("processing %s %q (media %s)", ep.Key, ep.EpisodeTitle, ep.MediaID)

	resolver := stream.NewResolver(client, cfg.Base)

	var (
		page     *stream.Media
		resolved media.ResolvedStream
	)
	page, streamErr := resolver.MediaPage(ep.MediaID)
	if streamErr == nil {
		resolved, streamErr = resolveStream(resolver, page)
	}
	if streamErr != nil {
		if errors.Is(streamErr, stream.ErrRegionLocked) {
			return streamErr
		}
		console.Errorf("%s: stream unavailable: %v", ep.Key, streamErr)
	}

	quality := cfg.CLI.Quality
	if resolved.Resolved() {
		quality = resolved.Resolution
	}
	outputBase := episodeName(feed, ep, page, quality, batch)

	videoFile := ""
	if resolved.Resolved() && !flagSkipDL {
		videoFile = outputBase + ".ts"
		if err := downloadStream(resolver, resolved, videoFile); err != nil {
			console.Errorf("%s: download failed: %v", ep.Key, err)
			videoFile = ""
		}
	}

	var processed subs.Result
	if !flagSkipSubs {
		raws, err := gen.Subtitles(provider.SubtitleRequest{
			MediaID:   ep.MediaID,
			HasStream: streamErr == nil,
			Media:     page,
		})
		if err != nil {
			console.Errorf("%s: subtitles: %v", ep.Key, err)
		} else {
			processed = subs.Process(raws, cfg.CLI.SubsLanguage, outputBase, cfg.Dirs.Content)
		}
	}

	if flagSkipMux {
		return nil
	}

	fontsDir, err := config.ExpandDir(cfg.Dirs.Fonts)
	if err != nil {
		fontsDir = cfg.Dirs.Fonts
	}
	plan, ok := mux.Synthesize(mux.PlanInput{
		VideoFile:  videoFile,
		AudioLang:  lang.ResolveAudio(titleDub, lang.DetectDub(ep.EpisodeTitle), cfg.CLI.DubLanguage),
		ReleaseTag: cfg.CLI.ReleaseGroup,
		Subtitles:  processed.Tracks,
		Fonts:      processed.Fonts,
		OutputBase: outputBase,
		MP4:        cfg.CLI.MP4,
		MuxSubs:    cfg.CLI.MuxSubs,
		FontsDir:   fontsDir,
	})
	if !ok {
		console.Infof("%s: nothing to mux", ep.Key)
		return nil
	}

	bin := cfg.Bins.MKVMerge
	if plan.Container == media.MP4 {
		bin = cfg.Bins.FFmpeg
	}
	if !mux.Available(bin) {
		console.Warnf("%s not found, leaving intermediate files in place", bin)
		return nil
	}
	if err := mux.Run(plan, cfg, cfg.Debug); err != nil {
		return fmt.Errorf("muxing: %w", err)
	}
	console.Infof("muxed: %s.%s", plan.OutputBase, plan.Container)

	trash, err := config.ExpandDir(cfg.Dirs.Trash)
	if err != nil {
		trash = cfg.Dirs.Trash
	}
	if err := mux.Cleanup(plan, cfg.CLI.NoCleanup, trash); err != nil {
		console.Warnf("cleanup: %v", err)
	}
	return nil
}

// resolveStream finds the raw adaptive stream of a media page, builds
// the quality table and applies the configured preferences.
func resolveStream(resolver *stream.Resolver, page *stream.Media) (media.ResolvedStream, error) {
	rawURL, err := stream.FindRawStream(page)
	if err != nil {
		return media.ResolvedStream{}, err
	}

	tbl, err := resolver.MasterTable(rawURL)
	if err != nil {
		return media.ResolvedStream{}, err
	}
	console.Infof("available: %s", strings.Join(tbl.Report, ", "))
	for _, w := range tbl.Warnings {
		console.Warnf("%s", w)
	}

	return tbl.Select(cfg.CLI.Quality, cfg.CLI.Server, cfg.Net.Servers)
}

// episodeName builds the extension-less output name, honoring the
// title and episode overrides. The episode override only applies
// outside batch mode; numbering a whole batch with one value would
// collide.
func episodeName(feed *catalog.Feed, ep media.CatalogEpisode, page *stream.Media, quality string, batch bool) string {
	title := feed.Title
	if flagTitle != "" {
		title = flagTitle
	}
	pageNum := ""
	if page != nil {
		pageNum = page.Metadata.EpisodeNumber
	}
	episode := mux.EpisodeLabel(ep.Key, pageNum)
	if flagEpNum != "" {
		if batch {
			console.Warnf("--ep ignored in batch mode")
		} else {
			episode = flagEpNum
		}
	}
	return mux.OutputBase(mux.NameParts{
		Group:   cfg.CLI.ReleaseGroup,
		Title:   title,
		Episode: episode,
		Suffix:  cfg.CLI.Suffix,
		Quality: quality,
	})
}

// downloadStream fetches the chunk playlist and downloads the
// segments into path.
func downloadStream(resolver *stream.Resolver, resolved media.ResolvedStream, path string) error {
	playlist, err := resolver.MediaPlaylist(resolved.URL)
	if err != nil {
		return err
	}
	console.Infof("downloading %s from %s (%d segments)",
		resolved.Resolution, resolved.Server, len(playlist.Segments))
	return download.Run(client, segmentJob(resolved, playlist, path))
}

// segmentJob builds the download job for a resolved stream. Segment
// and key requests go through the proxy whenever one is configured,
// the same as page requests.
func segmentJob(resolved media.ResolvedStream, playlist *hls.MediaPlaylist, path string) download.Job {
	return download.Job{
		OutputPath:  path,
		Playlist:    playlist,
		BaseURL:     hls.BaseURL(resolved.URL),
		Concurrency: cfg.Net.Concurrency,
		UseProxy:    cfg.Net.Proxy != "",
	}
}
