// Package download fetches HLS media segments with a bounded worker
// pool and assembles them into a single transport stream file. The
// result is all-or-nothing: any segment failure fails the whole
// download and removes the partial output.
package download

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jedib0t/go-pretty/v6/progress"

	"kani/internal/hls"
	"kani/internal/httputil"
)

// Job describes one stream download.
type Job struct {
	OutputPath  string // destination .ts file
	Playlist    *hls.MediaPlaylist
	BaseURL     string
	Concurrency int
	UseProxy    bool
}

type segmentResult struct {
	index int
	data  []byte
	err   error
}

// Run downloads every segment of the playlist and writes them in
// order to the output file.
func Run(client *httputil.Client, job Job) error {
	if job.Concurrency < 1 {
		job.Concurrency = 1
	}
	segments := job.Playlist.Segments

	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetAutoStop(true)
	tracker := &progress.Tracker{
		Message: "Downloading video",
		Total:   int64(len(segments)),
	}
	pw.AppendTracker(tracker)
	go pw.Render()
	defer pw.Stop()

	keys := newKeyCache(client, job.UseProxy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := make(chan int)
	results := make(chan segmentResult, len(segments))

	var wg sync.WaitGroup
	for w := 0; w < job.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				data, err := fetchSegment(client, keys, job, segments[idx])
				if err == nil {
					tracker.Increment(1)
				}
				results <- segmentResult{index: idx, data: data, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range segments {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	buffers := make([][]byte, len(segments))
	var firstErr error
	for range segments {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("segment %d: %w", r.index, r.err)
			cancel()
			tracker.MarkAsErrored()
			break
		}
		buffers[r.index] = r.data
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	tracker.MarkAsDone()

	f, err := os.Create(job.OutputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	for i, buf := range buffers {
		if buf == nil {
			f.Close()
			os.Remove(job.OutputPath)
			return fmt.Errorf("segment %d missing after download", i)
		}
		if _, err := f.Write(buf); err != nil {
			f.Close()
			os.Remove(job.OutputPath)
			return fmt.Errorf("writing output: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(job.OutputPath)
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}

func fetchSegment(client *httputil.Client, keys *keyCache, job Job, seg hls.Segment) ([]byte, error) {
	data, err := client.FetchRaw(hls.ResolveURI(job.BaseURL, seg.URI), job.UseProxy)
	if err != nil {
		return nil, err
	}
	if seg.Key == nil {
		return data, nil
	}

	key, err := keys.get(hls.ResolveURI(job.BaseURL, seg.Key.URI))
	if err != nil {
		return nil, fmt.Errorf("fetching segment key: %w", err)
	}
	return decryptSegment(data, key, seg.Key.IV, seg.Sequence)
}
