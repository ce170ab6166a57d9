// Package fastdl implements the parallel chunked downloader + decode
// pipeline: given a manifest of (hash, path, size) entries and a CDN base
// URL, it plans the work set, fetches missing objects via ranged HTTP GETs
// bounded by two independent semaphores, and decodes each completed object
// to its final path.
package fastdl

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
)

// Downloader drives one sync run against a manifest, matching the teacher's
// top-level Downloader shape but scoped to this repo's single job: plan,
// fetch, decode.
type Downloader struct {
	rc *Context
}

// NewDownloader creates a Downloader bound to rc.
func NewDownloader(rc *Context) *Downloader {
	return &Downloader{rc: rc}
}

// FileResult records the outcome of one work item for the supervisor's final
// report.
type FileResult struct {
	Path string
	Err  error
}

// Run implements §4.1 (plan), §4.2–§4.3 (per-file chunk+decode), and §4.4
// (supervisor): it builds the work set from entries, fetches every item
// concurrently, and returns one FileResult per attempted item. len(results)
// == number of items actually attempted; already-complete entries are
// skipped and not reported.
func (d *Downloader) Run(entries []ManifestEntry) ([]FileResult, error) {
	o := d.rc.Option()

	items, err := d.plan(entries)
	if err != nil {
		return nil, err
	}

	netSem := newSemaphore(o.networkThreads())
	diskSem := newSemaphore(o.diskThreads())

	results := make([]FileResult, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item WorkItem) {
			defer wg.Done()
			err := runFileTask(d.rc, netSem, diskSem, item)
			results[i] = FileResult{Path: item.Entry.Path, Err: err}
			if err != nil {
				d.rc.Logger().Error("file task failed", "asset", item.Entry.Path, "error", err)
			} else if cb := d.rc.GetProgressCallback(); cb != nil {
				cb(item.CompressedSize, item.CompressedSize, item.Entry.Path)
			}
		}(i, item)
	}
	wg.Wait()

	return results, nil
}

// plan implements §4.1: ensure directories exist, drop already-complete
// entries, then resolve each remaining entry's compressed size via a
// network-gated HEAD request.
func (d *Downloader) plan(entries []ManifestEntry) ([]WorkItem, error) {
	o := d.rc.Option()
	filter := filterForOption(o)

	if err := ensureDirectories(o.OutputDir, entries); err != nil {
		return nil, newErr(KindIO, "plan", err)
	}

	pending := make([]WorkItem, 0, len(entries))
	for _, e := range entries {
		item := newWorkItem(e, o.BaseURL, o.OutputDir)
		if filter.ShouldSkip(e, item.DstPath) {
			d.rc.Logger().Debug("skip: already complete", "asset", e.Path)
			continue
		}
		pending = append(pending, item)
	}

	netSem := newSemaphore(o.networkThreads())
	var (
		mu      sync.Mutex
		firstFn error
		wg      sync.WaitGroup
	)
	for i := range pending {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := netSem.acquire(d.rc.Context()); err != nil {
				mu.Lock()
				if firstFn == nil {
					firstFn = newErr(KindTransport, "plan", err)
				}
				mu.Unlock()
				return
			}
			defer netSem.release()

			size, err := headContentLength(d.rc.Client(), pending[i].ObjectURL)
			if err != nil {
				if IsKind(err, KindProtocol) {
					d.rc.Logger().Error(fmt.Sprintf("Could not get content length of %s", pending[i].Entry.Path))
				}
				mu.Lock()
				if firstFn == nil {
					firstFn = err
				}
				mu.Unlock()
				return
			}
			pending[i].CompressedSize = size
		}(i)
	}
	wg.Wait()
	if firstFn != nil {
		return nil, firstFn
	}

	var total int64
	for _, item := range pending {
		total += item.CompressedSize
	}
	d.rc.Logger().Info("plan complete", "files", len(pending), "total_size", humanize.Bytes(uint64(total)))

	return pending, nil
}

// headContentLength issues a HEAD request and returns Content-Length, or
// ErrMissingContentLength if the header is absent — fatal per §4.1 (exit
// code 5).
func headContentLength(client *resty.Client, url string) (int64, error) {
	resp, err := client.R().Head(url)
	if err != nil {
		return 0, newErr(KindTransport, "headContentLength", err)
	}
	cl := resp.Header().Get("Content-Length")
	if cl == "" {
		return 0, newErr(KindProtocol, "headContentLength",
			fmt.Errorf("%w: %s", ErrMissingContentLength, url))
	}
	var size int64
	if _, err := fmt.Sscanf(cl, "%d", &size); err != nil {
		return 0, newErr(KindProtocol, "headContentLength", fmt.Errorf("bad Content-Length %q: %w", cl, err))
	}
	return size, nil
}

// ensureDirectories creates every directory implied by entries' paths under
// outputDir, per §4.1 step 1 ("mkdir -p semantics, recursive").
func ensureDirectories(outputDir string, entries []ManifestEntry) error {
	seen := make(map[string]struct{})
	for _, e := range entries {
		dir := filepath.Dir(filepath.Join(outputDir, filepath.FromSlash(e.Path)))
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return nil
}

// FailedResults filters results down to the failures, for the supervisor's
// stderr report and exit-code decision (§4.4, §6 exit code 6).
func FailedResults(results []FileResult) []FileResult {
	var failed []FileResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
