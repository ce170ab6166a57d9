package fastdl

import "time"

// ChunkSize is the maximum span of a single ranged GET (§3).
const ChunkSize int64 = 16 * 1024 * 1024

// RetryBase is T₀, the base backoff duration for chunk retries (§4.2).
const RetryBase = 100 * time.Millisecond

// Option holds the downloader's tunables, in the shape of the teacher's
// Option struct but scoped to this repo's single CDN-sync job.
type Option struct {
	// BaseURL is the CDN base, e.g. "http://patch.example.com/la/patch".
	// object_url = BaseURL + "/objects/" + hh + "/" + rest.
	BaseURL string

	// OutputDir is the root directory files are synced into.
	OutputDir string

	// NetworkThreads bounds concurrent outstanding HEAD/GET requests (N_net).
	NetworkThreads int

	// DiskThreads bounds concurrent decode workers (N_disk).
	DiskThreads int

	// UserAgent is sent on every request.
	UserAgent string

	// Timeout is the per-request client timeout (connect+read), not a
	// per-chunk deadline — see §5.
	Timeout time.Duration

	// Verify enables the optional SHA-1 re-check of already-complete files
	// described in SPEC_FULL §12, instead of only comparing size.
	Verify bool

	// Debug/Verbose/Silent select slog level exactly as the teacher's
	// newLogger does.
	Debug   bool
	Verbose bool
	Silent  bool
}

// DefaultOption mirrors the teacher's DefaultOptions pattern: a package-level
// value callers clone before overriding fields from flags.
var DefaultOption = Option{
	NetworkThreads: 64,
	DiskThreads:    4,
	UserAgent:      "PmangDownloader_27cf2b254140ab9a07a7b8615e18d902c0a26edc",
	Timeout:        30 * time.Second,
}

func (o Option) networkThreads() int {
	if o.NetworkThreads > 0 {
		return o.NetworkThreads
	}
	return DefaultOption.NetworkThreads
}

func (o Option) diskThreads() int {
	if o.DiskThreads > 0 {
		return o.DiskThreads
	}
	return DefaultOption.DiskThreads
}
