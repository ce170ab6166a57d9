// Command fast-dl synchronizes a local directory against a game-CDN
// manifest: it resolves the CDN host, fetches version.ini and the binary
// manifest, then drives the parallel chunked downloader + decode pipeline
// (github.com/mzhou/fast-dl) to fetch and decode every missing or
// out-of-date object.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	fastdl "github.com/mzhou/fast-dl"
	"github.com/mzhou/fast-dl/internal/bootstrap"
	"github.com/mzhou/fast-dl/version"
)

// exit codes, per spec §6.
const (
	exitOK = iota
	exitBootstrapFailure
	exitBadManifestField
	exitBadEntryName
	exitNoOutputDir
	exitMissingContentLength
	exitPipelineFailure
)

type cliOptions struct {
	diskThreads    int
	networkThreads int
	outputDir      string
	systemDNS      bool
	verify         bool
	debug          bool
	verbose        bool
	silent         bool
	userAgent      string
	timeout        time.Duration
	gamesHost      string
	cdnHost        string
}

func defaultCLIOptions() cliOptions {
	return cliOptions{
		diskThreads:    fastdl.DefaultOption.DiskThreads,
		networkThreads: fastdl.DefaultOption.NetworkThreads,
		userAgent:      fastdl.DefaultOption.UserAgent,
		timeout:        fastdl.DefaultOption.Timeout,
		gamesHost:      "games.cdn.gameon.jp",
		cdnHost:        "patch.cdn.gameon.jp",
	}
}

// newRootCommand builds the cobra command. exitCode is written once the run
// finishes; main reads it after ExecuteContext returns, independent of
// cobra's own error-printing, so every spec.md §6 exit code is reachable.
func newRootCommand(exitCode *int) *cobra.Command {
	opts := defaultCLIOptions()

	cmd := &cobra.Command{
		Use:     "fast-dl",
		Short:   "Synchronize a local directory against a game-CDN manifest",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := run(cmd.Context(), opts)
			*exitCode = code
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.diskThreads, "disk-threads", opts.diskThreads, "concurrent decode workers (N_disk)")
	cmd.Flags().IntVar(&opts.networkThreads, "network-threads", opts.networkThreads, "concurrent HTTP requests (N_net)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "sync target directory (default: OS-specific install lookup)")
	cmd.Flags().BoolVar(&opts.systemDNS, "system-dns", false, "bypass built-in DNS-over-HTTPS resolution")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "skip already-present files only if their SHA-1 also matches")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.Flags().BoolVarP(&opts.silent, "silent", "s", false, "suppress all output except errors")
	cmd.Flags().StringVar(&opts.userAgent, "user-agent", opts.userAgent, "User-Agent header sent on every request")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request client timeout")
	cmd.Flags().StringVar(&opts.gamesHost, "games-host", opts.gamesHost, "host serving version.ini/install.ini")
	cmd.Flags().StringVar(&opts.cdnHost, "cdn-host", opts.cdnHost, "host serving the manifest and objects")

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd
}

// run implements the bootstrap → plan → download sequence, returning the
// exit code spec.md §6 defines alongside any error to report.
func run(ctx context.Context, opts cliOptions) (int, error) {
	outputDir := opts.outputDir
	if outputDir == "" {
		dir, err := bootstrap.ResolveOutputDir()
		if err != nil {
			return exitNoOutputDir, fmt.Errorf("resolve output directory: %w", err)
		}
		if dir == "" {
			return exitNoOutputDir, fastdl.ErrNoOutputDir
		}
		outputDir = dir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return exitNoOutputDir, fmt.Errorf("create output directory: %w", err)
	}

	cdnIP, err := bootstrap.ResolveHost(ctx, opts.cdnHost, opts.systemDNS)
	if err != nil {
		return exitBootstrapFailure, fmt.Errorf("resolve %s: %w", opts.cdnHost, err)
	}

	bootstrapClient := bootstrap.NewBootstrapClient(filepath.Join(outputDir, ".fast-dl-cache"), opts.userAgent, opts.timeout)

	versionURL := fmt.Sprintf("http://%s/lostark/version.ini", opts.gamesHost)
	manifestName, err := bootstrap.FetchManifestFilename(bootstrapClient, versionURL)
	if err != nil {
		return exitBootstrapFailure, err
	}

	patchBaseURL := fmt.Sprintf("http://%s/la/patch", opts.cdnHost)
	blob, err := bootstrap.FetchManifestBlob(bootstrapClient, patchBaseURL, manifestName)
	if err != nil {
		return exitBootstrapFailure, err
	}

	entries, err := fastdl.LoadManifest(blob)
	if err != nil {
		switch {
		case errors.Is(err, fastdl.ErrBadEntryName):
			return exitBadEntryName, err
		case errors.Is(err, fastdl.ErrBadManifestField):
			return exitBadManifestField, err
		default:
			return exitBadManifestField, err
		}
	}

	o := fastdl.DefaultOption
	o.BaseURL = patchBaseURL
	o.OutputDir = outputDir
	o.DiskThreads = opts.diskThreads
	o.NetworkThreads = opts.networkThreads
	o.UserAgent = opts.userAgent
	o.Timeout = opts.timeout
	o.Verify = opts.verify
	o.Debug = opts.debug
	o.Verbose = opts.verbose
	o.Silent = opts.silent

	rc := fastdl.NewContext(ctx, o)
	pinCDNHost(rc, opts.cdnHost, cdnIP)

	var pm *progressManager
	if !opts.silent {
		pm = newProgressManager()
		rc.SetProgressCallback(pm.callback())
		defer pm.finish()
	}

	results, err := fastdl.NewDownloader(rc).Run(entries)
	if err != nil {
		if errors.Is(err, fastdl.ErrMissingContentLength) || fastdl.IsKind(err, fastdl.KindProtocol) {
			return exitMissingContentLength, err
		}
		return exitPipelineFailure, err
	}

	failed := fastdl.FailedResults(results)
	if len(failed) > 0 {
		for _, f := range failed {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", f.Path, f.Err)
		}
		return exitPipelineFailure, fmt.Errorf("%d file(s) failed", len(failed))
	}

	fmt.Println("All done!")
	return exitOK, nil
}

// pinCDNHost overrides DNS resolution for opts.cdnHost on rc's shared HTTP
// client transport, so the resty client actually dials the address
// bootstrap.ResolveHost (DoH or system) returned instead of re-resolving via
// the OS resolver for every connection. SNI/Host header are unaffected
// because only the dial target address changes.
func pinCDNHost(rc *fastdl.Context, host string, ip net.IP) {
	transport, ok := rc.Client().GetClient().Transport.(*http.Transport)
	if !ok || transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
		rc.Client().GetClient().Transport = transport
	}
	dialer := &net.Dialer{}
	baseDial := transport.DialContext
	if baseDial == nil {
		baseDial = dialer.DialContext
	}
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		h, port, err := net.SplitHostPort(addr)
		if err == nil && h == host {
			addr = net.JoinHostPort(ip.String(), port)
		}
		return baseDial(ctx, network, addr)
	}
}

// progressManager fans out fastdl.ProgressCallback invocations across one
// progress bar per asset path, matching the teacher's ProgressManager.
type progressManager struct {
	mu   sync.Mutex
	bars map[string]*progressbar.ProgressBar
}

func newProgressManager() *progressManager {
	return &progressManager{bars: make(map[string]*progressbar.ProgressBar)}
}

func (pm *progressManager) callback() fastdl.ProgressCallback {
	return func(current, total int64, description string) {
		pm.mu.Lock()
		defer pm.mu.Unlock()
		bar, ok := pm.bars[description]
		if !ok {
			bar = progressbar.DefaultBytes(total, description)
			pm.bars[description] = bar
		}
		bar.Set64(current)
	}
}

func (pm *progressManager) finish() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, bar := range pm.bars {
		bar.Finish()
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	exitCode := exitOK
	cmd := newRootCommand(&exitCode)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitCode = exitPipelineFailure
	}
	os.Exit(exitCode)
}
