package fastdl

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// TestConcurrencyCapNetwork verifies §8 testable property 5: no more than
// N_net HTTP requests run simultaneously.
func TestConcurrencyCapNetwork(t *testing.T) {
	const netCap = 3
	payload := []byte("payload")
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	fmt.Fprintf(zw, "blob %d\x00", len(payload))
	zw.Write(payload)
	zw.Close()
	blob := buf.Bytes()

	var inFlight, maxInFlight atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)

		switch r.Method {
		case http.MethodHead:
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(blob)))
		case http.MethodGet:
			w.WriteHeader(http.StatusPartialContent)
			w.Write(blob)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	o := DefaultOption
	o.BaseURL = srv.URL
	o.OutputDir = dir
	o.NetworkThreads = netCap
	o.DiskThreads = 2
	o.Silent = true
	rc := NewContext(context.Background(), o)

	var entries []ManifestEntry
	for i := 0; i < 12; i++ {
		var hash [20]byte
		hash[0] = byte(i)
		entries = append(entries, ManifestEntry{Hash: hash, Path: fmt.Sprintf("f/%d.dat", i), Size: uint64(len(payload))})
	}

	results, err := NewDownloader(rc).Run(entries)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: %v", r.Path, r.Err)
		}
	}

	if got := maxInFlight.Load(); got > netCap {
		t.Errorf("observed %d concurrent requests, want <= %d", got, netCap)
	}
}
