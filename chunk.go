package fastdl

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mzhou/fast-dl/internal/iomgr"
)

// runChunkTask implements §4.2's chunk task protocol: acquire one network
// permit for the task's entire lifetime, map the chunk's window, and retry
// the ranged GET with unbounded exponential backoff until it succeeds or the
// run is cancelled.
func runChunkTask(rc *Context, netSem semaphore, item WorkItem, chunk Chunk) error {
	ctx := rc.Context()
	logger := rc.Logger().With("asset", item.Entry.Path, "chunk", chunk.Index)

	if err := netSem.acquire(ctx); err != nil {
		return newErr(KindTransport, "runChunkTask", err)
	}
	defer netSem.release()

	span := chunk.End - chunk.Begin
	length := int(span)
	if int64(length) != span {
		return newErr(KindProtocol, "runChunkTask", fmt.Errorf("chunk %d length %d exceeds the platform mapping size", chunk.Index, span))
	}
	win, err := iomgr.CreateWindow(item.TmpPath, chunk.Begin, length)
	if err != nil {
		return newErr(KindIO, "runChunkTask", err)
	}
	defer win.Close()

	retry := 0
	for {
		if err := ctx.Err(); err != nil {
			return newErr(KindJoin, "runChunkTask", err)
		}

		err := fetchChunkOnce(rc, item, chunk, win.Bytes())
		if err == nil {
			break
		}

		// A length mismatch on an accepted 206 is a protocol violation, not a
		// transient condition — the server isn't honoring the Range header,
		// and retrying won't fix that. Surface it and stop (§4.2 step d).
		if errors.Is(err, ErrShortBody) {
			return newErr(KindProtocol, "runChunkTask", err)
		}

		backoff := RetryBase * time.Duration(1<<uint(retry))
		logger.Warn("chunk fetch failed, retrying",
			"url", item.ObjectURL,
			"range", rangeHeader(chunk),
			"retry", retry,
			"backoff", backoff,
			"error", err,
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return newErr(KindJoin, "runChunkTask", ctx.Err())
		}
		retry++
	}

	if err := win.Flush(); err != nil {
		return newErr(KindIO, "runChunkTask", err)
	}
	return nil
}

// rangeHeader formats the Range header value for chunk, per §4.2's
// "Range: bytes=<begin>-<end-1>".
func rangeHeader(chunk Chunk) string {
	return fmt.Sprintf("bytes=%d-%d", chunk.Begin, chunk.End-1)
}

// fetchChunkOnce issues a single ranged GET and, on a 206 response whose body
// length matches the requested window exactly, copies it into dst. A
// transport error or non-206 status is returned for the caller's retry loop
// to treat as transient (§4.2 steps b–c); a length mismatch on an accepted
// 206 is wrapped in ErrShortBody, which the caller treats as terminal rather
// than retrying forever.
func fetchChunkOnce(rc *Context, item WorkItem, chunk Chunk, dst []byte) error {
	resp, err := rc.Client().R().
		SetContext(rc.Context()).
		SetHeader("Range", rangeHeader(chunk)).
		SetDoNotParseResponse(true).
		Get(item.ObjectURL)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusPartialContent {
		io.Copy(io.Discard, body)
		return fmt.Errorf("transport: unexpected status %s (want 206)", resp.Status())
	}

	n, err := io.ReadFull(body, dst)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("transport: read body: %w", err)
	}
	if n != len(dst) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrShortBody, n, len(dst))
	}
	// Any additional bytes beyond len(dst) indicate the server didn't honor
	// the range as requested — surfaced as a short-body mismatch rather than
	// silently truncated, per §4.2 step d.
	var extra [1]byte
	if m, _ := body.Read(extra[:]); m > 0 {
		return fmt.Errorf("%w: response body longer than requested range", ErrShortBody)
	}
	return nil
}
