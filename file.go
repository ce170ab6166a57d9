package fastdl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mzhou/fast-dl/internal/gitobject"
	"github.com/mzhou/fast-dl/internal/iomgr"
)

// runFileTask implements §4.3: spawn all chunk tasks for one work item,
// await them in chunk-index order, then run the decode step gated by the
// disk semaphore.
func runFileTask(rc *Context, netSem, diskSem semaphore, item WorkItem) error {
	logger := rc.Logger().With("asset", item.Entry.Path)

	if err := iomgr.Truncate(item.TmpPath, item.CompressedSize); err != nil {
		return newErr(KindIO, "runFileTask", err)
	}

	chunks := BuildChunks(item.CompressedSize)
	if len(chunks) == 0 {
		return newErr(KindProtocol, "runFileTask", fmt.Errorf("object has zero compressed size: %s", item.Entry.Path))
	}

	errs := make([]error, len(chunks))
	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		go func(c Chunk) {
			defer wg.Done()
			errs[c.Index] = runChunkTask(rc, netSem, item, c)
		}(c)
	}
	wg.Wait()

	// Await in deterministic chunk-index order (§4.3 step 2): surface the
	// first terminal error without cancelling siblings, which have already
	// run to completion above regardless of order.
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("chunk task failed: %w", err)
		}
	}

	if err := diskSem.acquire(rc.Context()); err != nil {
		return newErr(KindJoin, "runFileTask", err)
	}
	defer diskSem.release()

	logger.Debug("decoding", "tmp", item.TmpPath, "dst", item.DstPath)
	if err := decodeWorkItem(item); err != nil {
		return newErr(KindProtocol, "runFileTask", err)
	}

	if err := os.Remove(item.TmpPath); err != nil && !os.IsNotExist(err) {
		return newErr(KindIO, "runFileTask", err)
	}
	return nil
}

// decodeWorkItem streams item.TmpPath through the object codec's decode
// transform into item.DstPath, per §4.3 step 5.
func decodeWorkItem(item WorkItem) error {
	src, err := os.Open(item.TmpPath)
	if err != nil {
		return fmt.Errorf("open tmp: %w", err)
	}
	defer src.Close()

	decoded, err := gitobject.Decode(src)
	if err != nil {
		return fmt.Errorf("decode: %w", translateCodecErr(err))
	}
	defer decoded.Close()

	if err := os.MkdirAll(filepath.Dir(item.DstPath), 0o755); err != nil {
		return fmt.Errorf("mkdir dst: %w", err)
	}
	dst, err := os.OpenFile(item.DstPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open dst: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, decoded); err != nil {
		return fmt.Errorf("stream decode: %w", translateCodecErr(err))
	}
	return dst.Sync()
}

// translateCodecErr maps internal/gitobject's sentinels onto this package's
// own, so callers can errors.Is against fastdl.ErrBadMagic/ErrBadSize
// without importing the internal codec package.
func translateCodecErr(err error) error {
	switch {
	case errors.Is(err, gitobject.ErrBadMagic):
		return fmt.Errorf("%w: %v", ErrBadMagic, err)
	case errors.Is(err, gitobject.ErrBadSize):
		return fmt.Errorf("%w: %v", ErrBadSize, err)
	default:
		return err
	}
}
