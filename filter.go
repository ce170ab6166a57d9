package fastdl

import (
	"io"
	"os"

	"github.com/mzhou/fast-dl/internal/gitobject"
)

// SkipFilter decides whether an already-present destination file should be
// treated as complete and excluded from the work set. This generalizes the
// teacher's Filter interface (which picked streams by predicate) into a
// single-purpose predicate over manifest entries.
type SkipFilter interface {
	// ShouldSkip reports whether entry's dst_path is already correct and
	// the work item may be dropped from the plan.
	ShouldSkip(entry ManifestEntry, dstPath string) bool
}

// SizeSkipFilter implements §4.1's default skip rule: present at dst_path
// with on-disk length equal to final_size. Only size is compared; content
// is not re-hashed.
type SizeSkipFilter struct{}

func (SizeSkipFilter) ShouldSkip(entry ManifestEntry, dstPath string) bool {
	fi, err := os.Stat(dstPath)
	if err != nil {
		return false
	}
	return fi.Size() == int64(entry.Size)
}

// HashSkipFilter implements the optional --verify mode from SPEC_FULL §12:
// a file is only skipped if its git-object hash also matches the manifest's
// declared hash, not just its length. That hash is defined over
// "blob <size>\0" plus the decompressed content (internal/gitobject.Digest),
// not a raw SHA-1 of the file — the manifest's hash field is a git-object
// hash, never a plain content hash. Strictly stronger than SizeSkipFilter,
// so it checks size first to avoid hashing files already disqualified by
// that.
type HashSkipFilter struct{}

func (HashSkipFilter) ShouldSkip(entry ManifestEntry, dstPath string) bool {
	if !(SizeSkipFilter{}).ShouldSkip(entry, dstPath) {
		return false
	}
	f, err := os.Open(dstPath)
	if err != nil {
		return false
	}
	defer f.Close()

	digest := gitobject.NewDigest(entry.Size)
	if _, err := io.Copy(digest, f); err != nil {
		return false
	}
	return digest.Finalize() == entry.Hash
}

// filterForOption selects the skip filter SPEC_FULL §12 describes, based on
// Option.Verify.
func filterForOption(o Option) SkipFilter {
	if o.Verify {
		return HashSkipFilter{}
	}
	return SizeSkipFilter{}
}
