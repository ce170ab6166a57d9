package fastdl

import (
	"fmt"
	"unicode/utf8"

	"github.com/mzhou/fast-dl/internal/gitindex"
)

// ManifestEntry is the core's view of one manifest record, per spec.md §3:
// {hash: 20 bytes, path: relative UTF-8 path using '/' separators, final_size:
// u64}. final_size is the decompressed size the on-disk file must end up
// being.
type ManifestEntry struct {
	Hash [20]byte
	Path string
	Size uint64
}

// LoadManifest parses a binary git-index-v2 manifest blob via
// internal/gitindex and projects it down to the {hash, path, size} triples
// the core consumes, rejecting any entry whose name isn't valid UTF-8 (§3:
// "Paths with any non-UTF-8 byte sequence are rejected upstream before
// reaching the core" — exit code 3, per §6).
func LoadManifest(blob []byte) ([]ManifestEntry, error) {
	view, err := gitindex.Parse(blob)
	if err != nil {
		return nil, newErr(KindProtocol, "LoadManifest", fmt.Errorf("%w: %v", ErrBadManifestField, err))
	}

	entries := make([]ManifestEntry, 0, len(view.Entries))
	for _, e := range view.Entries {
		if !utf8.Valid(e.Name) {
			return nil, newErr(KindProtocol, "LoadManifest",
				fmt.Errorf("%w: %q", ErrBadEntryName, e.Name))
		}
		entries = append(entries, ManifestEntry{
			Hash: [20]byte(e.Header.Hash),
			Path: string(e.Name),
			Size: uint64(e.Header.Size),
		})
	}
	return entries, nil
}
