package fastdl

import (
	"encoding/hex"
	"path/filepath"
)

// WorkItem is the unit derived from a manifest entry the planner hands to
// the downloader core, per spec.md §3.
type WorkItem struct {
	Entry          ManifestEntry
	ObjectURL      string
	CompressedSize int64
	TmpPath        string
	DstPath        string
}

// objectURL derives the CDN URL for entry's hash, per spec.md §3:
// hex-lowercase the hash, split after the first byte: <base>/objects/<hh>/<hhhhhh…>.
func objectURL(base string, hash [20]byte) string {
	h := hex.EncodeToString(hash[:])
	return base + "/objects/" + h[:2] + "/" + h[2:]
}

// newWorkItem builds the WorkItem for entry rooted at outputDir, with its
// object URL derived from patchBaseURL. CompressedSize is left at zero; the
// planner fills it in from the object's HEAD response.
func newWorkItem(entry ManifestEntry, patchBaseURL, outputDir string) WorkItem {
	dst := filepath.Join(outputDir, filepath.FromSlash(entry.Path))
	return WorkItem{
		Entry:     entry,
		ObjectURL: objectURL(patchBaseURL, entry.Hash),
		TmpPath:   dst + ".tmp",
		DstPath:   dst,
	}
}

// Chunk is a contiguous byte range of a compressed object fetched by a
// single ranged HTTP GET, per spec.md §3: 0 ≤ begin < end ≤ compressed_size,
// end - begin ≤ ChunkSize, and consecutive chunks partition [0, compressed_size).
type Chunk struct {
	Index int
	Begin int64
	End   int64
}

// BuildChunks partitions [0, compressedSize) into ChunkSize-sized windows,
// per spec.md §3/§4.2. The last chunk may be shorter. compressedSize == 0
// yields zero chunks (§4.2's edge case, treated upstream as a manifest
// error since the minimum compressed object is never actually empty).
func BuildChunks(compressedSize int64) []Chunk {
	if compressedSize <= 0 {
		return nil
	}
	n := (compressedSize + ChunkSize - 1) / ChunkSize
	chunks := make([]Chunk, 0, n)
	for i := int64(0); i < n; i++ {
		begin := i * ChunkSize
		end := begin + ChunkSize
		if end > compressedSize {
			end = compressedSize
		}
		chunks = append(chunks, Chunk{Index: int(i), Begin: begin, End: end})
	}
	return chunks
}
