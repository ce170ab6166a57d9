package gitindex

import "encoding/binary"

// Patch rewrites the size and hash of the entry named name, in place within
// bin, mirroring patch-git-index/src/lib.rs's patch_index. bin must be the
// same buffer Parse (or a prior Parse of an equivalent layout) was called
// on: Patch writes directly into the header bytes at the entry's recorded
// offset rather than reconstructing the file.
//
// Reports how many entries were patched (0 or 1 in practice, since the
// distilled tool addresses entries by exact name match); 0 means name was
// not found. The returned error is always nil.
func (v *View) Patch(bin []byte, name []byte, newSize uint32, newHash Hash) (patched int, err error) {
	for i, e := range v.Entries {
		if !equalBytes(e.Name, name) {
			continue
		}
		off := v.entryHeaderOffset(i)
		binary.BigEndian.PutUint32(bin[off+36:off+40], newSize)
		copy(bin[off+40:off+60], newHash[:])
		// keep the in-memory view consistent with the bytes we just wrote
		e.Header.Size = newSize
		e.Header.Hash = newHash
		patched++
	}
	return patched, nil
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
