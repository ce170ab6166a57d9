package gitobject

import (
	"crypto/sha1"
	"fmt"
	"hash"
	"io"
)

// Digest streams bytes through a SHA-1 hasher prefixed with the same
// "blob <size>\0" header Encode would write, mirroring hash-git-object's
// git_object::hash_sync: the object's content hash is defined over the
// header-plus-payload, not the raw payload alone.
type Digest struct {
	h hash.Hash
}

// NewDigest creates a Digest for a payload of the given declared size.
func NewDigest(size uint64) *Digest {
	d := &Digest{h: sha1.New()}
	fmt.Fprintf(d.h, "%s%d\x00", headerPrefix, size)
	return d
}

// Write feeds payload bytes into the digest. Implements io.Writer so
// callers can io.Copy(digest, file) exactly as hash-git-object/src/lib.rs does.
func (d *Digest) Write(p []byte) (int, error) { return d.h.Write(p) }

// Finalize returns the 20-byte SHA-1 sum.
func (d *Digest) Finalize() [20]byte {
	var out [20]byte
	copy(out[:], d.h.Sum(nil))
	return out
}

var _ io.Writer = (*Digest)(nil)
