// Package gitindex parses the manifest format spec.md calls "the index":
// a git-index-v2 binary layout enumerating every asset's path, declared
// size, and 20-byte SHA-1. Ported from original_source/la-tools/src/git_index.rs,
// which builds a zero-copy view over the raw bytes; this port trades the
// Rust zerocopy crate's unaligned-struct views for plain encoding/binary
// reads over a byte slice, since Go structs can't borrow unaligned network-
// endian fields the way zerocopy's LayoutVerified can.
package gitindex

import (
	"encoding/binary"
	"fmt"
)

// fileHeaderSize is sizeof(FileHeader) in git_index.rs: magic[4] + version(4) + entry_count(4).
const fileHeaderSize = 12

// entryHeaderSize is sizeof(EntryHeader) in git_index.rs: 10 network-endian
// u32/i32 fields (40 bytes) + sha1[20] + flags(2) = 62 bytes.
const entryHeaderSize = 62

// Hash is the 20-byte SHA-1 content hash keyed by the CDN's object storage.
type Hash [20]byte

// EntryHeader mirrors git_index.rs's EntryHeader: the fixed-size fields that
// precede each entry's NUL-terminated name. Only Size and Hash are consumed
// by the downloader core; the rest round-trip through Patch unexamined.
type EntryHeader struct {
	CtimeSec  int32
	CtimeNsec int32
	MtimeSec  int32
	MtimeNsec int32
	Dev       uint32
	Ino       uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint32
	Hash      Hash
	Flags     uint16
}

// Entry is one manifest row: a view over bytes owned by the caller's slice,
// not a copy — the same "zero-copy view" property git_index.rs's ViewEntry
// documents.
type Entry struct {
	Header *EntryHeader
	Name   []byte
}

// View is the parsed manifest: a file header plus an ordered list of entries.
type View struct {
	Version     uint32
	EntryCount  uint32
	Entries     []Entry
	entryOffset []int // byte offset of each entry's header, for Patch
}

// errTruncated is returned when the buffer ends before a header or name is
// fully present.
var errTruncated = fmt.Errorf("gitindex: truncated manifest")

// errBadVersion is returned when the header declares a version other than 2
// (the only layout git_index.rs — and this port — understands).
var errBadVersion = fmt.Errorf("gitindex: unsupported index version")

// errBadName is returned when an entry's name isn't NUL-terminated or its
// padding bytes aren't all NUL, mirroring git_index.rs's take_name.
var errBadName = fmt.Errorf("gitindex: malformed entry name")

// Parse builds a View over bin. bin must outlive the returned View: Entry
// slices borrow directly from it.
func Parse(bin []byte) (*View, error) {
	if len(bin) < fileHeaderSize {
		return nil, errTruncated
	}
	version := binary.BigEndian.Uint32(bin[4:8])
	if version != 2 {
		return nil, errBadVersion
	}
	entryCount := binary.BigEndian.Uint32(bin[8:12])

	v := &View{Version: version, EntryCount: entryCount}
	off := fileHeaderSize
	for i := uint32(0); i < entryCount; i++ {
		if len(bin)-off < entryHeaderSize {
			return nil, errTruncated
		}
		headerOff := off
		hdr := parseEntryHeader(bin[off : off+entryHeaderSize])
		off += entryHeaderSize

		name, consumed, err := takeName(bin[off:])
		if err != nil {
			return nil, err
		}
		off += consumed

		v.Entries = append(v.Entries, Entry{Header: hdr, Name: name})
		v.entryOffset = append(v.entryOffset, headerOff)
	}
	return v, nil
}

func parseEntryHeader(b []byte) *EntryHeader {
	be := binary.BigEndian
	return &EntryHeader{
		CtimeSec:  int32(be.Uint32(b[0:4])),
		CtimeNsec: int32(be.Uint32(b[4:8])),
		MtimeSec:  int32(be.Uint32(b[8:12])),
		MtimeNsec: int32(be.Uint32(b[12:16])),
		Dev:       be.Uint32(b[16:20]),
		Ino:       be.Uint32(b[20:24]),
		Mode:      be.Uint32(b[24:28]),
		UID:       be.Uint32(b[28:32]),
		GID:       be.Uint32(b[32:36]),
		Size:      be.Uint32(b[36:40]),
		Hash:      Hash(b[40:60]),
		Flags:     be.Uint16(b[60:62]),
	}
}

// takeName finds the NUL-terminated name at the front of b and returns it
// along with the number of bytes consumed, which is NUL-padded so that
// entryHeaderSize+consumed is a multiple of 8 — the on-wire git-index rule
// git_index.rs's round_up/take_name implement.
func takeName(b []byte) (name []byte, consumed int, err error) {
	nulPos := -1
	for i, c := range b {
		if c == 0 {
			nulPos = i
			break
		}
	}
	if nulPos < 0 {
		return nil, 0, errTruncated
	}
	size := roundUp(nulPos+entryHeaderSize+1, 8) - entryHeaderSize
	if len(b) < size {
		return nil, 0, errTruncated
	}
	for _, c := range b[nulPos:size] {
		if c != 0 {
			return nil, 0, errBadName
		}
	}
	return b[:nulPos], size, nil
}

func roundUp(x, increment int) int {
	return (x + increment - 1) / increment * increment
}

// entryHeaderOffset exposes the byte offset of each entry's header, for Patch.
func (v *View) entryHeaderOffset(i int) int {
	return v.entryOffset[i]
}
