// Package gitobject implements the two streaming transforms spec.md §6
// calls "the object codec": decode strips a git-style "blob <size>\0"
// header from a zlib-compressed stream and yields the payload; encode does
// the reverse. Ported from original_source/la-tools/src/git_object.rs, which
// builds encode_sync by chaining a literal header prefix in front of the
// caller's reader before handing the whole thing to flate2::read::ZlibEncoder.
// decode_sync is implied by the same module but wasn't retained in the
// filtered original_source/ snapshot; its shape here follows directly from
// encode_sync's framing (§6's "consumes header bytes matching blob [0-9]+\0").
package gitobject

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/zlib"
)

const headerPrefix = "blob "

// Decode wraps a compressed source (typically the .tmp staging file),
// consumes and validates the "blob <size>\0" header before returning, and
// returns a reader that yields the decompressed payload. A header failure
// is returned by Decode itself, with §6's two distinct failure kinds.
func Decode(r io.Reader) (io.ReadCloser, error) {
	zr, err := zlib.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("gitobject: zlib: %w", err)
	}
	if err := consumeHeader(zr); err != nil {
		zr.Close()
		return nil, err
	}
	return zr, nil
}

// consumeHeader reads and validates the "blob <decimal-size>\0" prefix,
// leaving r positioned at the start of the payload. The first 5 bytes must
// be exactly "blob " (ErrBadMagic otherwise); every byte between that and
// the terminating NUL must be an ASCII digit (ErrBadSize otherwise).
func consumeHeader(r io.Reader) error {
	prefix := make([]byte, len(headerPrefix))
	if _, err := io.ReadFull(r, prefix); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if string(prefix) != headerPrefix {
		return ErrBadMagic
	}

	var sizeBuf []byte
	one := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, one); err != nil {
			return fmt.Errorf("%w: %v", ErrBadSize, err)
		}
		if one[0] == 0 {
			break
		}
		if one[0] < '0' || one[0] > '9' {
			return ErrBadSize
		}
		sizeBuf = append(sizeBuf, one[0])
	}
	if len(sizeBuf) == 0 {
		return ErrBadSize
	}
	if _, err := strconv.ParseUint(string(sizeBuf), 10, 64); err != nil {
		return ErrBadSize
	}
	return nil
}

// headerReader yields the literal "blob <size>\0" prefix before handing off
// to the wrapped reader — the Go analog of git_object.rs's U8ReadSync
// chained in front of the payload via io::Read::chain.
type headerReader struct {
	header []byte
	pos    int
	next   io.Reader
}

func (h *headerReader) Read(p []byte) (int, error) {
	if h.pos < len(h.header) {
		n := copy(p, h.header[h.pos:])
		h.pos += n
		return n, nil
	}
	return h.next.Read(p)
}

// Encode prepends a "blob <size>\0" header to r and compresses the result,
// returning a reader the caller streams to completion. size is the
// caller-declared, not measured, payload length — git_object.rs's
// encode_sync takes it the same way, trusting the caller (make-git-object
// passes the file's os.Stat size).
func Encode(size uint64, r io.Reader) io.ReadCloser {
	prefixed := &headerReader{
		header: []byte(fmt.Sprintf("%s%d\x00", headerPrefix, size)),
		next:   r,
	}
	pr, pw := io.Pipe()
	zw := zlib.NewWriter(pw)
	go func() {
		_, err := io.Copy(zw, prefixed)
		closeErr := zw.Close()
		if err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()
	return pr
}
