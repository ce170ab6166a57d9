package gitobject

import "errors"

// ErrBadMagic is returned when the decompressed stream's first 5 bytes
// aren't "blob ", per §6's *InvalidData/BadMagic* kind.
var ErrBadMagic = errors.New("gitobject: bad magic, expected \"blob \"")

// ErrBadSize is returned when a header byte between "blob " and the
// terminating NUL isn't an ASCII digit, per §6's *InvalidData/BadSize* kind.
var ErrBadSize = errors.New("gitobject: bad size field in header")
