// Command patch-git-index rewrites the size and hash of one named entry in a
// binary git-index-v2 manifest read from stdin, writing the patched buffer
// to stdout. Ported from patch-git-index's try_main.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mzhou/fast-dl/internal/gitindex"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Usage: patch-git-index <name> <size> <hash>")
		return 1
	}

	name := os.Args[1]
	size, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	hashBytes, err := hex.DecodeString(os.Args[3])
	if err != nil || len(hashBytes) != 20 {
		fmt.Fprintln(os.Stderr, "invalid hash")
		return 1
	}
	var hash gitindex.Hash
	copy(hash[:], hashBytes)

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	view, err := gitindex.Parse(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Parse error")
		return 2
	}
	if _, err := view.Patch(data, []byte(name), uint32(size), hash); err != nil {
		fmt.Fprintln(os.Stderr, "Parse error")
		return 2
	}

	if _, err := os.Stdout.Write(data); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
