// Command hash-git-object prints the SHA-1 digest of a file as it would be
// addressed on the CDN: the hash of "blob <size>\0" followed by the file's
// contents. Ported from hash-git-object's try_main.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mzhou/fast-dl/internal/gitobject"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: hash-git-object <file>")
		return 1
	}

	fileName := os.Args[1]
	fi, err := os.Stat(fileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	f, err := os.Open(fileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer f.Close()

	digest := gitobject.NewDigest(uint64(fi.Size()))
	if _, err := io.Copy(digest, f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sum := digest.Finalize()
	fmt.Printf("%x\n", sum)
	return 0
}
