// Command make-git-object compresses a file and prepends its "blob
// <size>\0" header, writing the result to stdout. Ported from
// make-git-object's try_main.
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
		fmt.Fprintln(os.Stderr, "Usage: make-git-object <file>")
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

	encoded := gitobject.Encode(uint64(fi.Size()), f)
	defer encoded.Close()

	if _, err := io.Copy(os.Stdout, encoded); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
