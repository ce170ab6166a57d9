// Command extract-git-object strips a "blob <size>\0" header from a
// zlib-compressed stream on stdin and writes the decompressed payload to
// stdout. Ported from extract-git-object's try_main.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mzhou/fast-dl/internal/gitobject"
)

func main() {
	decoded, err := gitobject.Decode(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer decoded.Close()

	if _, err := io.Copy(os.Stdout, decoded); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
