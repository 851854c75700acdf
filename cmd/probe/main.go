// Command echolens-probe drives the transcript pipeline from a terminal:
// classify text, run single analyzers, sweep a transcript file or check the
// bullet deduplicator, without starting the server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
