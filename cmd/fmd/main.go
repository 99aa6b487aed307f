// Command fmd renders markdown the way feedback posts and comments are
// displayed: as sanitized HTML, heading-free HTML or plain text.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
