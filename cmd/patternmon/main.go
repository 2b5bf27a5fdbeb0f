// Command patternmon encodes JSON event messages into hypervectors and
// persists them in a key-value store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "patternmon:", err)
		os.Exit(1)
	}
}
