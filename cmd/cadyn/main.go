// Command cadyn analyzes cellular-automaton spacetime histories: information
// dynamics, band structure, Wolfram classification and epoch collapse.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
