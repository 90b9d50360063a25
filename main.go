// Command qtape records OpenQASM 2.0 circuits as tapes, fuses runs of
// single-qubit rotations, and shows the result on the command line or in an
// interactive terminal UI.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}
