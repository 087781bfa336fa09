package main

import (
	"fmt"
	"os"

	"github.com/jonesrussell/idxwatch/internal/bootstrap"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := bootstrap.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "idxwatch: %v\n", err)
		os.Exit(1)
	}
}
