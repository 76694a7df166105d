// Command sqlstash is a local result cache for remote warehouse queries.
package main

import (
	"fmt"
	"os"

	"github.com/sqlstash/sqlstash/internal/cli"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return cli.NewRootCmd(version).Execute()
}
