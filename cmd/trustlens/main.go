// Command trustlens scores URLs for trustworthiness, either one-off from the
// command line or as an HTTP service.
package main

import (
	"os"

	"github.com/trustlens/trustlens/internal/cli"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
