// Command demosite serves sample pages for trying out trustlens locally.
// Usage: go run ./cmd/demosite [port]
// Default port: 9999
package main

import (
	"log"
	"os"
	"strconv"

	"github.com/trustlens/trustlens/internal/demosite"
	"github.com/trustlens/trustlens/internal/logging"
)

func main() {
	cfg := demosite.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	site := demosite.NewDemoSite(cfg, logging.NewLogrusLogger("info", os.Stderr))
	for _, p := range site.Pages() {
		log.Printf("http://localhost:%d%s  %s", cfg.Port, p.Path, p.Description)
	}
	log.Printf("switch versions with: curl -X POST -d 'path=/shop&version=2' http://localhost:%d/demo/set-version", cfg.Port)

	if err := site.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
