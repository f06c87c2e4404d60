// Command judolhunter scans websites for search engine cloaking and injected
// online gambling content.
//
// Usage:
//
//	judolhunter scan https://example.com
//	judolhunter scan -f urls.txt -o hasil.json --crawl
//	judolhunter serve --listen :8080
//	judolhunter demo --port 9999
package main

import (
	"os"

	"github.com/raysh454/judolhunter/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
