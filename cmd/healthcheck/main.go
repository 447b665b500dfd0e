// Command healthcheck probes the local server for container health checks.
// It exits 0 when the probe answers 200 and 1 otherwise.
//
// Usage: healthcheck [livez|readyz]
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/staya/staya-chatbot-go/internal/config"
)

func main() {
	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = "5000"
	}

	probe := "livez"
	if len(os.Args) > 1 && os.Args[1] == "readyz" {
		probe = "readyz"
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/%s", port, probe))
	if err != nil {
		os.Exit(1)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
