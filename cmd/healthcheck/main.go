// Container healthcheck probe. Exits 0 when the local server answers
// its liveness endpoint.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "10000"
	}

	// HEALTHCHECK_PATH=/ready switches the probe to the readiness
	// endpoint, which also checks the database.
	path := os.Getenv("HEALTHCHECK_PATH")
	if path == "" {
		path = "/healthz"
	}

	client := &http.Client{Timeout: 8 * time.Second}
	url := fmt.Sprintf("http://localhost:%s%s", port, path)

	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}

	os.Exit(0)
}
