package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Waits until the service answers its health check, then exits with status 0. Exits with status 1
// if the service is not available within the timeout.
//
// Usage example on the command line:
// > go run main.go -url=http://localhost:5000/health -interval=5s -timeout=5m
func main() {
	url := flag.String("url", "http://localhost:5000/health", "the URL that must answer with 200 OK")
	interval := flag.Duration("interval", 5*time.Second, "the time between two attempts")
	timeout := flag.Duration("timeout", 5*time.Minute, "the time after which to give up")
	flag.Parse()

	client := &http.Client{Timeout: *interval}
	deadline := time.Now().Add(*timeout)
	totalWaitTime := time.Duration(0)
	for {
		res, err := client.Get(*url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				log.Info().Str("url", *url).Msg("Service is available")
				return
			}
			log.Info().Int("status", res.StatusCode).Msg("Service not ready")
		} else {
			log.Info().Err(err).Msg("Service not reachable")
		}
		if time.Now().Add(*interval).After(deadline) {
			log.Error().Dur("waited", totalWaitTime).Msg("Giving up")
			os.Exit(1)
		}
		totalWaitTime += *interval
		log.Info().Dur("waited", totalWaitTime).Msg("Waiting")
		time.Sleep(*interval)
	}
}
