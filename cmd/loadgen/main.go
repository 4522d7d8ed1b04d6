package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"fedforum/pkg/testing"

	"github.com/google/uuid"
)

// loadgen drives synthetic traffic against a running instance so the
// inbox and vote paths can be profiled under concurrency.
func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "base URL of the target instance")
		scenario    = flag.String("scenario", "health", "scenario to run: health, inbox, vote")
		concurrency = flag.Int("c", 10, "number of concurrent workers")
		duration    = flag.Duration("d", 30*time.Second, "how long to run")
		token       = flag.String("token", "", "bearer token for authenticated scenarios")
		postID      = flag.String("post", "", "post ID for the vote scenario")
	)
	flag.Parse()

	scenarios := testing.NewAPIScenarios(*baseURL)

	var request testing.RequestFunc
	switch *scenario {
	case "health":
		request = scenarios.HealthCheck()
	case "inbox":
		request = scenarios.InboxDelivery(samplePageActivity())
	case "vote":
		if *postID == "" {
			fmt.Fprintln(os.Stderr, "the vote scenario requires -post")
			os.Exit(1)
		}
		request = scenarios.VoteSubmit(*token, *postID, 1)
	default:
		fmt.Fprintf(os.Stderr, "unknown scenario: %s\n", *scenario)
		os.Exit(1)
	}

	runner := testing.NewRunner(*scenario, *concurrency, *duration)
	runner.Run(request).Print()
}

// samplePageActivity builds a post object addressed to a community that
// does not exist, so the instance exercises parse and verify without
// writing rows.
func samplePageActivity() []byte {
	id := uuid.New().String()
	doc := map[string]interface{}{
		"type":         "Page",
		"id":           fmt.Sprintf("https://loadgen.invalid/post/%s", id),
		"attributedTo": fmt.Sprintf("https://loadgen.invalid/u/%s", id),
		"to":           []string{fmt.Sprintf("https://loadgen.invalid/c/%s", id)},
		"name":         "synthetic load",
	}
	data, _ := json.Marshal(doc)
	return data
}
