// Command seed posts randomized hazard reports to a running scoring service,
// useful for exercising the scoreboard against a local stack.
//
// Usage:
//
//	go run ./cmd/seed \
//	  -api http://localhost:8080 \
//	  -day 2025-06-10 \
//	  -count 50
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
)

var hazards = []string{"hail", "wind", "tornado"}

// Bounding box roughly covering southern Brazil, the contest's usual area of
// interest.
const (
	latMin, latMax = -34.0, -22.0
	lonMin, lonMax = -58.0, -48.0
)

type reportPayload struct {
	Hazard   string  `json:"hazard"`
	Severity string  `json:"sev"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Author   string  `json:"author"`
	Day      string  `json:"day"`
	Time     string  `json:"time"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	apiURL := flag.String("api", "http://localhost:8080", "scoring service base URL")
	day := flag.String("day", time.Now().Format("2006-01-02"), "contest day for the generated reports")
	count := flag.Int("count", 25, "number of reports to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed, fixed for reproducible runs")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	client := &http.Client{Timeout: 5 * time.Second}

	created := 0
	for i := 0; i < *count; i++ {
		payload := reportPayload{
			Hazard:   hazards[rng.Intn(len(hazards))],
			Severity: "NOR",
			Lat:      latMin + rng.Float64()*(latMax-latMin),
			Lon:      lonMin + rng.Float64()*(lonMax-lonMin),
			Author:   fmt.Sprintf("seed-%02d", i),
			Day:      *day,
			Time:     fmt.Sprintf("%02d:%02d", 11+rng.Intn(13), rng.Intn(60)),
		}
		// Roughly one in eight reports is significant.
		if rng.Intn(8) == 0 {
			payload.Severity = "SS"
		}

		if err := post(client, *apiURL+"/api/reports", payload); err != nil {
			return fmt.Errorf("report %d: %w", i, err)
		}
		created++
	}

	log.Printf("created %d reports for %s", created, *day)
	return nil
}

func post(client *http.Client, url string, payload reportPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
