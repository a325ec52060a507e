package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"graficaos.service/pkg/auth"
)

// Punches every user in LOAD_TEST_USER_IDS several times at once. The users
// must exist in the database. A 409 is a correctly rejected extra punch.
func main() {
	url := "http://localhost:8080/api/v1/pontos/bater"

	secret := os.Getenv("JWT_SECRET")
	ids := strings.Split(os.Getenv("LOAD_TEST_USER_IDS"), ",")
	if secret == "" || len(ids) == 0 || ids[0] == "" {
		fmt.Println("JWT_SECRET and LOAD_TEST_USER_IDS (comma separated) are required")
		os.Exit(1)
	}

	// Two more than the four slots so every user hits the closed journey.
	punchesPerUser := 6
	totalRequests := len(ids) * punchesPerUser
	concurrency := 50 // Number of concurrent requests to avoid local port exhaustion

	fmt.Printf("Starting load test: %d users (%d punches each) to %s with concurrency %d\n", len(ids), punchesPerUser, url, concurrency)

	tokens := auth.NewManager(secret, time.Hour)
	client := &http.Client{Timeout: 10 * time.Second}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	var okCount, conflictCount, failCount int64

	startTime := time.Now()

	for _, id := range ids {
		token, err := tokens.GenerateAccessToken(strings.TrimSpace(id), "EMPLOYEE")
		if err != nil {
			fmt.Printf("Could not sign token for %s: %v\n", id, err)
			os.Exit(1)
		}

		for j := 0; j < punchesPerUser; j++ {
			wg.Add(1)
			sem <- struct{}{}

			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				req, _ := http.NewRequest(http.MethodPost, url, nil)
				req.Header.Set("Authorization", "Bearer "+token)

				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					return
				}
				defer resp.Body.Close()

				switch {
				case resp.StatusCode == http.StatusOK:
					atomic.AddInt64(&okCount, 1)
				case resp.StatusCode == http.StatusConflict:
					atomic.AddInt64(&conflictCount, 1)
				default:
					atomic.AddInt64(&failCount, 1)
				}
			}()
		}
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Punched:        %d (expected at most %d)\n", okCount, len(ids)*4)
	fmt.Printf("Conflicts:      %d\n", conflictCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
