package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	checkEndpoint(baseURL, "GET", "/health", 200)
	checkEndpoint(baseURL, "GET", "/", 200)

	body := checkEndpoint(baseURL, "GET", "/api/portfolio", 200)
	var portfolio struct {
		Positions []struct {
			ID        string `json:"id"`
			IsPending bool   `json:"is_pending"`
		} `json:"positions"`
		Summary map[string]any `json:"summary"`
	}
	if err := json.Unmarshal(body, &portfolio); err != nil {
		log.Fatalf("decode portfolio: %v", err)
	}
	if len(portfolio.Positions) != 4 {
		log.Fatalf("expected 4 positions, got %d", len(portfolio.Positions))
	}
	for _, p := range portfolio.Positions {
		fmt.Printf("  %-8s pending=%v\n", p.ID, p.IsPending)
	}

	checkEndpoint(baseURL, "GET", "/api/portfolio/oqep_1", 200)
	checkEndpoint(baseURL, "GET", "/api/portfolio/does-not-exist", 404)
	checkEndpoint(baseURL, "GET", "/api/summary", 200)
	checkEndpoint(baseURL, "GET", "/api/prices", 200)
	checkEndpoint(baseURL, "POST", "/api/prices/refresh", 200)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(baseURL, method, path string, expectedStatus int) []byte {
	fmt.Printf("Testing %s %s...\n", method, path)
	req, _ := http.NewRequest(method, baseURL+path, nil)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))
	return respBody
}
