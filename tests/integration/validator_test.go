//go:build integration
// +build integration

// Package integration provides end-to-end tests against a running validator.
//
// These tests exercise the public HTTP surface the way a client would:
//
//	card number -> Luhn verdict -> expected check digit -> network
//	ISBN        -> checksum verdict -> suggestions -> book records
//	experiment  -> detection rates (sync, then async via the worker)
//
// Run with: go test -tags=integration -v ./tests/integration/...
//
// Start the service first:
//
//	go run ./cmd/validator
//
// Book lookups go to the configured books API, so assertions here only
// depend on checksum behavior, never on which books happen to be found.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// TestConfig holds test environment configuration
type TestConfig struct {
	BaseURL string
}

func getTestConfig(t *testing.T) TestConfig {
	t.Helper()

	baseURL := os.Getenv("VALIDATOR_TEST_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		t.Skipf("validator not reachable at %s: %v", baseURL, err)
	}
	resp.Body.Close()

	return TestConfig{BaseURL: baseURL}
}

// ============================================================================
// API Response Types (matching the validator's API contract)
// ============================================================================

type CardResponse struct {
	Number             string `json:"number"`
	Valid              bool   `json:"valid"`
	Message            string `json:"message"`
	Residual           int    `json:"residual"`
	ExpectedCheckDigit *int   `json:"expectedCheckDigit"`
	Network            string `json:"network"`
	Explanation        *struct {
		Total int `json:"total"`
		Mod10 int `json:"mod10"`
	} `json:"explanation"`
	Experiment *ExperimentResult `json:"experiment"`
}

type Suggestion struct {
	ISBN string          `json:"isbn"`
	Book json.RawMessage `json:"book"`
}

type ISBNResponse struct {
	ISBN             string       `json:"isbn"`
	Valid            bool         `json:"valid"`
	Residual         int          `json:"residual"`
	Suggestions      []Suggestion `json:"suggestions"`
	TotalSuggestions int          `json:"totalSuggestions"`
}

type ExperimentResult struct {
	SampleCount         int     `json:"num_samples"`
	Seed                int64   `json:"seed"`
	SingleDetectionRate float64 `json:"single_detection_rate"`
	TransDetectionRate  float64 `json:"trans_detection_rate"`
}

type Experiment struct {
	ID     string            `json:"experimentId"`
	Status string            `json:"status"`
	Result *ExperimentResult `json:"result"`
	Error  string            `json:"error"`
}

// ============================================================================
// Test Helper Functions
// ============================================================================

func post(t *testing.T, config TestConfig, path string, body any, wantStatus int, out any) {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(config.BaseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	decodeBody(t, resp, wantStatus, out)
}

func get(t *testing.T, config TestConfig, path string, wantStatus int, out any) {
	t.Helper()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(config.BaseURL + path)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	decodeBody(t, resp, wantStatus, out)
}

func decodeBody(t *testing.T, resp *http.Response, wantStatus int, out any) {
	t.Helper()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("Expected status %d, got %d: %s", wantStatus, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body: %s)", err, string(respBody))
	}
}

// ============================================================================
// SCENARIO 1: Card numbers
// ============================================================================

func TestCard_ValidNumber(t *testing.T) {
	config := getTestConfig(t)

	var result CardResponse
	post(t, config, "/cards/validate", map[string]string{"number": "4532 0151 1283 0366"}, http.StatusOK, &result)

	if !result.Valid {
		t.Errorf("Expected valid card, got %+v", result)
	}
	if result.Number != "4532015112830366" {
		t.Errorf("Expected normalized number, got %s", result.Number)
	}
	if result.Network != "visa" {
		t.Errorf("Expected visa network, got %q", result.Network)
	}
	if result.ExpectedCheckDigit != nil {
		t.Errorf("Valid numbers carry no expected check digit, got %d", *result.ExpectedCheckDigit)
	}
	if result.Explanation == nil || result.Explanation.Mod10 != 0 {
		t.Errorf("Expected explanation with mod10 0, got %+v", result.Explanation)
	}
}

func TestCard_MistypedCheckDigit(t *testing.T) {
	config := getTestConfig(t)

	var result CardResponse
	post(t, config, "/cards/validate", map[string]string{"number": "4532015112830367"}, http.StatusOK, &result)

	if result.Valid {
		t.Fatal("Expected invalid card")
	}
	if result.Residual != 1 {
		t.Errorf("Expected residual 1, got %d", result.Residual)
	}
	if result.ExpectedCheckDigit == nil || *result.ExpectedCheckDigit != 6 {
		t.Errorf("Expected check digit 6, got %v", result.ExpectedCheckDigit)
	}
}

func TestCard_NoDigits(t *testing.T) {
	config := getTestConfig(t)

	var result CardResponse
	post(t, config, "/cards/validate", map[string]string{"number": "abc-def"}, http.StatusOK, &result)

	if result.Valid || result.Message != "No digits found in input." {
		t.Errorf("Expected no-digits verdict, got %+v", result)
	}
}

func TestCard_CheckDigitRoundTrip(t *testing.T) {
	config := getTestConfig(t)

	var digit map[string]string
	post(t, config, "/cards/check-digit", map[string]string{"base": "7992739871"}, http.StatusOK, &digit)
	if digit["checkDigit"] != "3" {
		t.Fatalf("Expected check digit 3, got %v", digit)
	}

	var result CardResponse
	post(t, config, "/cards/validate", map[string]string{"number": digit["number"]}, http.StatusOK, &result)
	if !result.Valid {
		t.Errorf("Completed number %s should validate", digit["number"])
	}
}

// ============================================================================
// SCENARIO 2: ISBNs
// ============================================================================

func TestISBN_Valid(t *testing.T) {
	config := getTestConfig(t)

	var result ISBNResponse
	post(t, config, "/isbn/validate", map[string]string{"isbn": "978-0-306-40615-7"}, http.StatusOK, &result)

	if !result.Valid || result.ISBN != "9780306406157" {
		t.Errorf("Expected valid normalized ISBN, got %+v", result)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("Valid ISBNs get no suggestions, got %d", len(result.Suggestions))
	}
}

func TestISBN_NarrowSuggestions(t *testing.T) {
	config := getTestConfig(t)

	var result ISBNResponse
	post(t, config, "/isbn/validate", map[string]string{"isbn": "0306406153", "strategy": "narrow"}, http.StatusOK, &result)

	if result.Valid {
		t.Fatal("Expected invalid ISBN")
	}
	found := false
	for _, s := range result.Suggestions {
		if s.ISBN == "0306406152" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 0306406152 among suggestions, got %+v", result.Suggestions)
	}
}

func TestISBN_BroadSuggestionsAreCapped(t *testing.T) {
	config := getTestConfig(t)

	var result ISBNResponse
	post(t, config, "/isbn/validate", map[string]string{"isbn": "0306406153", "strategy": "broad"}, http.StatusOK, &result)

	if result.TotalSuggestions != 9 {
		t.Errorf("Expected 9 broad corrections, got %d", result.TotalSuggestions)
	}
	if len(result.Suggestions) > result.TotalSuggestions {
		t.Errorf("Suggestions (%d) exceed total (%d)", len(result.Suggestions), result.TotalSuggestions)
	}
}

func TestISBN_BadStrategy(t *testing.T) {
	config := getTestConfig(t)
	post(t, config, "/isbn/validate", map[string]string{"isbn": "0306406153", "strategy": "wild"}, http.StatusBadRequest, nil)
}

// ============================================================================
// SCENARIO 3: Detection experiments
// ============================================================================

func TestExperiment_Sync(t *testing.T) {
	config := getTestConfig(t)

	var result ExperimentResult
	post(t, config, "/experiments/", map[string]any{"length": 16, "samples": 2000, "seed": 99}, http.StatusOK, &result)

	if result.SampleCount != 2000 || result.Seed != 99 {
		t.Errorf("Unexpected run parameters: %+v", result)
	}
	if result.SingleDetectionRate != 1.0 {
		t.Errorf("Luhn detects every single-digit error, got %.4f", result.SingleDetectionRate)
	}
	if result.TransDetectionRate < 0.9 || result.TransDetectionRate > 1.0 {
		t.Errorf("Transposition rate out of range: %.4f", result.TransDetectionRate)
	}

	var again ExperimentResult
	post(t, config, "/experiments/", map[string]any{"length": 16, "samples": 2000, "seed": 99}, http.StatusOK, &again)
	if again != result {
		t.Errorf("Same seed should reproduce: %+v vs %+v", result, again)
	}
}

func TestExperiment_Async(t *testing.T) {
	config := getTestConfig(t)

	var submitted Experiment
	post(t, config, "/experiments/", map[string]any{"samples": 500, "seed": 5, "async": true}, http.StatusAccepted, &submitted)
	if submitted.ID == "" {
		t.Fatal("Expected an experiment id")
	}

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		var exp Experiment
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Get(config.BaseURL + "/experiments/" + submitted.ID)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		status := resp.StatusCode
		decodeBody(t, resp, status, &exp)
		resp.Body.Close()

		if status == http.StatusOK {
			if exp.Result == nil || exp.Result.SampleCount != 500 {
				t.Errorf("Unexpected result: %+v", exp)
			}
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("Experiment did not complete; is the async worker enabled?")
}

func TestExperiment_NotFound(t *testing.T) {
	config := getTestConfig(t)
	get(t, config, "/experiments/does-not-exist", http.StatusNotFound, nil)
}
