package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `kind,identifier,valid
card,4532015112830366,1
card,4532015112830367,0
isbn,0-306-40615-2,1
isbn,0306406153,0
iban,GB82WEST12345698765432,1
card,short
`

func TestReadSamples(t *testing.T) {
	samples, err := readSamples(strings.NewReader(sampleCSV), 0, "")
	if err != nil {
		t.Fatalf("readSamples failed: %v", err)
	}
	if len(samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(samples))
	}
	if samples[2].Kind != "isbn" || !samples[2].Valid {
		t.Errorf("unexpected sample: %+v", samples[2])
	}

	cards, _ := readSamples(strings.NewReader(sampleCSV), 0, "card")
	if len(cards) != 2 {
		t.Errorf("expected 2 cards, got %d", len(cards))
	}

	limited, _ := readSamples(strings.NewReader(sampleCSV), 1, "")
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}

	if _, err := readSamples(strings.NewReader("a,b\n1,2\n"), 0, ""); err == nil {
		t.Error("expected missing column error")
	}
}

func TestRun(t *testing.T) {
	// Fake service: every card ending in 6 and every ISBN ending in 2 is valid.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		id := body["number"] + body["isbn"]
		valid := strings.HasSuffix(id, "6") || strings.HasSuffix(id, "2")

		resp := map[string]any{"valid": valid}
		if r.URL.Path == "/isbn/validate" && !valid {
			resp["suggestions"] = []map[string]string{{"isbn": "0306406152"}}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	samples, _ := readSamples(strings.NewReader(sampleCSV), 0, "")
	c := &client{http: &http.Client{Timeout: time.Second}, baseURL: srv.URL, strategy: "narrow"}
	m := run(samples, c, 2, false)

	if m.TotalProcessed != 4 || m.TotalErrors != 0 {
		t.Fatalf("unexpected totals: %+v", m)
	}
	if m.ValidAccepted != 2 || m.InvalidRejected != 2 {
		t.Errorf("unexpected confusion matrix: %+v", m)
	}
	if m.Agreement() != 1.0 || m.Disagreements() != 0 {
		t.Errorf("expected full agreement, got %f", m.Agreement())
	}
	if m.Cards != 2 || m.ISBNs != 2 || m.ISBNsWithSuggestions != 1 {
		t.Errorf("unexpected breakdown: %+v", m)
	}
}
