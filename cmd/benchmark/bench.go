package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Sample is one labelled row of the input CSV.
type Sample struct {
	Kind       string
	Identifier string
	Valid      bool
}

// Verdict is the part of a validate response the benchmark scores.
type Verdict struct {
	Valid       bool              `json:"valid"`
	Book        *json.RawMessage  `json:"book"`
	Suggestions []json.RawMessage `json:"suggestions"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	ValidAccepted   int64
	ValidRejected   int64
	InvalidAccepted int64
	InvalidRejected int64

	TotalProcessed int64
	TotalErrors    int64
	Cards          int64
	ISBNs          int64

	ISBNsWithSuggestions int64
	BooksFound           int64

	ProcessingTimeMs int64
}

func (m *Metrics) record(s Sample, v *Verdict) {
	switch {
	case s.Valid && v.Valid:
		atomic.AddInt64(&m.ValidAccepted, 1)
	case s.Valid:
		atomic.AddInt64(&m.ValidRejected, 1)
	case v.Valid:
		atomic.AddInt64(&m.InvalidAccepted, 1)
	default:
		atomic.AddInt64(&m.InvalidRejected, 1)
	}

	if s.Kind == "card" {
		atomic.AddInt64(&m.Cards, 1)
		return
	}
	atomic.AddInt64(&m.ISBNs, 1)
	if len(v.Suggestions) > 0 {
		atomic.AddInt64(&m.ISBNsWithSuggestions, 1)
	}
	if v.Book != nil && string(*v.Book) != "null" {
		atomic.AddInt64(&m.BooksFound, 1)
	}
}

// Agreement is the fraction of answered rows whose verdict matched the label.
func (m *Metrics) Agreement() float64 {
	total := m.ValidAccepted + m.ValidRejected + m.InvalidAccepted + m.InvalidRejected
	if total == 0 {
		return 0
	}
	return float64(m.ValidAccepted+m.InvalidRejected) / float64(total)
}

// Disagreements counts rows whose verdict did not match the label.
func (m *Metrics) Disagreements() int64 {
	return m.ValidRejected + m.InvalidAccepted
}

// readSamples parses the labelled CSV. Rows with an unknown kind or a short
// record are skipped; kind filters when non-empty.
func readSamples(r io.Reader, limit int, kind string) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"kind", "identifier", "valid"} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	width := max(colIndex["kind"], colIndex["identifier"], colIndex["valid"]) + 1

	var samples []Sample
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || len(record) < width {
			continue
		}

		s := Sample{
			Kind:       strings.ToLower(strings.TrimSpace(record[colIndex["kind"]])),
			Identifier: record[colIndex["identifier"]],
			Valid:      strings.TrimSpace(record[colIndex["valid"]]) == "1",
		}
		if s.Kind != "card" && s.Kind != "isbn" {
			continue
		}
		if kind != "" && s.Kind != kind {
			continue
		}

		samples = append(samples, s)
		if limit > 0 && len(samples) >= limit {
			break
		}
	}
	return samples, nil
}

type client struct {
	http     *http.Client
	baseURL  string
	strategy string
}

func (c *client) validate(s Sample) (*Verdict, error) {
	var (
		path string
		body any
	)
	if s.Kind == "card" {
		path = "/cards/validate"
		body = map[string]string{"number": s.Identifier}
	} else {
		path = "/isbn/validate"
		body = map[string]string{"isbn": s.Identifier, "strategy": c.strategy}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var v Verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func run(samples []Sample, c *client, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}
	if numWorkers < 1 {
		numWorkers = 1
	}

	work := make(chan Sample, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				start := time.Now()
				v, err := c.validate(s)
				atomic.AddInt64(&metrics.ProcessingTimeMs, time.Since(start).Milliseconds())
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s %s -> %v\n", s.Kind, s.Identifier, err)
					}
					continue
				}
				metrics.record(s, v)

				if verbose {
					mark := "ok"
					if v.Valid != s.Valid {
						mark = "XX"
					}
					fmt.Printf("%s %-4s %-24s | label: %-5v | service: %-5v\n", mark, s.Kind, s.Identifier, s.Valid, v.Valid)
				}
			}
		}()
	}

	for _, s := range samples {
		work <- s
	}
	close(work)
	wg.Wait()

	return metrics
}
