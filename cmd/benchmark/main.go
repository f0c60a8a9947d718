// Benchmark tool for load-testing the validator with labelled identifiers.
//
// Usage:
//
//	go run ./cmd/benchmark -csv /path/to/identifiers.csv -url http://localhost:8080
//
// The CSV needs a header with the columns kind (card or isbn), identifier
// and valid (1 or 0, the expected verdict). This tool:
//  1. Reads the labelled identifiers
//  2. Posts each one to /cards/validate or /isbn/validate
//  3. Compares the service verdict with the label
//  4. Reports throughput, latency and the confusion matrix
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	csvPath := flag.String("csv", "", "Path to labelled identifier CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Validator base URL")
	limit := flag.Int("limit", 10000, "Maximum rows to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	kindFilter := flag.String("kind", "", "Only send rows of this kind (card, isbn)")
	strategy := flag.String("strategy", "narrow", "Correction strategy for invalid ISBNs")
	verbose := flag.Bool("verbose", false, "Print each result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/identifiers.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("+---------------------------------------------------------------+")
	fmt.Println("|           VALIDATOR BENCHMARK - Labelled Identifiers          |")
	fmt.Println("+---------------------------------------------------------------+")
	fmt.Printf("\nCSV File:    %s\n", *csvPath)
	fmt.Printf("URL:         %s\n", *baseURL)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Limit:       %d\n", *limit)
	fmt.Printf("Kind:        %s\n", orAll(*kindFilter))
	fmt.Println()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: validator not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure the validator is running:")
		fmt.Println("  go run ./cmd/validator")
		os.Exit(1)
	}
	fmt.Println("OK validator is healthy")

	f, err := os.Open(*csvPath)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	samples, err := readSamples(f, *limit, *kindFilter)
	f.Close()
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}

	valid := 0
	for _, s := range samples {
		if s.Valid {
			valid++
		}
	}
	fmt.Printf("OK loaded %d identifiers\n", len(samples))
	if len(samples) > 0 {
		fmt.Printf("  - Valid:   %d (%.2f%%)\n", valid, 100*float64(valid)/float64(len(samples)))
		fmt.Printf("  - Invalid: %d (%.2f%%)\n", len(samples)-valid, 100*float64(len(samples)-valid)/float64(len(samples)))
	}

	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	client := &client{
		http:     &http.Client{Timeout: 30 * time.Second},
		baseURL:  *baseURL,
		strategy: *strategy,
	}
	start := time.Now()
	metrics := run(samples, client, *workers, *verbose)
	printResults(metrics, time.Since(start))
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n+---------------------------------------------------------------+")
	fmt.Println("|                       BENCHMARK RESULTS                       |")
	fmt.Println("+---------------------------------------------------------------+")

	fmt.Printf("\nDATASET\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Cards:            %d\n", m.Cards)
	fmt.Printf("   ISBNs:            %d\n", m.ISBNs)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	fmt.Printf("\nCONFUSION MATRIX\n")
	fmt.Println("                        Service")
	fmt.Println("                   valid     invalid")
	fmt.Println("              +----------+----------+")
	fmt.Printf("   Label   V  | %8d | %8d |  (agree, rejected)\n", m.ValidAccepted, m.ValidRejected)
	fmt.Println("              +----------+----------+")
	fmt.Printf("           I  | %8d | %8d |  (accepted, agree)\n", m.InvalidAccepted, m.InvalidRejected)
	fmt.Println("              +----------+----------+")

	fmt.Printf("\n   Agreement:  %.4f\n", m.Agreement())
	if m.Disagreements() > 0 {
		fmt.Printf("   %d identifiers disagree with their label; check the CSV or the service.\n", m.Disagreements())
	}

	fmt.Printf("\nSUGGESTIONS\n")
	fmt.Printf("   Invalid ISBNs with suggestions:  %d\n", m.ISBNsWithSuggestions)
	fmt.Printf("   Books found:                     %d\n", m.BooksFound)

	fmt.Printf("\nPERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		fmt.Printf("   Avg Latency:      %.2f ms\n", float64(m.ProcessingTimeMs)/float64(m.TotalProcessed))
		fmt.Printf("   Throughput:       %.2f req/sec\n", float64(m.TotalProcessed)/duration.Seconds())
	}
	fmt.Println()
}
