// Package simulate estimates how reliably the Luhn checksum detects
// single-digit substitutions and adjacent transpositions.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/khairate89/luhn-isbn-validator/internal/checksum"
	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

var (
	// ErrInvalidParameters is returned for a length below 2 or fewer than one sample.
	ErrInvalidParameters = errors.New("invalid simulation parameters")

	// ErrLimitExceeded is returned by CheckLimits for runs above a configured maximum.
	ErrLimitExceeded = errors.New("simulation exceeds configured limits")
)

// chunkSize is how many trials a worker runs between cancellation checks.
const chunkSize = 1024

// Config describes a parallel run.
type Config struct {
	Length  int
	Samples int

	// Seed fixes the run. Zero draws a seed from the clock; the seed used is
	// reported in the result either way.
	Seed int64

	// Workers defaults to 1.
	Workers int
}

type tally struct {
	singleDetected int
	transDetected  int
	transNoOp      int
}

func (t *tally) add(o tally) {
	t.singleDetected += o.singleDetected
	t.transDetected += o.transDetected
	t.transNoOp += o.transNoOp
}

// CheckLimits reports whether cfg stays within the non-zero maxima of
// limits. Workers is checked as given, before the default of 1 applies.
func CheckLimits(cfg Config, limits domain.SimulationConfig) error {
	switch {
	case limits.MaxLength > 0 && cfg.Length > limits.MaxLength:
		return fmt.Errorf("%w: length %d > %d", ErrLimitExceeded, cfg.Length, limits.MaxLength)
	case limits.MaxSamples > 0 && cfg.Samples > limits.MaxSamples:
		return fmt.Errorf("%w: samples %d > %d", ErrLimitExceeded, cfg.Samples, limits.MaxSamples)
	case limits.MaxWorkers > 0 && cfg.Workers > limits.MaxWorkers:
		return fmt.Errorf("%w: workers %d > %d", ErrLimitExceeded, cfg.Workers, limits.MaxWorkers)
	}
	return nil
}

// Run performs samples trials on identifiers of the given length. Each trial
// builds a random Luhn-valid identifier, then applies one random substitution
// and, independently, one random adjacent swap. A nil src uses NewRandom.
// The result's Seed is left zero since src is opaque; use RunSeeded to
// record it.
func Run(length, samples int, src Source) (domain.SimulationResult, error) {
	if err := validate(length, samples); err != nil {
		return domain.SimulationResult{}, err
	}
	if src == nil {
		src = NewRandom()
	}

	var t tally
	buf := make([]byte, length)
	for i := 0; i < samples; i++ {
		t.add(trial(buf, src))
	}
	return summarize(length, samples, t), nil
}

// RunSeeded is Run on NewSeeded(seed) with the seed recorded in the
// result. A zero seed runs and reports defaultSeed.
func RunSeeded(length, samples int, seed int64) (domain.SimulationResult, error) {
	if seed == 0 {
		seed = defaultSeed
	}
	res, err := Run(length, samples, NewSeeded(seed))
	if err != nil {
		return res, err
	}
	res.Seed = seed
	return res, nil
}

// RunParallel splits cfg.Samples across cfg.Workers goroutines, each drawing
// from its own stream derived from cfg.Seed. For a fixed seed and worker
// count the result is reproducible. Cancellation is observed between chunks.
func RunParallel(ctx context.Context, cfg Config) (domain.SimulationResult, error) {
	if err := validate(cfg.Length, cfg.Samples); err != nil {
		return domain.SimulationResult{}, err
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > cfg.Samples {
		workers = cfg.Samples
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		total  tally
		errOut error
	)

	per := cfg.Samples / workers
	extra := cfg.Samples % workers
	for w := 0; w < workers; w++ {
		n := per
		if w < extra {
			n++
		}
		wg.Add(1)
		go func(stream uint64, n int) {
			defer wg.Done()
			src := NewSeeded(deriveSeed(seed, stream))
			buf := make([]byte, cfg.Length)

			var local tally
			for done := 0; done < n; {
				if err := ctx.Err(); err != nil {
					mu.Lock()
					if errOut == nil {
						errOut = err
					}
					mu.Unlock()
					return
				}
				end := done + chunkSize
				if end > n {
					end = n
				}
				for ; done < end; done++ {
					local.add(trial(buf, src))
				}
			}

			mu.Lock()
			total.add(local)
			mu.Unlock()
		}(uint64(w), n)
	}
	wg.Wait()

	if errOut != nil {
		return domain.SimulationResult{}, fmt.Errorf("simulation cancelled: %w", errOut)
	}
	res := summarize(cfg.Length, cfg.Samples, total)
	res.Seed = seed
	return res, nil
}

func validate(length, samples int) error {
	if length < 2 {
		return fmt.Errorf("%w: length %d is below 2", ErrInvalidParameters, length)
	}
	if samples < 1 {
		return fmt.Errorf("%w: samples %d is below 1", ErrInvalidParameters, samples)
	}
	return nil
}

// trial runs one substitution and one transposition against a fresh valid
// identifier written into buf.
func trial(buf []byte, src Source) tally {
	n := len(buf)
	for i := 0; i < n-1; i++ {
		buf[i] = byte('0' + src.Intn(10))
	}
	check, _ := checksum.LuhnCheckDigit(string(buf[:n-1]))
	buf[n-1] = byte('0' + check)

	var t tally

	p := src.Intn(n)
	orig := buf[p]
	d := byte('0' + src.Intn(9))
	if d >= orig {
		d++
	}
	buf[p] = d
	if !checksum.IsLuhnValid(string(buf)) {
		t.singleDetected = 1
	}
	buf[p] = orig

	p = src.Intn(n - 1)
	if buf[p] == buf[p+1] {
		t.transNoOp = 1
		return t
	}
	buf[p], buf[p+1] = buf[p+1], buf[p]
	if !checksum.IsLuhnValid(string(buf)) {
		t.transDetected = 1
	}
	return t
}

func summarize(length, samples int, t tally) domain.SimulationResult {
	res := domain.SimulationResult{
		IdentifierLength:              length,
		SampleCount:                   samples,
		TranspositionTrials:           samples - t.transNoOp,
		NoOpTranspositions:            t.transNoOp,
		SingleFaultDetectionRate:      float64(t.singleDetected) / float64(samples),
		RawTranspositionDetectionRate: float64(t.transDetected) / float64(samples),
	}
	if res.TranspositionTrials > 0 {
		res.TranspositionDetectionRate = float64(t.transDetected) / float64(res.TranspositionTrials)
	}
	return res
}
