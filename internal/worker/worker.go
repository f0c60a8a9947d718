// Package worker runs detection-rate experiments requested over the EventBus.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
	"github.com/khairate89/luhn-isbn-validator/internal/simulate"
)

// Worker consumes experiment requests, runs them and stores the results.
type Worker struct {
	bus      domain.EventBus
	cache    domain.Cache
	settings domain.SimulationConfig

	mu            sync.Mutex
	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewWorker creates a new experiment worker.
func NewWorker(bus domain.EventBus, cache domain.Cache, settings domain.SimulationConfig) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:      bus,
		cache:    cache,
		settings: settings,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes to experiment requests.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicExperimentRequested, w.handleRequest)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.subscriptions = append(w.subscriptions, sub)
	w.mu.Unlock()

	slog.Info("experiment worker started",
		"topic", domain.TopicExperimentRequested,
		"workers", w.settings.Workers,
	)
	return nil
}

// Submit records a pending experiment and publishes the request. Zero
// fields in req fall back to settings. A request above the limits in
// settings fails with simulate.ErrLimitExceeded before anything is stored.
func Submit(ctx context.Context, bus domain.EventBus, cache domain.Cache, settings domain.SimulationConfig, req domain.ExperimentRequest) (*domain.Experiment, error) {
	req = withDefaults(req, settings)
	if err := simulate.CheckLimits(runConfig(req), settings); err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	req.Requested = now.UnixMilli()

	exp := &domain.Experiment{
		ID:          req.ID,
		Status:      domain.ExperimentPending,
		RequestedAt: now,
	}
	if err := cache.SetExperiment(ctx, exp.ID, exp, settings.ResultTTL); err != nil {
		return nil, fmt.Errorf("failed to store experiment: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := bus.Publish(ctx, domain.TopicExperimentRequested, payload); err != nil {
		return nil, fmt.Errorf("failed to publish experiment: %w", err)
	}
	return exp, nil
}

func withDefaults(req domain.ExperimentRequest, settings domain.SimulationConfig) domain.ExperimentRequest {
	if req.Length == 0 {
		req.Length = settings.DefaultLength
	}
	if req.Samples == 0 {
		req.Samples = settings.DefaultSamples
	}
	if req.Workers == 0 {
		req.Workers = settings.Workers
	}
	if req.Seed == 0 {
		req.Seed = settings.Seed
	}
	return req
}

func runConfig(req domain.ExperimentRequest) simulate.Config {
	return simulate.Config{
		Length:  req.Length,
		Samples: req.Samples,
		Seed:    req.Seed,
		Workers: req.Workers,
	}
}

// handleRequest runs one experiment. Failures are stored on the experiment
// rather than returned, so clients polling for it see them.
func (w *Worker) handleRequest(ctx context.Context, msg *domain.Message) error {
	w.mu.Lock()
	if w.ctx.Err() != nil {
		w.mu.Unlock()
		return nil
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	var req domain.ExperimentRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		slog.Error("failed to parse experiment request",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}
	if req.ID == "" {
		req.ID = msg.ID
	}
	req = withDefaults(req, w.settings)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(w.ctx, cancel)
	defer stop()

	start := time.Now()
	slog.Debug("running experiment",
		"experiment_id", req.ID,
		"length", req.Length,
		"samples", req.Samples,
		"trace_id", msg.Metadata["trace_id"],
	)

	exp := &domain.Experiment{
		ID:          req.ID,
		RequestedAt: time.UnixMilli(req.Requested).UTC(),
	}

	// Requests may arrive from other publishers, so limits are enforced
	// here as well as in Submit.
	var result domain.SimulationResult
	err := simulate.CheckLimits(runConfig(req), w.settings)
	if err == nil {
		result, err = simulate.RunParallel(runCtx, runConfig(req))
	}
	completed := time.Now().UTC()
	exp.CompletedAt = &completed
	if err != nil {
		exp.Status = domain.ExperimentFailed
		exp.Error = err.Error()
	} else {
		exp.Status = domain.ExperimentCompleted
		exp.Result = &result
	}

	// A cancelled run is still recorded as failed.
	ctx = context.WithoutCancel(ctx)
	if err := w.cache.SetExperiment(ctx, exp.ID, exp, w.settings.ResultTTL); err != nil {
		slog.Error("failed to store experiment",
			"experiment_id", exp.ID,
			"error", err,
		)
	}

	payload, _ := json.Marshal(exp)
	if err := w.bus.Publish(ctx, domain.TopicExperimentCompleted, payload); err != nil {
		slog.Error("failed to publish experiment result",
			"experiment_id", exp.ID,
			"error", err,
		)
	}

	slog.Info("experiment processed",
		"experiment_id", exp.ID,
		"status", exp.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Stop cancels running experiments and unsubscribes.
func (w *Worker) Stop() error {
	w.cancel()

	w.mu.Lock()
	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil
	w.mu.Unlock()

	w.wg.Wait()

	slog.Info("experiment worker stopped")
	return nil
}

// Stats reports the active subscriptions.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
