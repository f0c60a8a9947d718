package domain

import "time"

// SimulationResult is the outcome of a detection-rate experiment.
type SimulationResult struct {
	IdentifierLength int   `json:"identifierLength"`
	SampleCount      int   `json:"num_samples"`
	Seed             int64 `json:"seed,omitempty"`

	// SingleFaultDetectionRate is detected substitutions / SampleCount.
	SingleFaultDetectionRate float64 `json:"single_detection_rate"`

	// TranspositionDetectionRate is detected swaps / TranspositionTrials.
	// Swaps of two equal digits change nothing and are not counted as faults.
	TranspositionDetectionRate float64 `json:"trans_detection_rate"`
	TranspositionTrials        int     `json:"transpositionTrials"`
	NoOpTranspositions         int     `json:"noOpTranspositions"`

	// RawTranspositionDetectionRate is detected swaps / SampleCount.
	RawTranspositionDetectionRate float64 `json:"raw_trans_detection_rate"`
}

// Experiment status values.
const (
	ExperimentPending   = "pending"
	ExperimentCompleted = "completed"
	ExperimentFailed    = "failed"
)

// ExperimentRequest asks for an asynchronous detection-rate experiment.
type ExperimentRequest struct {
	ID        string `json:"id"`
	Length    int    `json:"length"`
	Samples   int    `json:"samples"`
	Seed      int64  `json:"seed,omitempty"`
	Workers   int    `json:"workers,omitempty"`
	TraceID   string `json:"traceId,omitempty"`
	Requested int64  `json:"requested"`
}

// Experiment is the stored state of an asynchronous experiment.
type Experiment struct {
	ID          string            `json:"experimentId"`
	Status      string            `json:"status"`
	Result      *SimulationResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	RequestedAt time.Time         `json:"requestedAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}
