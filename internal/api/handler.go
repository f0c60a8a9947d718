package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/khairate89/luhn-isbn-validator/internal/checksum"
	"github.com/khairate89/luhn-isbn-validator/internal/correction"
	"github.com/khairate89/luhn-isbn-validator/internal/domain"
	"github.com/khairate89/luhn-isbn-validator/internal/network"
	"github.com/khairate89/luhn-isbn-validator/internal/simulate"
	"github.com/khairate89/luhn-isbn-validator/internal/verify"
	"github.com/khairate89/luhn-isbn-validator/internal/worker"
)

// maxBodyBytes bounds request bodies; every request is a few identifiers.
const maxBodyBytes = 64 << 10

const defaultMaxIdentifierLength = 64

// Deps are the collaborators the handlers use. Repo, Cache and Bus may be
// nil; the endpoints needing them then answer 503.
type Deps struct {
	Processor  *verify.Processor
	Networks   *network.Engine
	Repo       domain.Repository
	Cache      domain.Cache
	Bus        domain.EventBus
	Simulation domain.SimulationConfig
	Version    string

	// MaxIdentifierLength bounds the digits accepted by the correction
	// endpoints, whose search grows with the identifier.
	MaxIdentifierLength int
}

// Handler holds dependencies for API handlers.
type Handler struct {
	Deps
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	if deps.Processor == nil {
		deps.Processor = verify.NewProcessor(nil, deps.Networks, 0)
	}
	if deps.MaxIdentifierLength <= 0 {
		deps.MaxIdentifierLength = defaultMaxIdentifierLength
	}
	return &Handler{Deps: deps}
}

// Health reports whether the backing services answer.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{}

	ping := func(name string, fn func() error) {
		if err := fn(); err != nil {
			status = "degraded"
			checks[name] = err.Error()
			return
		}
		checks[name] = "ok"
	}
	if h.Repo != nil {
		ping("repository", func() error { return h.Repo.Ping(r.Context()) })
	}
	if h.Cache != nil {
		ping("cache", func() error { return h.Cache.Ping(r.Context()) })
	}
	if h.Bus != nil {
		ping("eventBus", func() error { return h.Bus.Ping(r.Context()) })
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": h.Version,
		"checks":  checks,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// ============================================================================
// CARD HANDLERS
// ============================================================================

// CardRequest is the request body for POST /cards/validate.
type CardRequest struct {
	Number        string `json:"number"`
	RunExperiment bool   `json:"runExperiment,omitempty"`
	Samples       int    `json:"samples,omitempty"`
}

// CardResponse is the response for POST /cards/validate.
type CardResponse struct {
	verify.CardReport
	Experiment *domain.SimulationResult `json:"experiment,omitempty"`
}

// ValidateCard handles POST /cards/validate. Input with no digits is not an
// error: it answers 200 with valid=false and an explanatory message.
func (h *Handler) ValidateCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if !decode(w, r, &req) {
		return
	}

	resp := CardResponse{CardReport: h.Processor.CheckCard(req.Number)}

	if req.RunExperiment && resp.Number != "" {
		samples := req.Samples
		if samples == 0 {
			samples = h.Simulation.DefaultSamples
		}
		cfg := simulate.Config{
			Length:  len(resp.Number),
			Samples: samples,
			Seed:    h.Simulation.Seed,
			Workers: h.Simulation.Workers,
		}
		if err := simulate.CheckLimits(cfg, h.Simulation); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		result, err := simulate.RunParallel(r.Context(), cfg)
		if err != nil {
			writeSimulationError(w, err)
			return
		}
		resp.Experiment = &result
	}

	writeJSON(w, http.StatusOK, resp)
}

// CheckDigitRequest is the request body for the check-digit endpoints.
type CheckDigitRequest struct {
	Base string `json:"base"`
}

// CardCheckDigit handles POST /cards/check-digit.
func (h *Handler) CardCheckDigit(w http.ResponseWriter, r *http.Request) {
	var req CheckDigitRequest
	if !decode(w, r, &req) {
		return
	}

	base := checksum.NormalizeCard(req.Base)
	if base == "" {
		writeError(w, http.StatusBadRequest, "base must contain at least one digit")
		return
	}

	d, _ := checksum.LuhnCheckDigit(base)
	number := base + strconv.Itoa(d)
	writeJSON(w, http.StatusOK, map[string]any{
		"checkDigit": strconv.Itoa(d),
		"number":     number,
		"network":    h.identify(number),
	})
}

// CorrectionRequest is the request body for POST /cards/corrections.
type CorrectionRequest struct {
	Number   string `json:"number"`
	Strategy string `json:"strategy,omitempty"`
}

// CardCorrections handles POST /cards/corrections.
func (h *Handler) CardCorrections(w http.ResponseWriter, r *http.Request) {
	var req CorrectionRequest
	if !decode(w, r, &req) {
		return
	}

	strategy, err := correction.ParseStrategy(req.Strategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.tooLong(w, checksum.NormalizeCard(req.Number)) {
		return
	}

	found := h.Processor.CardCorrections(req.Number, strategy)
	writeJSON(w, http.StatusOK, map[string]any{
		"strategy":    strategy.String(),
		"corrections": found,
		"count":       len(found),
	})
}

func (h *Handler) identify(number string) string {
	if h.Networks == nil {
		return ""
	}
	return h.Networks.Identify(number)
}

// ============================================================================
// ISBN HANDLERS
// ============================================================================

// ISBNRequest is the request body for POST /isbn/validate.
type ISBNRequest struct {
	ISBN     string `json:"isbn"`
	Strategy string `json:"strategy,omitempty"`
}

// ValidateISBN handles POST /isbn/validate.
func (h *Handler) ValidateISBN(w http.ResponseWriter, r *http.Request) {
	var req ISBNRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ISBN == "" {
		writeError(w, http.StatusBadRequest, "isbn is required")
		return
	}

	strategy, err := correction.ParseStrategy(req.Strategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.tooLong(w, checksum.NormalizeISBN(req.ISBN)) {
		return
	}

	report, err := h.Processor.CheckISBN(r.Context(), req.ISBN, strategy)
	if err != nil {
		slog.Warn("isbn check aborted", "isbn", req.ISBN, "error", err)
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ISBNCheckDigit handles POST /isbn/check-digit. A 9-character base yields
// an ISBN-10, a 12-character base an ISBN-13.
func (h *Handler) ISBNCheckDigit(w http.ResponseWriter, r *http.Request) {
	var req CheckDigitRequest
	if !decode(w, r, &req) {
		return
	}

	base := checksum.NormalizeISBN(req.Base)
	var (
		c  byte
		ok bool
	)
	switch len(base) {
	case 9:
		c, ok = checksum.ISBN10CheckDigit(base)
	case 12:
		c, ok = checksum.ISBN13CheckDigit(base)
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "base must be 9 or 12 digits")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"checkDigit": string(c),
		"isbn":       base + string(c),
	})
}

// ListBooks handles GET /books, the catalog of previously found records.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		writeError(w, http.StatusServiceUnavailable, "repository not available")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	books, err := h.Repo.ListBooks(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list books", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list books")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"books": books,
		"count": len(books),
	})
}

// ListNetworks handles GET /networks.
func (h *Handler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	if h.Networks == nil {
		writeError(w, http.StatusServiceUnavailable, "network rules not loaded")
		return
	}
	rules := h.Networks.Rules()
	writeJSON(w, http.StatusOK, map[string]any{
		"networks": rules,
		"count":    len(rules),
	})
}

// ============================================================================
// EXPERIMENT HANDLERS
// ============================================================================

// ExperimentRequest is the request body for POST /experiments.
type ExperimentRequest struct {
	Length  int   `json:"length,omitempty"`
	Samples int   `json:"samples,omitempty"`
	Seed    int64 `json:"seed,omitempty"`
	Workers int   `json:"workers,omitempty"`
	Async   bool  `json:"async,omitempty"`
}

// RunExperiment handles POST /experiments. Synchronous runs answer with the
// result; async runs answer 202 with an id to poll.
func (h *Handler) RunExperiment(w http.ResponseWriter, r *http.Request) {
	var req ExperimentRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Async {
		if h.Bus == nil || h.Cache == nil {
			writeError(w, http.StatusServiceUnavailable, "async experiments not available")
			return
		}
		exp, err := worker.Submit(r.Context(), h.Bus, h.Cache, h.Simulation, domain.ExperimentRequest{
			Length:  req.Length,
			Samples: req.Samples,
			Seed:    req.Seed,
			Workers: req.Workers,
			TraceID: GetTraceID(r.Context()),
		})
		if errors.Is(err, simulate.ErrLimitExceeded) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			slog.Error("failed to submit experiment", "error", err)
			writeError(w, http.StatusServiceUnavailable, "failed to submit experiment")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{
			"experimentId": exp.ID,
			"status":       exp.Status,
		})
		return
	}

	cfg := simulate.Config{
		Length:  req.Length,
		Samples: req.Samples,
		Seed:    req.Seed,
		Workers: req.Workers,
	}
	if cfg.Length == 0 {
		cfg.Length = h.Simulation.DefaultLength
	}
	if cfg.Samples == 0 {
		cfg.Samples = h.Simulation.DefaultSamples
	}
	if cfg.Workers == 0 {
		cfg.Workers = h.Simulation.Workers
	}
	if cfg.Seed == 0 {
		cfg.Seed = h.Simulation.Seed
	}
	if err := simulate.CheckLimits(cfg, h.Simulation); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := simulate.RunParallel(r.Context(), cfg)
	if err != nil {
		writeSimulationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetExperiment handles GET /experiments/{id}. Pending experiments answer
// 202 so pollers can tell them apart from finished ones.
func (h *Handler) GetExperiment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "experiment id is required")
		return
	}
	if h.Cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not available")
		return
	}

	exp, err := h.Cache.GetExperiment(r.Context(), id)
	if err != nil {
		slog.Error("failed to get experiment", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read experiment")
		return
	}
	if exp == nil {
		writeError(w, http.StatusNotFound, "experiment not found")
		return
	}

	status := http.StatusOK
	if exp.Status == domain.ExperimentPending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, exp)
}

// ============================================================================
// HELPERS
// ============================================================================

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	return true
}

// tooLong answers 400 when a normalized identifier exceeds the configured
// maximum.
func (h *Handler) tooLong(w http.ResponseWriter, normalized string) bool {
	if len(normalized) <= h.MaxIdentifierLength {
		return false
	}
	writeError(w, http.StatusBadRequest,
		"identifier exceeds "+strconv.Itoa(h.MaxIdentifierLength)+" characters")
	return true
}

func writeSimulationError(w http.ResponseWriter, err error) {
	if errors.Is(err, simulate.ErrInvalidParameters) || errors.Is(err, simulate.ErrLimitExceeded) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Warn("experiment aborted", "error", err)
	writeError(w, http.StatusServiceUnavailable, "experiment cancelled")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
