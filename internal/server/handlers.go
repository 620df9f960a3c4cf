package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vanshika/addrlink/internal/domain"
)

// Analyzer is the analysis contract the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, addresses []string, lookbackDays int) (domain.Report, error)
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *slog.Logger
	analyzer Analyzer
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, analyzer Analyzer) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		analyzer: analyzer,
	}
}

type analyzeRequest struct {
	Addresses    []string `json:"addresses"`
	LookbackDays int      `json:"lookbackDays"`
}

func (h *APIHandlers) handleAnalyzePost(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.analyze(w, r, req)
}

// handleAnalyzeGet accepts repeated ?address= parameters or a comma
// separated ?addresses= list, plus an optional ?days=.
func (h *APIHandlers) handleAnalyzeGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := analyzeRequest{Addresses: q["address"]}
	for _, part := range strings.Split(q.Get("addresses"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			req.Addresses = append(req.Addresses, part)
		}
	}
	if v := q.Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			writeError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		req.LookbackDays = days
	}
	h.analyze(w, r, req)
}

func (h *APIHandlers) analyze(w http.ResponseWriter, r *http.Request, req analyzeRequest) {
	report, err := h.analyzer.Analyze(r.Context(), req.Addresses, req.LookbackDays)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, report)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("analysis aborted", "error", err)
		writeError(w, http.StatusServiceUnavailable, "analysis aborted")
	default:
		h.logger.Error("analysis failed", "error", err, "addresses", req.Addresses)
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
