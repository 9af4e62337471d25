package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/careeratlas/trends/internal/domain/model"
)

// maxBatchBody bounds POST /v1/trends/batch payloads.
const maxBatchBody = 1 << 20

// TrendDependencies defines the interface for career trend lookups.
type TrendDependencies interface {
	GetTrend(ctx context.Context, careerID, language, region string) (model.TrendRecord, bool)
	TrendsFor(ctx context.Context, careerIDs []string, language, region string) (map[string]model.TrendRecord, error)
	TrendHistory(ctx context.Context, careerID string, months int) []model.TrendSnapshot
}

// TrendHandler handles per-career trend requests.
type TrendHandler struct {
	deps     TrendDependencies
	validate *validator.Validate
}

// NewTrendHandler creates a new trend handler.
func NewTrendHandler(deps TrendDependencies, v *validator.Validate) *TrendHandler {
	if v == nil {
		v = newValidator()
	}
	return &TrendHandler{deps: deps, validate: v}
}

type trendRequest struct {
	CareerID string `json:"careerId" validate:"required,max=128,printascii"`
	Language string `json:"lang" validate:"omitempty,bcp47_language_tag"`
	Region   string `json:"region" validate:"omitempty,max=64"`
}

type batchRequest struct {
	CareerIDs []string `json:"career_ids" validate:"required,min=1,max=100,dive,required,max=128,printascii"`
	Language  string   `json:"lang" validate:"omitempty,bcp47_language_tag"`
	Region    string   `json:"region" validate:"omitempty,max=64"`
}

type batchResponse struct {
	Trends map[string]model.TrendRecord `json:"trends"`
}

type historyRequest struct {
	CareerID string `json:"careerId" validate:"required,max=128,printascii"`
	Months   int    `json:"months" validate:"gte=0,lte=120"`
}

// HandleGetTrend handles GET /v1/trends/{careerId}?lang=&region= requests.
func (h *TrendHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trend"
	q := r.URL.Query()
	req := trendRequest{
		CareerID: r.PathValue("careerId"),
		Language: q.Get("lang"),
		Region:   q.Get("region"),
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, validationMessage(err)))
		return
	}

	rec, ok := h.deps.GetTrend(r.Context(), req.CareerID, req.Language, req.Region)
	if !ok {
		writeError(w, r, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// HandleBatch handles POST /v1/trends/batch requests.
func (h *TrendHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.batch_trends"
	var req batchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBody)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, validationMessage(err)))
		return
	}

	trends, err := h.deps.TrendsFor(r.Context(), req.CareerIDs, req.Language, req.Region)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, r, http.StatusOK, batchResponse{Trends: trends})
}

// HandleHistory handles GET /v1/trends/{careerId}/history?months= requests.
func (h *TrendHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.trend_history"
	months, err := intParam(r, "months")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	req := historyRequest{CareerID: r.PathValue("careerId"), Months: months}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, validationMessage(err)))
		return
	}
	writeJSON(w, r, http.StatusOK, h.deps.TrendHistory(r.Context(), req.CareerID, req.Months))
}

// intParam parses an optional integer query parameter; absent means 0.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
