package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/careeratlas/trends/internal/domain/model"
)

// TrendingDependencies defines the interface for trending list operations.
type TrendingDependencies interface {
	TrendingCareers(ctx context.Context, limit int) []model.TrendingCareer
}

// TrendingHandler handles trending list requests.
type TrendingHandler struct {
	deps     TrendingDependencies
	validate *validator.Validate
}

// NewTrendingHandler creates a new trending handler.
func NewTrendingHandler(deps TrendingDependencies, v *validator.Validate) *TrendingHandler {
	if v == nil {
		v = newValidator()
	}
	return &TrendingHandler{deps: deps, validate: v}
}

type trendingRequest struct {
	Limit int `json:"limit" validate:"gte=0"`
}

// HandleGetTrending handles GET /v1/trending?limit=N requests. The service
// applies the default and the upper cap.
func (h *TrendingHandler) HandleGetTrending(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trending"
	n, err := intParam(r, "limit")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	req := trendingRequest{Limit: n}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, validationMessage(err)))
		return
	}
	writeJSON(w, r, http.StatusOK, h.deps.TrendingCareers(r.Context(), req.Limit))
}
