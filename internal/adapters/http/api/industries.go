package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/careeratlas/trends/internal/domain/model"
)

// IndustryDependencies defines the interface for industry trend lookups.
type IndustryDependencies interface {
	GetIndustryTrend(ctx context.Context, industry, language string) (model.IndustryTrend, bool)
}

// IndustryHandler handles industry trend requests.
type IndustryHandler struct {
	deps     IndustryDependencies
	validate *validator.Validate
}

// NewIndustryHandler creates a new industry handler.
func NewIndustryHandler(deps IndustryDependencies, v *validator.Validate) *IndustryHandler {
	if v == nil {
		v = newValidator()
	}
	return &IndustryHandler{deps: deps, validate: v}
}

type industryRequest struct {
	Industry string `json:"industry" validate:"required,max=64,printascii"`
	Language string `json:"lang" validate:"omitempty,bcp47_language_tag"`
}

// HandleGetIndustryTrend handles GET /v1/industries/{industry}/trend?lang= requests.
func (h *IndustryHandler) HandleGetIndustryTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_industry_trend"
	req := industryRequest{
		Industry: r.PathValue("industry"),
		Language: r.URL.Query().Get("lang"),
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, validationMessage(err)))
		return
	}

	it, ok := h.deps.GetIndustryTrend(r.Context(), req.Industry, req.Language)
	if !ok {
		writeError(w, r, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, r, http.StatusOK, it)
}
