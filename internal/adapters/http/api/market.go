package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/careeratlas/trends/internal/domain/model"
)

// MarketDependencies defines the interface for the skill, industry and
// role boards.
type MarketDependencies interface {
	MarketTrends(ctx context.Context) model.MarketSnapshot
	RefreshMarket(ctx context.Context) model.MarketSnapshot
	MarketStats(ctx context.Context) (model.MarketStats, bool)
	TrendingSkills(ctx context.Context) []model.TrendingSkill
	DecliningSkills(ctx context.Context) []model.TrendingSkill
	TrendingIndustries(ctx context.Context) []model.MarketIndustry
	DecliningIndustries(ctx context.Context) []model.MarketIndustry
	EmergingRoles(ctx context.Context) []model.EmergingRole
}

// MarketHandler handles market board requests.
type MarketHandler struct {
	deps MarketDependencies
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(deps MarketDependencies) *MarketHandler {
	return &MarketHandler{deps: deps}
}

// HandleGetMarket handles GET /v1/market requests.
func (h *MarketHandler) HandleGetMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.deps.MarketTrends(r.Context()))
}

// HandleRefresh handles POST /v1/market/refresh requests.
func (h *MarketHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.deps.RefreshMarket(r.Context()))
}

// HandleStats handles GET /v1/market/stats requests.
func (h *MarketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.market_stats"
	st, ok := h.deps.MarketStats(r.Context())
	if !ok {
		writeError(w, r, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

// HandleTrendingSkills handles GET /v1/skills/trending requests.
func (h *MarketHandler) HandleTrendingSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.deps.TrendingSkills(r.Context()))
}

// HandleDecliningSkills handles GET /v1/skills/declining requests.
func (h *MarketHandler) HandleDecliningSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.deps.DecliningSkills(r.Context()))
}

// HandleTrendingIndustries handles GET /v1/industries/trending requests.
func (h *MarketHandler) HandleTrendingIndustries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.deps.TrendingIndustries(r.Context()))
}

// HandleDecliningIndustries handles GET /v1/industries/declining requests.
func (h *MarketHandler) HandleDecliningIndustries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.deps.DecliningIndustries(r.Context()))
}

// HandleEmergingRoles handles GET /v1/roles/emerging requests.
func (h *MarketHandler) HandleEmergingRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.deps.EmergingRoles(r.Context()))
}

// SummaryDependencies defines the interface for trend summaries and the
// tracked career list.
type SummaryDependencies interface {
	CareerSummary(ctx context.Context, careerID string) (model.Summary, bool)
	IndustrySummary(ctx context.Context, industry string) (model.Summary, bool)
	TrendCareerIDs(ctx context.Context) []string
}

// SummaryHandler handles summary requests.
type SummaryHandler struct {
	deps     SummaryDependencies
	validate *validator.Validate
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies, v *validator.Validate) *SummaryHandler {
	if v == nil {
		v = newValidator()
	}
	return &SummaryHandler{deps: deps, validate: v}
}

type careerSummaryRequest struct {
	CareerID string `json:"careerId" validate:"required,max=128,printascii"`
}

type industrySummaryRequest struct {
	Industry string `json:"industry" validate:"required,max=64,printascii"`
}

type careerIDsResponse struct {
	CareerIDs []string `json:"careerIds"`
}

// HandleCareerSummary handles GET /v1/trends/{careerId}/summary requests.
func (h *SummaryHandler) HandleCareerSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.career_summary"
	req := careerSummaryRequest{CareerID: r.PathValue("careerId")}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, validationMessage(err)))
		return
	}
	sum, ok := h.deps.CareerSummary(r.Context(), req.CareerID)
	if !ok {
		writeError(w, r, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, r, http.StatusOK, sum)
}

// HandleIndustrySummary handles GET /v1/industries/{industry}/summary requests.
func (h *SummaryHandler) HandleIndustrySummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.industry_summary"
	req := industrySummaryRequest{Industry: r.PathValue("industry")}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, validationMessage(err)))
		return
	}
	sum, ok := h.deps.IndustrySummary(r.Context(), req.Industry)
	if !ok {
		writeError(w, r, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, r, http.StatusOK, sum)
}

// HandleCareerIDs handles GET /v1/trends requests.
func (h *SummaryHandler) HandleCareerIDs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, careerIDsResponse{CareerIDs: h.deps.TrendCareerIDs(r.Context())})
}
