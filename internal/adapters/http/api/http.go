// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/careeratlas/trends/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	TrendDependencies
	TrendingDependencies
	IndustryDependencies
	RegionDependencies
	LanguageDependencies
	CacheDependencies
	MarketDependencies
	SummaryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	trendHandler    *TrendHandler
	trendingHandler *TrendingHandler
	industryHandler *IndustryHandler
	regionHandler   *RegionHandler
	languageHandler *LanguageHandler
	cacheHandler    *CacheHandler
	marketHandler   *MarketHandler
	summaryHandler  *SummaryHandler
	log             logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for rejected and failed requests.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	v := newValidator()
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		trendHandler:    NewTrendHandler(deps, v),
		trendingHandler: NewTrendingHandler(deps, v),
		industryHandler: NewIndustryHandler(deps, v),
		regionHandler:   NewRegionHandler(deps),
		languageHandler: NewLanguageHandler(deps, v),
		cacheHandler:    NewCacheHandler(deps),
		marketHandler:   NewMarketHandler(deps),
		summaryHandler:  NewSummaryHandler(deps, v),
		log:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	s.handle(mux, "GET /healthz", "healthz", s.healthHandler.HandleHealth)
	s.handle(mux, "GET /stats", "stats", s.statsHandler.HandleStats)

	s.handle(mux, "GET /v1/trends", "trend_ids", s.summaryHandler.HandleCareerIDs)
	s.handle(mux, "POST /v1/trends/batch", "trends_batch", s.trendHandler.HandleBatch)
	s.handle(mux, "GET /v1/trends/{careerId}", "trend", s.trendHandler.HandleGetTrend)
	s.handle(mux, "GET /v1/trends/{careerId}/history", "trend_history", s.trendHandler.HandleHistory)
	s.handle(mux, "GET /v1/trends/{careerId}/summary", "trend_summary", s.summaryHandler.HandleCareerSummary)
	s.handle(mux, "GET /v1/trending", "trending", s.trendingHandler.HandleGetTrending)
	s.handle(mux, "GET /v1/industries/{industry}/trend", "industry_trend", s.industryHandler.HandleGetIndustryTrend)
	s.handle(mux, "GET /v1/industries/{industry}/summary", "industry_summary", s.summaryHandler.HandleIndustrySummary)

	s.handle(mux, "GET /v1/market", "market", s.marketHandler.HandleGetMarket)
	s.handle(mux, "POST /v1/market/refresh", "market_refresh", s.marketHandler.HandleRefresh)
	s.handle(mux, "GET /v1/market/stats", "market_stats", s.marketHandler.HandleStats)
	s.handle(mux, "GET /v1/skills/trending", "skills_trending", s.marketHandler.HandleTrendingSkills)
	s.handle(mux, "GET /v1/skills/declining", "skills_declining", s.marketHandler.HandleDecliningSkills)
	s.handle(mux, "GET /v1/industries/trending", "industries_trending", s.marketHandler.HandleTrendingIndustries)
	s.handle(mux, "GET /v1/industries/declining", "industries_declining", s.marketHandler.HandleDecliningIndustries)
	s.handle(mux, "GET /v1/roles/emerging", "roles_emerging", s.marketHandler.HandleEmergingRoles)

	s.handle(mux, "GET /v1/regions", "regions", s.regionHandler.HandleGetRegions)
	s.handle(mux, "GET /v1/language", "language", s.languageHandler.HandleGetLanguage)
	s.handle(mux, "PUT /v1/language", "language", s.languageHandler.HandlePutLanguage)
	s.handle(mux, "GET /v1/cache", "cache", s.cacheHandler.HandleGetCache)
	s.handle(mux, "DELETE /v1/cache", "cache", s.cacheHandler.HandleDeleteCache)
}

// handle registers h under pattern with metrics and the server logger.
func (s *Server) handle(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	log := s.log
	mux.HandleFunc(pattern, MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		h(w, r.WithContext(context.WithValue(r.Context(), loggerKey{}, log)))
	}, endpoint))
}

type loggerKey struct{}

func loggerFrom(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}
	return logger.Nop()
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before touching w so an unencodable value becomes a
// 500 rather than a truncated 200.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		loggerFrom(r.Context()).Error(r.Context(), "encode response",
			logger.String("path", r.URL.Path), logger.Error(err))
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{Code: "internal_error", Message: ErrInternal.Error()})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeError logs err with its operation and sends the client-safe message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = clientMessage(err, msg)
		log := loggerFrom(r.Context())
		fields := []logger.Field{
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error(r.Context(), "request failed", fields...)
		} else {
			log.Warn(r.Context(), "request rejected", fields...)
		}
	}
	writeJSON(w, r, status, errorResponse{Code: code, Message: msg})
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json/query names rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage reports the first failing field.
func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return fmt.Errorf("invalid %s: failed %s", ve.Field(), ve.Tag())
	}
	return err
}
