// Package repository defines the trend data store interface and its
// Postgres and SQLite implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/careeratlas/trends/internal/domain/model"
	"github.com/careeratlas/trends/pkg/metrics"
)

// Store provides read access to trend data keyed by (id, language).
type Store interface {
	// CareerTrend returns the most recent record for careerID in language.
	// Returns ErrNotFound if no row matches.
	CareerTrend(ctx context.Context, careerID, language string) (model.TrendRecord, error)

	// IndustryTrend returns the most recent aggregate for industry in language.
	// Returns ErrNotFound if no row matches.
	IndustryTrend(ctx context.Context, industry, language string) (model.IndustryTrend, error)

	// TrendingCareers returns up to limit careers ordered by trend score desc.
	TrendingCareers(ctx context.Context, limit int) ([]model.TrendingCareer, error)

	// TrendHistory returns up to months snapshots, most recent first.
	TrendHistory(ctx context.Context, careerID string, months int) ([]model.TrendSnapshot, error)

	MarketStore

	Close() error
}

// MarketStore reads the skill, industry and role boards and the trend
// summaries derived from career trends.
type MarketStore interface {
	// Skills returns the trending skills by demand desc, or the declining
	// skills by growth asc. Returns ErrInvalidMovement for other movements.
	Skills(ctx context.Context, move model.Movement) ([]model.TrendingSkill, error)

	// Industries returns the trending industries by growth desc, or the
	// declining ones by growth asc.
	Industries(ctx context.Context, move model.Movement) ([]model.MarketIndustry, error)

	// EmergingRoles returns emerging roles by growth desc.
	EmergingRoles(ctx context.Context) ([]model.EmergingRole, error)

	// MarketStats counts the boards and reports the latest refresh log entry.
	MarketStats(ctx context.Context) (model.MarketStats, error)

	// CareerSummary returns the trend summary row for careerID.
	// Returns ErrNotFound if there is none.
	CareerSummary(ctx context.Context, careerID string) (model.Summary, error)

	// IndustrySummary returns the trend summary row for industry.
	// Returns ErrNotFound if there is none.
	IndustrySummary(ctx context.Context, industry string) (model.Summary, error)

	// TrendCareerIDs returns every career id with stored trend data, sorted.
	TrendCareerIDs(ctx context.Context) ([]string, error)
}

// Operation names used for metrics labels.
const (
	opCareerTrend     = "career_trend"
	opIndustryTrend   = "industry_trend"
	opTrendingCareers = "trending_careers"
	opTrendHistory    = "trend_history"
	opUpsert          = "upsert"
	opSkills          = "skills"
	opIndustries      = "market_industries"
	opEmergingRoles   = "emerging_roles"
	opMarketStats     = "market_stats"
	opCareerSummary   = "career_summary"
	opIndustrySummary = "industry_summary"
	opCareerIDs       = "career_ids"
)

// observe records latency for op and counts failures other than ErrNotFound.
func observe(op string, start time.Time, err error) {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}

func checkMovement(m model.Movement) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMovement, m)
	}
	return nil
}

func checkLimit(n int) error {
	if n < 1 {
		return ErrInvalidLimit
	}
	return nil
}
