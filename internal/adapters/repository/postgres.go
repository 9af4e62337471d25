package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careeratlas/trends/internal/domain/industry"
	"github.com/careeratlas/trends/internal/domain/model"
	"github.com/careeratlas/trends/pkg/logger"
)

const (
	// Not every deployment of the view carries an industry column;
	// to_jsonb(v)->>'industry' reads NULL when it is absent.
	pgCareerTrendQuery = `
		SELECT career_id, trend_score, trend_direction, demand_level, growth_rate,
		       market_insights, key_skills_trending, salary_trend, job_availability_score,
		       top_locations, remote_work_trend, industry_impact, automation_risk,
		       future_outlook, confidence_score, last_updated, language_code,
		       to_jsonb(v)->>'industry'
		FROM career_trends_with_translations AS v
		WHERE career_id = $1 AND language_code = $2
		ORDER BY last_updated DESC
		LIMIT 1`

	pgIndustryTrendQuery = `
		SELECT industry, avg_trend_score, total_careers, rising_careers, stable_careers,
		       declining_careers, top_trending_careers, emerging_skills, last_updated, language_code
		FROM industry_trends_with_translations
		WHERE industry = $1 AND language_code = $2
		ORDER BY last_updated DESC
		LIMIT 1`

	pgTrendingQuery = `
		SELECT career_id, title, industry, trend_score, trend_direction, demand_level,
		       growth_rate, market_insights
		FROM get_trending_careers($1)`

	pgHistoryQuery = `
		SELECT month_year, trend_data, created_at
		FROM career_trend_history
		WHERE career_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
)

// PostgresStore reads trends from Postgres through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	cfg  settings
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to databaseURL and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string, opts ...Option) (*PostgresStore, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.maxConns > 0 {
		poolCfg.MaxConns = cfg.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	cfg.log.Info(ctx, "postgres store connected", logger.Int("max_conns", int(poolCfg.MaxConns)))
	return &PostgresStore{pool: pool, cfg: cfg}, nil
}

// CareerTrend implements Store.
func (s *PostgresStore) CareerTrend(ctx context.Context, careerID, language string) (rec model.TrendRecord, err error) {
	defer func(start time.Time) { observe(opCareerTrend, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	var (
		insights, salary, impact, outlook, tag *string
		lang                                   *string
	)
	err = s.pool.QueryRow(ctx, pgCareerTrendQuery, careerID, language).Scan(
		&rec.CareerID, &rec.TrendScore, &rec.TrendDirection, &rec.DemandLevel, &rec.GrowthRate,
		&insights, &rec.KeySkillsTrending, &salary, &rec.JobAvailabilityScore,
		&rec.TopLocations, &rec.RemoteWorkTrend, &impact, &rec.AutomationRisk,
		&outlook, &rec.ConfidenceScore, &rec.LastUpdated, &lang, &tag,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TrendRecord{}, ErrNotFound
	}
	if err != nil {
		return model.TrendRecord{}, fmt.Errorf("query career trend %s/%s: %w", careerID, language, err)
	}

	if !rec.Finite() {
		return model.TrendRecord{}, fmt.Errorf("career trend %s/%s: %w", careerID, language, ErrNonFinite)
	}
	rec.MarketInsights = deref(insights)
	rec.SalaryTrend = deref(salary)
	rec.IndustryImpact = deref(impact)
	rec.FutureOutlook = deref(outlook)
	rec.LanguageCode = language
	if l := deref(lang); l != "" {
		rec.LanguageCode = l
	}
	rec.Industry = industry.Class(deref(tag))
	rec.FillPlaceholders()
	return rec, nil
}

// IndustryTrend implements Store.
func (s *PostgresStore) IndustryTrend(ctx context.Context, name, language string) (it model.IndustryTrend, err error) {
	defer func(start time.Time) { observe(opIndustryTrend, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	var lang *string
	err = s.pool.QueryRow(ctx, pgIndustryTrendQuery, name, language).Scan(
		&it.Industry, &it.AvgTrendScore, &it.TotalCareers, &it.RisingCareers, &it.StableCareers,
		&it.DecliningCareers, &it.TopTrendingCareers, &it.EmergingSkills, &it.LastUpdated, &lang,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.IndustryTrend{}, ErrNotFound
	}
	if err != nil {
		return model.IndustryTrend{}, fmt.Errorf("query industry trend %s/%s: %w", name, language, err)
	}
	it.LanguageCode = language
	if l := deref(lang); l != "" {
		it.LanguageCode = l
	}
	if it.TopTrendingCareers == nil {
		it.TopTrendingCareers = []string{}
	}
	if it.EmergingSkills == nil {
		it.EmergingSkills = []string{}
	}
	return it, nil
}

// TrendingCareers implements Store.
func (s *PostgresStore) TrendingCareers(ctx context.Context, limit int) (out []model.TrendingCareer, err error) {
	defer func(start time.Time) { observe(opTrendingCareers, start, err) }(time.Now())
	if err = checkLimit(limit); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, pgTrendingQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query trending careers: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TrendingCareer, error) {
		var (
			tc       model.TrendingCareer
			insights *string
		)
		scanErr := row.Scan(&tc.CareerID, &tc.Title, &tc.Industry, &tc.TrendScore,
			&tc.TrendDirection, &tc.DemandLevel, &tc.GrowthRate, &insights)
		tc.MarketInsights = deref(insights)
		if tc.MarketInsights == "" {
			tc.MarketInsights = model.NoMarketInsights
		}
		return tc, scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("scan trending careers: %w", err)
	}
	return out, nil
}

// TrendHistory implements Store.
func (s *PostgresStore) TrendHistory(ctx context.Context, careerID string, months int) (out []model.TrendSnapshot, err error) {
	defer func(start time.Time) { observe(opTrendHistory, start, err) }(time.Now())
	if err = checkLimit(months); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, pgHistoryQuery, careerID, months)
	if err != nil {
		return nil, fmt.Errorf("query trend history %s: %w", careerID, err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TrendSnapshot, error) {
		var (
			snap model.TrendSnapshot
			raw  []byte
		)
		if scanErr := row.Scan(&snap.MonthYear, &raw, &snap.CreatedAt); scanErr != nil {
			return snap, scanErr
		}
		rec, decErr := decodeTrendData(raw)
		if decErr != nil {
			return snap, decErr
		}
		if rec.CareerID == "" {
			rec.CareerID = careerID
		}
		snap.TrendData = rec
		return snap, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan trend history %s: %w", careerID, err)
	}
	return out, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// trendDocument is the snake_case layout of a record stored as JSON.
type trendDocument struct {
	CareerID             string    `json:"career_id"`
	TrendScore           float64   `json:"trend_score"`
	TrendDirection       string    `json:"trend_direction"`
	DemandLevel          string    `json:"demand_level"`
	GrowthRate           float64   `json:"growth_rate"`
	MarketInsights       string    `json:"market_insights"`
	KeySkillsTrending    []string  `json:"key_skills_trending"`
	SalaryTrend          string    `json:"salary_trend"`
	JobAvailabilityScore float64   `json:"job_availability_score"`
	TopLocations         []string  `json:"top_locations"`
	RemoteWorkTrend      float64   `json:"remote_work_trend"`
	IndustryImpact       string    `json:"industry_impact"`
	AutomationRisk       float64   `json:"automation_risk"`
	FutureOutlook        string    `json:"future_outlook"`
	ConfidenceScore      float64   `json:"confidence_score"`
	LastUpdated          time.Time `json:"last_updated"`
	LanguageCode         string    `json:"language_code,omitempty"`
	Industry             string    `json:"industry,omitempty"`
}

func decodeTrendData(raw []byte) (model.TrendRecord, error) {
	var doc trendDocument
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return model.TrendRecord{}, fmt.Errorf("decode trend_data: %w", err)
		}
	}
	rec := model.TrendRecord{
		CareerID:             doc.CareerID,
		TrendScore:           doc.TrendScore,
		TrendDirection:       model.Direction(doc.TrendDirection),
		DemandLevel:          model.Demand(doc.DemandLevel),
		GrowthRate:           doc.GrowthRate,
		MarketInsights:       doc.MarketInsights,
		KeySkillsTrending:    doc.KeySkillsTrending,
		SalaryTrend:          doc.SalaryTrend,
		JobAvailabilityScore: doc.JobAvailabilityScore,
		TopLocations:         doc.TopLocations,
		RemoteWorkTrend:      doc.RemoteWorkTrend,
		IndustryImpact:       doc.IndustryImpact,
		AutomationRisk:       doc.AutomationRisk,
		FutureOutlook:        doc.FutureOutlook,
		ConfidenceScore:      doc.ConfidenceScore,
		LastUpdated:          doc.LastUpdated,
		LanguageCode:         doc.LanguageCode,
		Industry:             industry.Class(doc.Industry),
	}
	rec.FillPlaceholders()
	return rec, nil
}

func encodeTrendData(rec model.TrendRecord) ([]byte, error) {
	return json.Marshal(trendDocument{
		CareerID:             rec.CareerID,
		TrendScore:           rec.TrendScore,
		TrendDirection:       string(rec.TrendDirection),
		DemandLevel:          string(rec.DemandLevel),
		GrowthRate:           rec.GrowthRate,
		MarketInsights:       rec.MarketInsights,
		KeySkillsTrending:    rec.KeySkillsTrending,
		SalaryTrend:          rec.SalaryTrend,
		JobAvailabilityScore: rec.JobAvailabilityScore,
		TopLocations:         rec.TopLocations,
		RemoteWorkTrend:      rec.RemoteWorkTrend,
		IndustryImpact:       rec.IndustryImpact,
		AutomationRisk:       rec.AutomationRisk,
		FutureOutlook:        rec.FutureOutlook,
		ConfidenceScore:      rec.ConfidenceScore,
		LastUpdated:          rec.LastUpdated,
		LanguageCode:         rec.LanguageCode,
		Industry:             string(rec.Industry),
	})
}
