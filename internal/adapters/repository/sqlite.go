package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/careeratlas/trends/internal/domain/industry"
	"github.com/careeratlas/trends/internal/domain/model"
	"github.com/careeratlas/trends/pkg/logger"
)

// timeLayout keeps stored timestamps lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS career_trends_with_translations (
		career_id              TEXT NOT NULL,
		language_code          TEXT NOT NULL,
		trend_score            REAL NOT NULL,
		trend_direction        TEXT NOT NULL,
		demand_level           TEXT NOT NULL,
		growth_rate            REAL NOT NULL,
		market_insights        TEXT,
		key_skills_trending    TEXT,
		salary_trend           TEXT,
		job_availability_score REAL NOT NULL,
		top_locations          TEXT,
		remote_work_trend      REAL NOT NULL,
		industry_impact        TEXT,
		automation_risk        REAL NOT NULL,
		future_outlook         TEXT,
		confidence_score       REAL NOT NULL,
		last_updated           TEXT NOT NULL,
		industry               TEXT,
		PRIMARY KEY (career_id, language_code)
	)`,
	`CREATE TABLE IF NOT EXISTS industry_trends_with_translations (
		industry             TEXT NOT NULL,
		language_code        TEXT NOT NULL,
		avg_trend_score      REAL NOT NULL,
		total_careers        INTEGER NOT NULL,
		rising_careers       INTEGER NOT NULL,
		stable_careers       INTEGER NOT NULL,
		declining_careers    INTEGER NOT NULL,
		top_trending_careers TEXT,
		emerging_skills      TEXT,
		last_updated         TEXT NOT NULL,
		PRIMARY KEY (industry, language_code)
	)`,
	`CREATE TABLE IF NOT EXISTS career_trends (
		career_id       TEXT PRIMARY KEY,
		title           TEXT NOT NULL,
		industry        TEXT NOT NULL,
		trend_score     REAL NOT NULL,
		trend_direction TEXT NOT NULL,
		demand_level    TEXT NOT NULL,
		growth_rate     REAL NOT NULL,
		market_insights TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS career_trend_history (
		career_id  TEXT NOT NULL,
		month_year TEXT NOT NULL,
		trend_data TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (career_id, month_year)
	)`,
	`CREATE TABLE IF NOT EXISTS trending_skills (
		id           INTEGER PRIMARY KEY,
		skill        TEXT NOT NULL,
		demand       REAL NOT NULL,
		growth       REAL NOT NULL,
		salary       REAL,
		category     TEXT,
		is_trending  INTEGER NOT NULL DEFAULT 0,
		is_declining INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trending_industries (
		id           INTEGER PRIMARY KEY,
		industry     TEXT NOT NULL,
		growth       REAL NOT NULL,
		job_count    INTEGER NOT NULL,
		avg_salary   REAL,
		category     TEXT,
		is_trending  INTEGER NOT NULL DEFAULT 0,
		is_declining INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS emerging_roles (
		id               INTEGER PRIMARY KEY,
		title            TEXT NOT NULL,
		description      TEXT,
		growth           REAL NOT NULL,
		skills           TEXT,
		industry         TEXT,
		salary_range     TEXT,
		experience_level TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trending_update_log (
		id                 INTEGER PRIMARY KEY,
		update_type        TEXT NOT NULL,
		skills_updated     INTEGER NOT NULL DEFAULT 0,
		industries_updated INTEGER NOT NULL DEFAULT 0,
		roles_updated      INTEGER NOT NULL DEFAULT 0,
		notes              TEXT,
		update_timestamp   TEXT NOT NULL
	)`,
}

// SQLiteStore keeps trends in a local SQLite database. It backs local
// development, the seed command and tests.
type SQLiteStore struct {
	db  *sql.DB
	cfg settings
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path and
// applies the bootstrap schema. Use MemoryDSN for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers and keeps :memory: coherent.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	cfg.log.Info(ctx, "sqlite store opened", logger.String("path", path))
	return &SQLiteStore{db: db, cfg: cfg}, nil
}

// CareerTrend implements Store.
func (s *SQLiteStore) CareerTrend(ctx context.Context, careerID, language string) (rec model.TrendRecord, err error) {
	defer func(start time.Time) { observe(opCareerTrend, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	var (
		insights, skills, salary, locations, impact, outlook, tag sql.NullString
		updated                                                   string
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT career_id, trend_score, trend_direction, demand_level, growth_rate,
		       market_insights, key_skills_trending, salary_trend, job_availability_score,
		       top_locations, remote_work_trend, industry_impact, automation_risk,
		       future_outlook, confidence_score, last_updated, language_code, industry
		FROM career_trends_with_translations
		WHERE career_id = ? AND language_code = ?
		ORDER BY last_updated DESC
		LIMIT 1`, careerID, language).Scan(
		&rec.CareerID, &rec.TrendScore, &rec.TrendDirection, &rec.DemandLevel, &rec.GrowthRate,
		&insights, &skills, &salary, &rec.JobAvailabilityScore,
		&locations, &rec.RemoteWorkTrend, &impact, &rec.AutomationRisk,
		&outlook, &rec.ConfidenceScore, &updated, &rec.LanguageCode, &tag,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TrendRecord{}, ErrNotFound
	}
	if err != nil {
		return model.TrendRecord{}, fmt.Errorf("query career trend %s/%s: %w", careerID, language, err)
	}

	if !rec.Finite() {
		return model.TrendRecord{}, fmt.Errorf("career trend %s/%s: %w", careerID, language, ErrNonFinite)
	}
	if rec.KeySkillsTrending, err = decodeList(skills); err != nil {
		return model.TrendRecord{}, err
	}
	if rec.TopLocations, err = decodeList(locations); err != nil {
		return model.TrendRecord{}, err
	}
	if rec.LastUpdated, err = parseTime(updated); err != nil {
		return model.TrendRecord{}, err
	}
	rec.MarketInsights = insights.String
	rec.SalaryTrend = salary.String
	rec.IndustryImpact = impact.String
	rec.FutureOutlook = outlook.String
	rec.Industry = industry.Class(tag.String)
	rec.FillPlaceholders()
	return rec, nil
}

// IndustryTrend implements Store.
func (s *SQLiteStore) IndustryTrend(ctx context.Context, name, language string) (it model.IndustryTrend, err error) {
	defer func(start time.Time) { observe(opIndustryTrend, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	var (
		top, skills sql.NullString
		updated     string
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT industry, avg_trend_score, total_careers, rising_careers, stable_careers,
		       declining_careers, top_trending_careers, emerging_skills, last_updated, language_code
		FROM industry_trends_with_translations
		WHERE industry = ? AND language_code = ?
		ORDER BY last_updated DESC
		LIMIT 1`, name, language).Scan(
		&it.Industry, &it.AvgTrendScore, &it.TotalCareers, &it.RisingCareers, &it.StableCareers,
		&it.DecliningCareers, &top, &skills, &updated, &it.LanguageCode,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.IndustryTrend{}, ErrNotFound
	}
	if err != nil {
		return model.IndustryTrend{}, fmt.Errorf("query industry trend %s/%s: %w", name, language, err)
	}
	if it.TopTrendingCareers, err = decodeList(top); err != nil {
		return model.IndustryTrend{}, err
	}
	if it.EmergingSkills, err = decodeList(skills); err != nil {
		return model.IndustryTrend{}, err
	}
	if it.LastUpdated, err = parseTime(updated); err != nil {
		return model.IndustryTrend{}, err
	}
	return it, nil
}

// TrendingCareers implements Store.
func (s *SQLiteStore) TrendingCareers(ctx context.Context, limit int) (out []model.TrendingCareer, err error) {
	defer func(start time.Time) { observe(opTrendingCareers, start, err) }(time.Now())
	if err = checkLimit(limit); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT career_id, title, industry, trend_score, trend_direction, demand_level,
		       growth_rate, market_insights
		FROM career_trends
		ORDER BY trend_score DESC, career_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query trending careers: %w", err)
	}
	defer rows.Close()

	out = []model.TrendingCareer{}
	for rows.Next() {
		var (
			tc       model.TrendingCareer
			insights sql.NullString
		)
		if err = rows.Scan(&tc.CareerID, &tc.Title, &tc.Industry, &tc.TrendScore,
			&tc.TrendDirection, &tc.DemandLevel, &tc.GrowthRate, &insights); err != nil {
			return nil, fmt.Errorf("scan trending careers: %w", err)
		}
		tc.MarketInsights = insights.String
		if tc.MarketInsights == "" {
			tc.MarketInsights = model.NoMarketInsights
		}
		out = append(out, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trending careers: %w", err)
	}
	return out, nil
}

// TrendHistory implements Store.
func (s *SQLiteStore) TrendHistory(ctx context.Context, careerID string, months int) (out []model.TrendSnapshot, err error) {
	defer func(start time.Time) { observe(opTrendHistory, start, err) }(time.Now())
	if err = checkLimit(months); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT month_year, trend_data, created_at
		FROM career_trend_history
		WHERE career_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, careerID, months)
	if err != nil {
		return nil, fmt.Errorf("query trend history %s: %w", careerID, err)
	}
	defer rows.Close()

	out = []model.TrendSnapshot{}
	for rows.Next() {
		var (
			snap    model.TrendSnapshot
			raw     string
			created string
		)
		if err = rows.Scan(&snap.MonthYear, &raw, &created); err != nil {
			return nil, fmt.Errorf("scan trend history %s: %w", careerID, err)
		}
		if snap.TrendData, err = decodeTrendData([]byte(raw)); err != nil {
			return nil, err
		}
		if snap.TrendData.CareerID == "" {
			snap.TrendData.CareerID = careerID
		}
		if snap.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend history %s: %w", careerID, err)
	}
	return out, nil
}

// UpsertCareerTrend inserts or replaces the record keyed by
// (CareerID, LanguageCode). An empty language is stored as "en".
func (s *SQLiteStore) UpsertCareerTrend(ctx context.Context, rec model.TrendRecord) (err error) {
	defer func(start time.Time) { observe(opUpsert, start, err) }(time.Now())
	if rec.CareerID == "" {
		return errors.New("career trend without career id")
	}
	lang := rec.LanguageCode
	if lang == "" {
		lang = "en"
	}
	skills, err := encodeList(rec.KeySkillsTrending)
	if err != nil {
		return err
	}
	locations, err := encodeList(rec.TopLocations)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO career_trends_with_translations (
			career_id, language_code, trend_score, trend_direction, demand_level, growth_rate,
			market_insights, key_skills_trending, salary_trend, job_availability_score,
			top_locations, remote_work_trend, industry_impact, automation_risk,
			future_outlook, confidence_score, last_updated, industry
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (career_id, language_code) DO UPDATE SET
			trend_score = excluded.trend_score,
			trend_direction = excluded.trend_direction,
			demand_level = excluded.demand_level,
			growth_rate = excluded.growth_rate,
			market_insights = excluded.market_insights,
			key_skills_trending = excluded.key_skills_trending,
			salary_trend = excluded.salary_trend,
			job_availability_score = excluded.job_availability_score,
			top_locations = excluded.top_locations,
			remote_work_trend = excluded.remote_work_trend,
			industry_impact = excluded.industry_impact,
			automation_risk = excluded.automation_risk,
			future_outlook = excluded.future_outlook,
			confidence_score = excluded.confidence_score,
			last_updated = excluded.last_updated,
			industry = excluded.industry`,
		rec.CareerID, lang, rec.TrendScore, string(rec.TrendDirection), string(rec.DemandLevel), rec.GrowthRate,
		nullString(rec.MarketInsights), skills, nullString(rec.SalaryTrend), rec.JobAvailabilityScore,
		locations, rec.RemoteWorkTrend, nullString(rec.IndustryImpact), rec.AutomationRisk,
		nullString(rec.FutureOutlook), rec.ConfidenceScore, formatTime(rec.LastUpdated), nullString(string(rec.Industry)),
	)
	if err != nil {
		return fmt.Errorf("upsert career trend %s/%s: %w", rec.CareerID, lang, err)
	}
	return nil
}

// UpsertIndustryTrend inserts or replaces an industry aggregate.
func (s *SQLiteStore) UpsertIndustryTrend(ctx context.Context, it model.IndustryTrend) (err error) {
	defer func(start time.Time) { observe(opUpsert, start, err) }(time.Now())
	lang := it.LanguageCode
	if lang == "" {
		lang = "en"
	}
	top, err := encodeList(it.TopTrendingCareers)
	if err != nil {
		return err
	}
	skills, err := encodeList(it.EmergingSkills)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO industry_trends_with_translations (
			industry, language_code, avg_trend_score, total_careers, rising_careers,
			stable_careers, declining_careers, top_trending_careers, emerging_skills, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (industry, language_code) DO UPDATE SET
			avg_trend_score = excluded.avg_trend_score,
			total_careers = excluded.total_careers,
			rising_careers = excluded.rising_careers,
			stable_careers = excluded.stable_careers,
			declining_careers = excluded.declining_careers,
			top_trending_careers = excluded.top_trending_careers,
			emerging_skills = excluded.emerging_skills,
			last_updated = excluded.last_updated`,
		it.Industry, lang, it.AvgTrendScore, it.TotalCareers, it.RisingCareers,
		it.StableCareers, it.DecliningCareers, top, skills, formatTime(it.LastUpdated),
	)
	if err != nil {
		return fmt.Errorf("upsert industry trend %s/%s: %w", it.Industry, lang, err)
	}
	return nil
}

// UpsertTrendingCareer inserts or replaces a row of the trending list.
func (s *SQLiteStore) UpsertTrendingCareer(ctx context.Context, tc model.TrendingCareer) (err error) {
	defer func(start time.Time) { observe(opUpsert, start, err) }(time.Now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO career_trends (
			career_id, title, industry, trend_score, trend_direction, demand_level,
			growth_rate, market_insights
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (career_id) DO UPDATE SET
			title = excluded.title,
			industry = excluded.industry,
			trend_score = excluded.trend_score,
			trend_direction = excluded.trend_direction,
			demand_level = excluded.demand_level,
			growth_rate = excluded.growth_rate,
			market_insights = excluded.market_insights`,
		tc.CareerID, tc.Title, tc.Industry, tc.TrendScore, string(tc.TrendDirection),
		string(tc.DemandLevel), tc.GrowthRate, nullString(tc.MarketInsights),
	)
	if err != nil {
		return fmt.Errorf("upsert trending career %s: %w", tc.CareerID, err)
	}
	return nil
}

// AppendHistory stores a monthly snapshot for careerID.
func (s *SQLiteStore) AppendHistory(ctx context.Context, careerID string, snap model.TrendSnapshot) (err error) {
	defer func(start time.Time) { observe(opUpsert, start, err) }(time.Now())
	raw, err := encodeTrendData(snap.TrendData)
	if err != nil {
		return fmt.Errorf("encode trend_data: %w", err)
	}
	created := snap.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO career_trend_history (career_id, month_year, trend_data, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (career_id, month_year) DO UPDATE SET
			trend_data = excluded.trend_data,
			created_at = excluded.created_at`,
		careerID, snap.MonthYear, string(raw), formatTime(created),
	)
	if err != nil {
		return fmt.Errorf("append history %s/%s: %w", careerID, snap.MonthYear, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func encodeList(in []string) (sql.NullString, error) {
	if in == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode list: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeList(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Unix(0, 0)
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
