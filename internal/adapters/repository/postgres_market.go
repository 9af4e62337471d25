package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/careeratlas/trends/internal/domain/model"
)

const (
	pgSkillColumns = `id, skill, demand, growth, salary, category, is_trending, is_declining, created_at, updated_at`

	pgTrendingSkillsQuery = `
		SELECT ` + pgSkillColumns + `
		FROM trending_skills
		WHERE is_trending = true
		ORDER BY demand DESC`

	pgDecliningSkillsQuery = `
		SELECT ` + pgSkillColumns + `
		FROM trending_skills
		WHERE is_declining = true
		ORDER BY growth ASC`

	pgIndustryColumns = `id, industry, growth, job_count, avg_salary, category, is_trending, is_declining, created_at, updated_at`

	pgTrendingIndustriesQuery = `
		SELECT ` + pgIndustryColumns + `
		FROM trending_industries
		WHERE is_trending = true
		ORDER BY growth DESC`

	pgDecliningIndustriesQuery = `
		SELECT ` + pgIndustryColumns + `
		FROM trending_industries
		WHERE is_declining = true
		ORDER BY growth ASC`

	pgEmergingRolesQuery = `
		SELECT id, title, description, growth, skills, industry, salary_range,
		       experience_level, created_at, updated_at
		FROM emerging_roles
		ORDER BY growth DESC`

	pgMarketCountsQuery = `
		SELECT (SELECT count(*) FROM trending_skills),
		       (SELECT count(*) FROM trending_industries),
		       (SELECT count(*) FROM emerging_roles)`

	pgLastMarketUpdateQuery = `
		SELECT id, update_type, skills_updated, industries_updated, roles_updated,
		       notes, update_timestamp
		FROM trending_update_log
		ORDER BY update_timestamp DESC
		LIMIT 1`

	pgCareerSummaryQuery   = `SELECT to_jsonb(s) FROM get_career_trend_summary($1) AS s LIMIT 1`
	pgIndustrySummaryQuery = `SELECT to_jsonb(s) FROM get_industry_trend_summary($1) AS s LIMIT 1`

	pgCareerIDsQuery = `SELECT DISTINCT career_id FROM career_trends ORDER BY career_id`
)

// Skills implements MarketStore.
func (s *PostgresStore) Skills(ctx context.Context, move model.Movement) (out []model.TrendingSkill, err error) {
	defer func(start time.Time) { observe(opSkills, start, err) }(time.Now())
	if err = checkMovement(move); err != nil {
		return nil, err
	}
	query := pgTrendingSkillsQuery
	if move == model.MoveDeclining {
		query = pgDecliningSkillsQuery
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s skills: %w", move, err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TrendingSkill, error) {
		var (
			sk       model.TrendingSkill
			salary   *float64
			category *string
		)
		scanErr := row.Scan(&sk.ID, &sk.Skill, &sk.Demand, &sk.Growth, &salary, &category,
			&sk.IsTrending, &sk.IsDeclining, &sk.CreatedAt, &sk.UpdatedAt)
		sk.Salary = derefFloat(salary)
		sk.Category = deref(category)
		return sk, scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s skills: %w", move, err)
	}
	return out, nil
}

// Industries implements MarketStore.
func (s *PostgresStore) Industries(ctx context.Context, move model.Movement) (out []model.MarketIndustry, err error) {
	defer func(start time.Time) { observe(opIndustries, start, err) }(time.Now())
	if err = checkMovement(move); err != nil {
		return nil, err
	}
	query := pgTrendingIndustriesQuery
	if move == model.MoveDeclining {
		query = pgDecliningIndustriesQuery
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s industries: %w", move, err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.MarketIndustry, error) {
		var (
			mi       model.MarketIndustry
			salary   *float64
			category *string
		)
		scanErr := row.Scan(&mi.ID, &mi.Industry, &mi.Growth, &mi.JobCount, &salary, &category,
			&mi.IsTrending, &mi.IsDeclining, &mi.CreatedAt, &mi.UpdatedAt)
		mi.AvgSalary = derefFloat(salary)
		mi.Category = deref(category)
		return mi, scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s industries: %w", move, err)
	}
	return out, nil
}

// EmergingRoles implements MarketStore.
func (s *PostgresStore) EmergingRoles(ctx context.Context) (out []model.EmergingRole, err error) {
	defer func(start time.Time) { observe(opEmergingRoles, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, pgEmergingRolesQuery)
	if err != nil {
		return nil, fmt.Errorf("query emerging roles: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.EmergingRole, error) {
		var (
			role                                 model.EmergingRole
			description, ind, salary, experience *string
		)
		scanErr := row.Scan(&role.ID, &role.Title, &description, &role.Growth, &role.Skills,
			&ind, &salary, &experience, &role.CreatedAt, &role.UpdatedAt)
		role.Description = deref(description)
		role.Industry = deref(ind)
		role.SalaryRange = deref(salary)
		role.ExperienceLevel = deref(experience)
		if role.Skills == nil {
			role.Skills = []string{}
		}
		return role, scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("scan emerging roles: %w", err)
	}
	return out, nil
}

// MarketStats implements MarketStore.
func (s *PostgresStore) MarketStats(ctx context.Context) (st model.MarketStats, err error) {
	defer func(start time.Time) { observe(opMarketStats, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	if err = s.pool.QueryRow(ctx, pgMarketCountsQuery).Scan(
		&st.TotalSkills, &st.TotalIndustries, &st.TotalRoles,
	); err != nil {
		return model.MarketStats{}, fmt.Errorf("count market rows: %w", err)
	}

	var (
		last  model.MarketUpdate
		notes *string
	)
	err = s.pool.QueryRow(ctx, pgLastMarketUpdateQuery).Scan(
		&last.ID, &last.UpdateType, &last.SkillsUpdated, &last.IndustriesUpdated,
		&last.RolesUpdated, &notes, &last.UpdatedAt,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = nil
	case err != nil:
		return model.MarketStats{}, fmt.Errorf("query last market update: %w", err)
	default:
		last.Notes = deref(notes)
		st.LastUpdate = &last
	}
	return st, nil
}

// CareerSummary implements MarketStore.
func (s *PostgresStore) CareerSummary(ctx context.Context, careerID string) (sum model.Summary, err error) {
	defer func(start time.Time) { observe(opCareerSummary, start, err) }(time.Now())
	return s.summary(ctx, pgCareerSummaryQuery, careerID)
}

// IndustrySummary implements MarketStore.
func (s *PostgresStore) IndustrySummary(ctx context.Context, name string) (sum model.Summary, err error) {
	defer func(start time.Time) { observe(opIndustrySummary, start, err) }(time.Now())
	return s.summary(ctx, pgIndustrySummaryQuery, name)
}

func (s *PostgresStore) summary(ctx context.Context, query, arg string) (model.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	var raw []byte
	err := s.pool.QueryRow(ctx, query, arg).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query summary %s: %w", arg, err)
	}
	return decodeSummary(raw)
}

// TrendCareerIDs implements MarketStore.
func (s *PostgresStore) TrendCareerIDs(ctx context.Context) (out []string, err error) {
	defer func(start time.Time) { observe(opCareerIDs, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, pgCareerIDsQuery)
	if err != nil {
		return nil, fmt.Errorf("query career ids: %w", err)
	}
	out, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan career ids: %w", err)
	}
	return out, nil
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// decodeSummary turns a JSON summary row into a Summary. A JSON null means
// no row.
func decodeSummary(raw []byte) (model.Summary, error) {
	var sum model.Summary
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &sum); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
	}
	if sum == nil {
		return nil, ErrNotFound
	}
	return sum, nil
}
