package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/careeratlas/trends/internal/domain/model"
)

// Skills implements MarketStore.
func (s *SQLiteStore) Skills(ctx context.Context, move model.Movement) (out []model.TrendingSkill, err error) {
	defer func(start time.Time) { observe(opSkills, start, err) }(time.Now())
	if err = checkMovement(move); err != nil {
		return nil, err
	}
	where := "is_trending = 1 ORDER BY demand DESC, id ASC"
	if move == model.MoveDeclining {
		where = "is_declining = 1 ORDER BY growth ASC, id ASC"
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, skill, demand, growth, salary, category, is_trending, is_declining,
		       created_at, updated_at
		FROM trending_skills
		WHERE `+where)
	if err != nil {
		return nil, fmt.Errorf("query %s skills: %w", move, err)
	}
	defer rows.Close()

	out = []model.TrendingSkill{}
	for rows.Next() {
		var (
			sk               model.TrendingSkill
			salary           sql.NullFloat64
			category         sql.NullString
			created, updated string
		)
		if err = rows.Scan(&sk.ID, &sk.Skill, &sk.Demand, &sk.Growth, &salary, &category,
			&sk.IsTrending, &sk.IsDeclining, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan %s skills: %w", move, err)
		}
		sk.Salary = salary.Float64
		sk.Category = category.String
		if sk.CreatedAt, sk.UpdatedAt, err = parseStamps(created, updated); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s skills: %w", move, err)
	}
	return out, nil
}

// Industries implements MarketStore.
func (s *SQLiteStore) Industries(ctx context.Context, move model.Movement) (out []model.MarketIndustry, err error) {
	defer func(start time.Time) { observe(opIndustries, start, err) }(time.Now())
	if err = checkMovement(move); err != nil {
		return nil, err
	}
	where := "is_trending = 1 ORDER BY growth DESC, id ASC"
	if move == model.MoveDeclining {
		where = "is_declining = 1 ORDER BY growth ASC, id ASC"
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, industry, growth, job_count, avg_salary, category, is_trending, is_declining,
		       created_at, updated_at
		FROM trending_industries
		WHERE `+where)
	if err != nil {
		return nil, fmt.Errorf("query %s industries: %w", move, err)
	}
	defer rows.Close()

	out = []model.MarketIndustry{}
	for rows.Next() {
		var (
			mi               model.MarketIndustry
			salary           sql.NullFloat64
			category         sql.NullString
			created, updated string
		)
		if err = rows.Scan(&mi.ID, &mi.Industry, &mi.Growth, &mi.JobCount, &salary, &category,
			&mi.IsTrending, &mi.IsDeclining, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan %s industries: %w", move, err)
		}
		mi.AvgSalary = salary.Float64
		mi.Category = category.String
		if mi.CreatedAt, mi.UpdatedAt, err = parseStamps(created, updated); err != nil {
			return nil, err
		}
		out = append(out, mi)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s industries: %w", move, err)
	}
	return out, nil
}

// EmergingRoles implements MarketStore.
func (s *SQLiteStore) EmergingRoles(ctx context.Context) (out []model.EmergingRole, err error) {
	defer func(start time.Time) { observe(opEmergingRoles, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, growth, skills, industry, salary_range,
		       experience_level, created_at, updated_at
		FROM emerging_roles
		ORDER BY growth DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query emerging roles: %w", err)
	}
	defer rows.Close()

	out = []model.EmergingRole{}
	for rows.Next() {
		var (
			role                                         model.EmergingRole
			description, skills, ind, salary, experience sql.NullString
			created, updated                             string
		)
		if err = rows.Scan(&role.ID, &role.Title, &description, &role.Growth, &skills,
			&ind, &salary, &experience, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan emerging roles: %w", err)
		}
		if role.Skills, err = decodeList(skills); err != nil {
			return nil, err
		}
		role.Description = description.String
		role.Industry = ind.String
		role.SalaryRange = salary.String
		role.ExperienceLevel = experience.String
		if role.CreatedAt, role.UpdatedAt, err = parseStamps(created, updated); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emerging roles: %w", err)
	}
	return out, nil
}

// MarketStats implements MarketStore.
func (s *SQLiteStore) MarketStats(ctx context.Context) (st model.MarketStats, err error) {
	defer func(start time.Time) { observe(opMarketStats, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	if err = s.db.QueryRowContext(ctx, `
		SELECT (SELECT count(*) FROM trending_skills),
		       (SELECT count(*) FROM trending_industries),
		       (SELECT count(*) FROM emerging_roles)`).Scan(
		&st.TotalSkills, &st.TotalIndustries, &st.TotalRoles,
	); err != nil {
		return model.MarketStats{}, fmt.Errorf("count market rows: %w", err)
	}

	var (
		last    model.MarketUpdate
		notes   sql.NullString
		updated string
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT id, update_type, skills_updated, industries_updated, roles_updated,
		       notes, update_timestamp
		FROM trending_update_log
		ORDER BY update_timestamp DESC, id DESC
		LIMIT 1`).Scan(
		&last.ID, &last.UpdateType, &last.SkillsUpdated, &last.IndustriesUpdated,
		&last.RolesUpdated, &notes, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return model.MarketStats{}, fmt.Errorf("query last market update: %w", err)
	}
	if last.UpdatedAt, err = parseTime(updated); err != nil {
		return model.MarketStats{}, err
	}
	last.Notes = notes.String
	st.LastUpdate = &last
	return st, nil
}

// CareerSummary implements MarketStore. The summary is built from the
// latest English row, falling back to any language, plus the number of
// stored history months.
func (s *SQLiteStore) CareerSummary(ctx context.Context, careerID string) (sum model.Summary, err error) {
	defer func(start time.Time) { observe(opCareerSummary, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	var (
		score, growth, risk float64
		direction, demand   string
		tag                 sql.NullString
		updated             string
		months              int
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT t.trend_score, t.trend_direction, t.demand_level, t.growth_rate,
		       t.automation_risk, t.industry, t.last_updated,
		       (SELECT count(*) FROM career_trend_history h WHERE h.career_id = t.career_id)
		FROM career_trends_with_translations t
		WHERE t.career_id = ?
		ORDER BY (t.language_code = 'en') DESC, t.last_updated DESC
		LIMIT 1`, careerID).Scan(
		&score, &direction, &demand, &growth, &risk, &tag, &updated, &months,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query career summary %s: %w", careerID, err)
	}
	last, err := parseTime(updated)
	if err != nil {
		return nil, err
	}
	return model.Summary{
		"career_id":       careerID,
		"trend_score":     score,
		"trend_direction": direction,
		"demand_level":    demand,
		"growth_rate":     growth,
		"automation_risk": risk,
		"industry":        tag.String,
		"history_months":  months,
		"last_updated":    last,
	}, nil
}

// IndustrySummary implements MarketStore. The summary aggregates the
// trending list rows of the industry.
func (s *SQLiteStore) IndustrySummary(ctx context.Context, name string) (sum model.Summary, err error) {
	defer func(start time.Time) { observe(opIndustrySummary, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	var (
		total                     int
		avgScore, avgGrowth       float64
		rising, stable, declining int
		topCareer                 string
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT count(*), avg(trend_score), avg(growth_rate),
		       sum(trend_direction = 'rising'), sum(trend_direction = 'stable'),
		       sum(trend_direction = 'declining'),
		       (SELECT career_id FROM career_trends c2 WHERE c2.industry = c.industry
		        ORDER BY trend_score DESC, career_id ASC LIMIT 1)
		FROM career_trends c
		WHERE industry = ?
		GROUP BY industry`, name).Scan(
		&total, &avgScore, &avgGrowth, &rising, &stable, &declining, &topCareer,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query industry summary %s: %w", name, err)
	}
	return model.Summary{
		"industry":          name,
		"total_careers":     total,
		"avg_trend_score":   avgScore,
		"avg_growth_rate":   avgGrowth,
		"rising_careers":    rising,
		"stable_careers":    stable,
		"declining_careers": declining,
		"top_career":        topCareer,
	}, nil
}

// TrendCareerIDs implements MarketStore.
func (s *SQLiteStore) TrendCareerIDs(ctx context.Context) (out []string, err error) {
	defer func(start time.Time) { observe(opCareerIDs, start, err) }(time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT career_id FROM career_trends
		UNION
		SELECT career_id FROM career_trends_with_translations
		ORDER BY career_id`)
	if err != nil {
		return nil, fmt.Errorf("query career ids: %w", err)
	}
	defer rows.Close()

	out = []string{}
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan career ids: %w", err)
		}
		out = append(out, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate career ids: %w", err)
	}
	return out, nil
}

// InsertSkill stores sk, replacing any row with the same non-zero ID, and
// returns the row id.
func (s *SQLiteStore) InsertSkill(ctx context.Context, sk model.TrendingSkill) (id int64, err error) {
	defer func(start time.Time) { observe(opUpsert, start, err) }(time.Now())
	created, updated := stamps(sk.CreatedAt, sk.UpdatedAt)
	res, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trending_skills (
			id, skill, demand, growth, salary, category, is_trending, is_declining,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullID(sk.ID), sk.Skill, sk.Demand, sk.Growth, nullFloat(sk.Salary), nullString(sk.Category),
		sk.IsTrending, sk.IsDeclining, created, updated,
	)
	if err != nil {
		return 0, fmt.Errorf("insert skill %s: %w", sk.Skill, err)
	}
	return res.LastInsertId()
}

// InsertMarketIndustry stores mi and returns the row id.
func (s *SQLiteStore) InsertMarketIndustry(ctx context.Context, mi model.MarketIndustry) (id int64, err error) {
	defer func(start time.Time) { observe(opUpsert, start, err) }(time.Now())
	created, updated := stamps(mi.CreatedAt, mi.UpdatedAt)
	res, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trending_industries (
			id, industry, growth, job_count, avg_salary, category, is_trending, is_declining,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullID(mi.ID), mi.Industry, mi.Growth, mi.JobCount, nullFloat(mi.AvgSalary), nullString(mi.Category),
		mi.IsTrending, mi.IsDeclining, created, updated,
	)
	if err != nil {
		return 0, fmt.Errorf("insert market industry %s: %w", mi.Industry, err)
	}
	return res.LastInsertId()
}

// InsertEmergingRole stores role and returns the row id.
func (s *SQLiteStore) InsertEmergingRole(ctx context.Context, role model.EmergingRole) (id int64, err error) {
	defer func(start time.Time) { observe(opUpsert, start, err) }(time.Now())
	skills, err := encodeList(role.Skills)
	if err != nil {
		return 0, err
	}
	created, updated := stamps(role.CreatedAt, role.UpdatedAt)
	res, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO emerging_roles (
			id, title, description, growth, skills, industry, salary_range,
			experience_level, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullID(role.ID), role.Title, nullString(role.Description), role.Growth, skills,
		nullString(role.Industry), nullString(role.SalaryRange), nullString(role.ExperienceLevel),
		created, updated,
	)
	if err != nil {
		return 0, fmt.Errorf("insert emerging role %s: %w", role.Title, err)
	}
	return res.LastInsertId()
}

// LogMarketUpdate appends an entry to the market refresh log.
func (s *SQLiteStore) LogMarketUpdate(ctx context.Context, u model.MarketUpdate) (err error) {
	defer func(start time.Time) { observe(opUpsert, start, err) }(time.Now())
	at := u.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trending_update_log (
			id, update_type, skills_updated, industries_updated, roles_updated, notes, update_timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullID(u.ID), u.UpdateType, u.SkillsUpdated, u.IndustriesUpdated, u.RolesUpdated,
		nullString(u.Notes), formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("log market update %s: %w", u.UpdateType, err)
	}
	return nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}

// stamps formats created and updated, defaulting a zero created to now
// and a zero updated to created.
func stamps(created, updated time.Time) (string, string) {
	if created.IsZero() {
		created = time.Now()
	}
	if updated.IsZero() {
		updated = created
	}
	return formatTime(created), formatTime(updated)
}

func parseStamps(created, updated string) (time.Time, time.Time, error) {
	c, err := parseTime(created)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	u, err := parseTime(updated)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return c, u, nil
}
