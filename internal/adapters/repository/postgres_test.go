package repository

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCareerTrendQueryReadsIndustryFromRow(t *testing.T) {
	q := pgCareerTrendQuery
	assert.Contains(t, q, "to_jsonb(v)->>'industry'")
	assert.Contains(t, q, "FROM career_trends_with_translations AS v")

	// the only reference to industry is the JSON lookup
	assert.Len(t, regexp.MustCompile(`\bindustry\b`).FindAllString(q, -1), 1)
}

func TestPostgresMarketQueries(t *testing.T) {
	assert.Contains(t, pgTrendingSkillsQuery, "ORDER BY demand DESC")
	assert.Contains(t, pgDecliningSkillsQuery, "ORDER BY growth ASC")
	assert.Contains(t, pgTrendingIndustriesQuery, "ORDER BY growth DESC")
	assert.Contains(t, pgDecliningIndustriesQuery, "ORDER BY growth ASC")
	assert.Contains(t, pgEmergingRolesQuery, "ORDER BY growth DESC")
	assert.Contains(t, pgCareerSummaryQuery, "get_career_trend_summary($1)")
	assert.Contains(t, pgIndustrySummaryQuery, "get_industry_trend_summary($1)")
	assert.Contains(t, pgCareerIDsQuery, "FROM career_trends")
}

func TestDecodeSummary(t *testing.T) {
	sum, err := decodeSummary([]byte(`{"career_id":"rn","avg_trend_score":7.5}`))
	require.NoError(t, err)
	assert.Equal(t, "rn", sum["career_id"])
	assert.Equal(t, 7.5, sum["avg_trend_score"])

	_, err = decodeSummary([]byte(`null`))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = decodeSummary(nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = decodeSummary([]byte(`[`))
	assert.Error(t, err)
}
