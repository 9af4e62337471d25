package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/careeratlas/trends/internal/domain/model"
)

// HistoryEntry is a snapshot bound to its career in a fixture.
type HistoryEntry struct {
	CareerID string `json:"careerId"`
	model.TrendSnapshot
}

// Fixture is the JSON document accepted by the seed command.
type Fixture struct {
	CareerTrends     []model.TrendRecord    `json:"careerTrends"`
	IndustryTrends   []model.IndustryTrend  `json:"industryTrends"`
	TrendingCareers  []model.TrendingCareer `json:"trendingCareers"`
	History          []HistoryEntry         `json:"history"`
	Skills           []model.TrendingSkill  `json:"skills"`
	MarketIndustries []model.MarketIndustry `json:"marketIndustries"`
	EmergingRoles    []model.EmergingRole   `json:"emergingRoles"`
	MarketUpdates    []model.MarketUpdate   `json:"marketUpdates"`
}

// SeedCounts reports how many rows each section wrote.
type SeedCounts struct {
	CareerTrends     int
	IndustryTrends   int
	TrendingCareers  int
	History          int
	Skills           int
	MarketIndustries int
	EmergingRoles    int
	MarketUpdates    int
}

// LoadFixture reads a fixture from path.
func LoadFixture(path string) (Fixture, error) {
	var f Fixture
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read fixture: %w", err)
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return f, nil
}

// Seed writes every row of f into s, stopping at the first failure.
func (s *SQLiteStore) Seed(ctx context.Context, f Fixture) (SeedCounts, error) {
	var c SeedCounts
	for _, rec := range f.CareerTrends {
		if err := s.UpsertCareerTrend(ctx, rec); err != nil {
			return c, err
		}
		c.CareerTrends++
	}
	for _, it := range f.IndustryTrends {
		if err := s.UpsertIndustryTrend(ctx, it); err != nil {
			return c, err
		}
		c.IndustryTrends++
	}
	for _, tc := range f.TrendingCareers {
		if err := s.UpsertTrendingCareer(ctx, tc); err != nil {
			return c, err
		}
		c.TrendingCareers++
	}
	for _, h := range f.History {
		if err := s.AppendHistory(ctx, h.CareerID, h.TrendSnapshot); err != nil {
			return c, err
		}
		c.History++
	}
	for _, sk := range f.Skills {
		if _, err := s.InsertSkill(ctx, sk); err != nil {
			return c, err
		}
		c.Skills++
	}
	for _, mi := range f.MarketIndustries {
		if _, err := s.InsertMarketIndustry(ctx, mi); err != nil {
			return c, err
		}
		c.MarketIndustries++
	}
	for _, role := range f.EmergingRoles {
		if _, err := s.InsertEmergingRole(ctx, role); err != nil {
			return c, err
		}
		c.EmergingRoles++
	}
	for _, u := range f.MarketUpdates {
		if err := s.LogMarketUpdate(ctx, u); err != nil {
			return c, err
		}
		c.MarketUpdates++
	}
	return c, nil
}
