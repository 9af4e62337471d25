package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/careeratlas/trends/internal/domain/cache"
	"github.com/careeratlas/trends/internal/domain/model"
	"github.com/careeratlas/trends/pkg/logger"
	"github.com/careeratlas/trends/pkg/metrics"
)

// DefaultMarketTTL is how long market boards stay fresh.
const DefaultMarketTTL = time.Hour

// Market cache keys.
const (
	keyMarket              = "market:all"
	keyTrendingSkills      = "market:skills:trending"
	keyDecliningSkills     = "market:skills:declining"
	keyTrendingIndustries  = "market:industries:trending"
	keyDecliningIndustries = "market:industries:declining"
	keyEmergingRoles       = "market:roles:emerging"
)

// marketCaches holds the market boards. Entries outlive their TTL so a
// failed refresh can serve the last good value.
type marketCaches struct {
	snapshot   *cache.Cache[model.MarketSnapshot]
	skills     *cache.Cache[[]model.TrendingSkill]
	industries *cache.Cache[[]model.MarketIndustry]
	roles      *cache.Cache[[]model.EmergingRole]
}

func newMarketCaches(ttl time.Duration, now func() time.Time) marketCaches {
	opts := []cache.Option{cache.WithTTL(ttl), cache.WithClock(now), cache.WithRetainExpired()}
	return marketCaches{
		snapshot:   cache.New[model.MarketSnapshot](opts...),
		skills:     cache.New[[]model.TrendingSkill](opts...),
		industries: cache.New[[]model.MarketIndustry](opts...),
		roles:      cache.New[[]model.EmergingRole](opts...),
	}
}

func (m marketCaches) clear() int {
	return m.snapshot.Clear() + m.skills.Clear() + m.industries.Clear() + m.roles.Clear()
}

func (m marketCaches) len() int {
	return m.snapshot.Len() + m.skills.Len() + m.industries.Len() + m.roles.Len()
}

func (m marketCaches) keys() []string {
	var keys []string
	keys = append(keys, m.snapshot.Stats().Keys...)
	keys = append(keys, m.skills.Stats().Keys...)
	keys = append(keys, m.industries.Stats().Keys...)
	keys = append(keys, m.roles.Stats().Keys...)
	return keys
}

// marketFetch serves key from c while fresh, otherwise fetches it. On a
// fetch failure the stale value is returned if one exists, else fallback.
func marketFetch[T any](
	ctx context.Context,
	s *Service,
	c *cache.Cache[T],
	key string,
	clone func(T) T,
	fetch func(context.Context) (T, error),
	fallback func() T,
) T {
	cached, fresh, ok := c.Lookup(key)
	if ok && fresh {
		metrics.RecordLookup(lookupMarket, metrics.OutcomeHit)
		return clone(cached)
	}

	if s.store != nil {
		v, err := fetch(ctx)
		if err == nil {
			metrics.RecordLookup(lookupMarket, metrics.OutcomeMiss)
			c.Set(key, v)
			return clone(v)
		}
		s.logFetchError(ctx, lookupMarket, key, "", err)
	}

	metrics.RecordLookup(lookupMarket, metrics.OutcomeFallback)
	if ok {
		return clone(cached)
	}
	return fallback()
}

// MarketTrends returns every market board. When the store fails and
// nothing is cached, the built-in fallback board is returned with
// Fallback set.
func (s *Service) MarketTrends(ctx context.Context) model.MarketSnapshot {
	return marketFetch(ctx, s, s.market.snapshot, keyMarket, model.MarketSnapshot.Clone,
		s.fetchMarket, func() model.MarketSnapshot { return fallbackMarket(s.now()) })
}

func (s *Service) fetchMarket(ctx context.Context) (model.MarketSnapshot, error) {
	var snap model.MarketSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.TrendingSkills, err = s.store.Skills(gctx, model.MoveTrending)
		return err
	})
	g.Go(func() (err error) {
		snap.DecliningSkills, err = s.store.Skills(gctx, model.MoveDeclining)
		return err
	})
	g.Go(func() (err error) {
		snap.TrendingIndustries, err = s.store.Industries(gctx, model.MoveTrending)
		return err
	})
	g.Go(func() (err error) {
		snap.DecliningIndustries, err = s.store.Industries(gctx, model.MoveDeclining)
		return err
	})
	g.Go(func() (err error) {
		snap.EmergingRoles, err = s.store.EmergingRoles(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.MarketSnapshot{}, err
	}

	snap.TrendingSkills = nonNil(snap.TrendingSkills)
	snap.DecliningSkills = nonNil(snap.DecliningSkills)
	snap.TrendingIndustries = nonNil(snap.TrendingIndustries)
	snap.DecliningIndustries = nonNil(snap.DecliningIndustries)
	snap.EmergingRoles = nonNil(snap.EmergingRoles)
	return snap, nil
}

// TrendingSkills returns skills flagged trending, highest demand first.
// Store failures yield the last cached list or an empty one.
func (s *Service) TrendingSkills(ctx context.Context) []model.TrendingSkill {
	return s.skillBoard(ctx, keyTrendingSkills, model.MoveTrending)
}

// DecliningSkills returns skills flagged declining, steepest decline first.
func (s *Service) DecliningSkills(ctx context.Context) []model.TrendingSkill {
	return s.skillBoard(ctx, keyDecliningSkills, model.MoveDeclining)
}

func (s *Service) skillBoard(ctx context.Context, key string, move model.Movement) []model.TrendingSkill {
	return marketFetch(ctx, s, s.market.skills, key, model.CloneSkills,
		func(ctx context.Context) ([]model.TrendingSkill, error) {
			out, err := s.store.Skills(ctx, move)
			return nonNil(out), err
		},
		func() []model.TrendingSkill { return []model.TrendingSkill{} })
}

// TrendingIndustries returns industries flagged trending, fastest growth first.
func (s *Service) TrendingIndustries(ctx context.Context) []model.MarketIndustry {
	return s.industryBoard(ctx, keyTrendingIndustries, model.MoveTrending)
}

// DecliningIndustries returns industries flagged declining, steepest decline first.
func (s *Service) DecliningIndustries(ctx context.Context) []model.MarketIndustry {
	return s.industryBoard(ctx, keyDecliningIndustries, model.MoveDeclining)
}

func (s *Service) industryBoard(ctx context.Context, key string, move model.Movement) []model.MarketIndustry {
	return marketFetch(ctx, s, s.market.industries, key, model.CloneIndustries,
		func(ctx context.Context) ([]model.MarketIndustry, error) {
			out, err := s.store.Industries(ctx, move)
			return nonNil(out), err
		},
		func() []model.MarketIndustry { return []model.MarketIndustry{} })
}

// EmergingRoles returns emerging roles, fastest growth first.
func (s *Service) EmergingRoles(ctx context.Context) []model.EmergingRole {
	return marketFetch(ctx, s, s.market.roles, keyEmergingRoles, model.CloneRoles,
		func(ctx context.Context) ([]model.EmergingRole, error) {
			out, err := s.store.EmergingRoles(ctx)
			return nonNil(out), err
		},
		func() []model.EmergingRole { return []model.EmergingRole{} })
}

// MarketStats counts the market boards. The boolean is false when the
// store is unavailable.
func (s *Service) MarketStats(ctx context.Context) (model.MarketStats, bool) {
	if s.store == nil {
		return model.MarketStats{}, false
	}
	st, err := s.store.MarketStats(ctx)
	if err != nil {
		s.logFetchError(ctx, lookupMarket, "stats", "", err)
		return model.MarketStats{}, false
	}
	return st, true
}

// RefreshMarket drops the cached market boards and reloads them.
func (s *Service) RefreshMarket(ctx context.Context) model.MarketSnapshot {
	cleared := s.market.clear()
	snap := s.MarketTrends(ctx)
	s.logger.Info(ctx, "market boards refreshed",
		logger.Int("cleared", cleared),
		logger.Bool("fallback", snap.Fallback),
	)
	return snap
}

// MarketNeedsRefresh reports whether the market board is missing or older
// than the market TTL.
func (s *Service) MarketNeedsRefresh() bool {
	_, fresh, ok := s.market.snapshot.Lookup(keyMarket)
	return !ok || !fresh
}

// CareerSummary returns the stored trend summary for careerID, resolving
// aliases first.
func (s *Service) CareerSummary(ctx context.Context, careerID string) (model.Summary, bool) {
	if s.store == nil {
		return nil, false
	}
	canonical := CanonicalCareerID(careerID)
	sum, err := s.store.CareerSummary(ctx, canonical)
	if err != nil {
		s.logFetchError(ctx, "career_summary", canonical, "", err)
		return nil, false
	}
	return sum, true
}

// IndustrySummary returns the stored trend summary for an industry.
func (s *Service) IndustrySummary(ctx context.Context, name string) (model.Summary, bool) {
	if s.store == nil {
		return nil, false
	}
	sum, err := s.store.IndustrySummary(ctx, name)
	if err != nil {
		s.logFetchError(ctx, "industry_summary", name, "", err)
		return nil, false
	}
	return sum, true
}

// TrendCareerIDs lists every career with stored trend data. Store
// failures yield an empty list.
func (s *Service) TrendCareerIDs(ctx context.Context) []string {
	if s.store == nil {
		return []string{}
	}
	ids, err := s.store.TrendCareerIDs(ctx)
	if err != nil {
		s.logFetchError(ctx, "career_ids", "", "", err)
		return []string{}
	}
	return nonNil(ids)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// fallbackMarket is the board served when the store has never answered.
func fallbackMarket(now time.Time) model.MarketSnapshot {
	skill := func(id int64, name string, demand, growth, salary float64, trending bool) model.TrendingSkill {
		return model.TrendingSkill{
			ID: id, Skill: name, Demand: demand, Growth: growth, Salary: salary,
			IsTrending: trending, IsDeclining: !trending, CreatedAt: now, UpdatedAt: now,
		}
	}
	sector := func(id int64, name string, growth float64, jobs int, salary float64, category string, trending bool) model.MarketIndustry {
		return model.MarketIndustry{
			ID: id, Industry: name, Growth: growth, JobCount: jobs, AvgSalary: salary, Category: category,
			IsTrending: trending, IsDeclining: !trending, CreatedAt: now, UpdatedAt: now,
		}
	}
	return model.MarketSnapshot{
		TrendingSkills: []model.TrendingSkill{
			skill(1, "AI/ML", 95, 25, 120000, true),
			skill(2, "Cybersecurity", 90, 20, 110000, true),
			skill(3, "Cloud Computing", 85, 18, 105000, true),
		},
		DecliningSkills: []model.TrendingSkill{
			skill(4, "Flash Development", 15, -35, 45000, false),
			skill(5, "Silverlight", 8, -45, 40000, false),
			skill(6, "ColdFusion", 12, -25, 50000, false),
		},
		TrendingIndustries: []model.MarketIndustry{
			sector(1, "Technology", 15, 50000, 95000, "tech", true),
			sector(2, "Healthcare", 12, 30000, 85000, "healthcare", true),
		},
		DecliningIndustries: []model.MarketIndustry{
			sector(3, "Print Media", -12, 8000, 55000, "media", false),
			sector(4, "Traditional Retail", -8, 15000, 45000, "retail", false),
		},
		EmergingRoles: []model.EmergingRole{
			{
				ID: 1, Title: "AI Engineer", Description: "Build and deploy AI models", Growth: 30,
				Skills: []string{"Python", "TensorFlow", "ML"}, Industry: "tech",
				SalaryRange: "$90,000 - $150,000", ExperienceLevel: "2-5 years", CreatedAt: now, UpdatedAt: now,
			},
			{
				ID: 2, Title: "DevOps Engineer", Description: "Automate deployment processes", Growth: 25,
				Skills: []string{"Docker", "Kubernetes", "CI/CD"}, Industry: "tech",
				SalaryRange: "$85,000 - $140,000", ExperienceLevel: "2-5 years", CreatedAt: now, UpdatedAt: now,
			},
		},
		Fallback: true,
	}
}
