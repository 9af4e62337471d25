// Package service provides the trend lookup service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/careeratlas/trends/internal/adapters/repository"
	"github.com/careeratlas/trends/internal/domain/adjust"
	"github.com/careeratlas/trends/internal/domain/cache"
	"github.com/careeratlas/trends/internal/domain/industry"
	"github.com/careeratlas/trends/internal/domain/model"
	"github.com/careeratlas/trends/internal/domain/region"
	"github.com/careeratlas/trends/pkg/logger"
	"github.com/careeratlas/trends/pkg/metrics"
)

// Defaults applied when a caller passes a non-positive size.
const (
	DefaultLanguage      = "en"
	DefaultTrendingLimit = 20
	DefaultHistoryMonths = 12
	MaxHistoryMonths     = 120

	industryKeyPrefix = "industry:"
	lookupCareer      = "career"
	lookupIndustry    = "industry"
	lookupMarket      = "market"
)

// Sentinel errors returned by the service.
var (
	ErrNoStore         = errors.New("service has no trend store")
	ErrInvalidLanguage = errors.New("language must not be empty")
)

// Service resolves, adjusts and caches career trends.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	regions  *region.Table
	adjuster *adjust.Adjuster
	trends   *cache.Cache[model.TrendRecord]
	sectors  *cache.Cache[model.IndustryTrend]
	market   marketCaches

	// Configuration
	defaultLanguage  string
	cacheTTL         time.Duration
	marketTTL        time.Duration
	maxTrendingLimit int
	batchConcurrency int
	statsInterval    time.Duration
	now              func() time.Time

	// State
	language string
	started  bool
	stopCh   chan struct{}
	doneCh   chan struct{}

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaultLanguage:  DefaultLanguage,
		cacheTTL:         cache.DefaultTTL,
		marketTTL:        DefaultMarketTTL,
		maxTrendingLimit: 100,
		batchConcurrency: runtime.NumCPU() * 2,
		statsInterval:    15 * time.Second,
		now:              time.Now,
		logger:           logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.regions == nil {
		s.regions = region.Default()
	}
	s.adjuster = adjust.New(s.regions)
	s.trends = cache.New[model.TrendRecord](cache.WithTTL(s.cacheTTL), cache.WithClock(s.now))
	s.sectors = cache.New[model.IndustryTrend](cache.WithTTL(s.cacheTTL), cache.WithClock(s.now))
	s.market = newMarketCaches(s.marketTTL, s.now)
	s.language = s.defaultLanguage

	return s
}

// Start begins the background gauge refresh loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}

	s.logger.Info(ctx, "starting trend service...")

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.refreshLoop(s.stopCh, s.doneCh)

	s.started = true
	s.logger.Info(ctx, "trend service started",
		logger.String("defaultLanguage", s.defaultLanguage),
		logger.Duration("cacheTTL", s.cacheTTL),
		logger.Int("regions", s.regions.Len()),
		logger.Int("batchConcurrency", s.batchConcurrency),
	)
	return nil
}

// Stop halts the refresh loop and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping trend service...")

	close(s.stopCh)
	<-s.doneCh

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing trend store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "trend service stopped")
}

func (s *Service) refreshLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.statsInterval)
	defer ticker.Stop()

	var ms runtime.MemStats
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			metrics.UpdateCacheSize(s.cacheLen())
			runtime.ReadMemStats(&ms)
			metrics.UpdateSystemMemoryUsage(ms.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
			if ms.NumGC > 0 {
				metrics.RecordSystemGCPauseTime(float64(ms.PauseTotalNs) / float64(ms.NumGC) / float64(time.Millisecond))
			}
		}
	}
}

// GetTrend returns the region-adjusted trend for careerID. An empty
// language means the active language and an empty region means the
// baseline. The boolean is false when no data exists in the requested
// or default language.
func (s *Service) GetTrend(ctx context.Context, careerID, language, regionID string) (model.TrendRecord, bool) {
	lang := s.resolveLanguage(language)
	resolvedRegion, _ := s.regions.Resolve(regionID)
	key := trendKey(careerID, lang, resolvedRegion)

	if rec, ok := s.trends.Get(key); ok {
		metrics.RecordLookup(lookupCareer, metrics.OutcomeHit)
		return rec.Clone(), true
	}

	canonical := CanonicalCareerID(careerID)
	rec, outcome, ok := s.fetchCareer(ctx, canonical, lang)
	if !ok {
		metrics.RecordLookup(lookupCareer, metrics.OutcomeNotFound)
		s.logger.Debug(ctx, "no trend data",
			logger.String("careerId", careerID),
			logger.String("canonicalId", canonical),
			logger.String("language", lang),
		)
		return model.TrendRecord{}, false
	}

	adjusted := s.adjuster.Adjust(rec, resolvedRegion)
	metrics.RecordAdjustment(resolvedRegion, string(industry.Resolve(rec.Industry, rec.CareerID)))
	metrics.RecordLookup(lookupCareer, outcome)

	s.trends.Set(key, adjusted)
	return adjusted.Clone(), true
}

// fetchCareer reads the primary language and, if that yields nothing,
// the default language.
func (s *Service) fetchCareer(ctx context.Context, careerID, lang string) (model.TrendRecord, string, bool) {
	if s.store == nil {
		return model.TrendRecord{}, "", false
	}

	rec, err := s.store.CareerTrend(ctx, careerID, lang)
	if err == nil {
		return rec, metrics.OutcomeMiss, true
	}
	s.logFetchError(ctx, "career", careerID, lang, err)

	if lang == s.defaultLanguage {
		return model.TrendRecord{}, "", false
	}
	rec, err = s.store.CareerTrend(ctx, careerID, s.defaultLanguage)
	if err != nil {
		s.logFetchError(ctx, "career", careerID, s.defaultLanguage, err)
		return model.TrendRecord{}, "", false
	}
	return rec, metrics.OutcomeFallback, true
}

// GetIndustryTrend returns the aggregate for an industry with the same
// language fallback and caching as GetTrend. No regional adjustment applies.
func (s *Service) GetIndustryTrend(ctx context.Context, name, language string) (model.IndustryTrend, bool) {
	lang := s.resolveLanguage(language)
	key := industryKeyPrefix + name + "|" + lang

	if it, ok := s.sectors.Get(key); ok {
		metrics.RecordLookup(lookupIndustry, metrics.OutcomeHit)
		return it.Clone(), true
	}
	if s.store == nil {
		return model.IndustryTrend{}, false
	}

	outcome := metrics.OutcomeMiss
	it, err := s.store.IndustryTrend(ctx, name, lang)
	if err != nil {
		s.logFetchError(ctx, "industry", name, lang, err)
		if lang == s.defaultLanguage {
			metrics.RecordLookup(lookupIndustry, metrics.OutcomeNotFound)
			return model.IndustryTrend{}, false
		}
		if it, err = s.store.IndustryTrend(ctx, name, s.defaultLanguage); err != nil {
			s.logFetchError(ctx, "industry", name, s.defaultLanguage, err)
			metrics.RecordLookup(lookupIndustry, metrics.OutcomeNotFound)
			return model.IndustryTrend{}, false
		}
		outcome = metrics.OutcomeFallback
	}

	metrics.RecordLookup(lookupIndustry, outcome)
	s.sectors.Set(key, it)
	return it.Clone(), true
}

// TrendingCareers returns the top careers by trend score. A non-positive
// limit uses DefaultTrendingLimit; larger limits are capped. Store failures
// yield an empty list.
func (s *Service) TrendingCareers(ctx context.Context, limit int) []model.TrendingCareer {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	if limit > s.maxTrendingLimit {
		limit = s.maxTrendingLimit
	}
	if s.store == nil {
		return []model.TrendingCareer{}
	}

	out, err := s.store.TrendingCareers(ctx, limit)
	if err != nil {
		s.logger.Warn(ctx, "failed to get trending careers", logger.Int("limit", limit), logger.Error(err))
		return []model.TrendingCareer{}
	}
	if out == nil {
		out = []model.TrendingCareer{}
	}
	return out
}

// TrendHistory returns up to months snapshots for careerID, most recent
// first. Store failures yield an empty list.
func (s *Service) TrendHistory(ctx context.Context, careerID string, months int) []model.TrendSnapshot {
	if months <= 0 {
		months = DefaultHistoryMonths
	}
	if months > MaxHistoryMonths {
		months = MaxHistoryMonths
	}
	if s.store == nil {
		return []model.TrendSnapshot{}
	}

	canonical := CanonicalCareerID(careerID)
	out, err := s.store.TrendHistory(ctx, canonical, months)
	if err != nil {
		s.logger.Warn(ctx, "failed to get trend history",
			logger.String("careerId", careerID),
			logger.Int("months", months),
			logger.Error(err),
		)
		return []model.TrendSnapshot{}
	}
	if out == nil {
		out = []model.TrendSnapshot{}
	}
	return out
}

// TrendsFor looks up several careers concurrently. Careers without data are
// omitted from the result. The error is non-nil only if ctx ends first.
func (s *Service) TrendsFor(ctx context.Context, careerIDs []string, language, regionID string) (map[string]model.TrendRecord, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]model.TrendRecord, len(careerIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	seen := make(map[string]struct{}, len(careerIDs))
	for _, id := range careerIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, ok := s.GetTrend(gctx, id, language, regionID)
			if !ok {
				return nil
			}
			mu.Lock()
			out[id] = rec
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetLanguage changes the active language and drops every cached entry.
func (s *Service) SetLanguage(ctx context.Context, language string) error {
	if language == "" {
		return ErrInvalidLanguage
	}

	s.mu.Lock()
	prev := s.language
	s.language = language
	s.mu.Unlock()

	cleared := s.clear()
	metrics.RecordLanguageChange()
	s.logger.Info(ctx, "active language changed",
		logger.String("from", prev),
		logger.String("to", language),
		logger.Int("cleared", cleared),
	)
	return nil
}

// Language returns the active language.
func (s *Service) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// DefaultLanguage returns the fallback language.
func (s *Service) DefaultLanguage() string { return s.defaultLanguage }

// ClearCache drops every cached entry, market boards included.
func (s *Service) ClearCache(ctx context.Context) {
	cleared := s.clear() + s.market.clear()
	s.logger.Info(ctx, "trend cache cleared", logger.Int("cleared", cleared))
}

// clear drops the language-dependent caches.
func (s *Service) clear() int {
	n := s.trends.Clear() + s.sectors.Clear()
	metrics.RecordCacheClear()
	metrics.UpdateCacheSize(s.market.len())
	return n
}

func (s *Service) cacheLen() int {
	return s.trends.Len() + s.sectors.Len() + s.market.len()
}

// CacheStats reports live cache entries across careers, industries and
// market boards.
func (s *Service) CacheStats() cache.Stats {
	keys := append(s.trends.Stats().Keys, s.sectors.Stats().Keys...)
	keys = append(keys, s.market.keys()...)
	sort.Strings(keys)
	return cache.Stats{Size: len(keys), Keys: keys}
}

// Regions lists the configured regions in table order.
func (s *Service) Regions() []region.Info {
	return s.regions.All()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.cacheLen()
	metrics.UpdateCacheSize(size)

	return map[string]interface{}{
		"started":          s.started,
		"language":         s.language,
		"defaultLanguage":  s.defaultLanguage,
		"cacheSize":        size,
		"cacheTTL":         s.cacheTTL.String(),
		"marketCacheTTL":   s.marketTTL.String(),
		"regions":          s.regions.Len(),
		"maxTrendingLimit": s.maxTrendingLimit,
		"batchConcurrency": s.batchConcurrency,
	}
}

func (s *Service) resolveLanguage(language string) string {
	if language != "" {
		return language
	}
	return s.Language()
}

func (s *Service) logFetchError(ctx context.Context, kind, id, lang string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	metrics.RecordErrorByComponent("store", kind)
	s.logger.Warn(ctx, "trend fetch failed",
		logger.String("kind", kind),
		logger.String("id", id),
		logger.String("language", lang),
		logger.Error(err),
	)
}

func trendKey(careerID, lang, regionID string) string {
	return careerID + "|" + lang + "|" + regionID
}
