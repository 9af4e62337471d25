package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/careeratlas/trends/internal/adapters/repository"
	service "github.com/careeratlas/trends/internal/app"
	"github.com/careeratlas/trends/internal/domain/industry"
	"github.com/careeratlas/trends/internal/domain/model"
	"github.com/careeratlas/trends/pkg/logger"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service over a seeded SQLite store", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := repository.NewSQLiteStore(ctx, repository.MemoryDSN)
		So(err, ShouldBeNil)

		base := record("software-engineer", "en")
		base.LastUpdated = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		So(store.UpsertCareerTrend(ctx, base), ShouldBeNil)

		nurse := record("rn", "en")
		nurse.MarketInsights = ""
		So(store.UpsertCareerTrend(ctx, nurse), ShouldBeNil)

		tagged := record("growth-hacker", "en")
		tagged.Industry = industry.Tech
		So(store.UpsertCareerTrend(ctx, tagged), ShouldBeNil)

		svc := service.New(
			service.WithStore(store),
			service.WithLogger(logger.Get().Named("service-test")),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a Japanese lookup has only English data", func() {
			got, ok := svc.GetTrend(ctx, "y-missing", "ja", "europe")
			So(ok, ShouldBeFalse)

			got, ok = svc.GetTrend(ctx, "software-engineer", "ja", "asia-pacific")

			Convey("Then the English record is adjusted to the region", func() {
				So(ok, ShouldBeTrue)
				So(got.LanguageCode, ShouldEqual, "en")
				So(got.GrowthRate, ShouldAlmostEqual, 14, 1e-9)
				So(got.RemoteWorkTrend, ShouldAlmostEqual, 4.5, 1e-9)
				So(got.TrendScore, ShouldEqual, 8.0)
				So(got.JobAvailabilityScore, ShouldEqual, 7.14)
				So(got.TopLocations, ShouldResemble, []string{"Tokyo", "Seoul", "Singapore", "Sydney", "Melbourne"})
			})
		})

		Convey("When a record has a NULL insight column", func() {
			got, ok := svc.GetTrend(ctx, "rn", "en", "europe")

			Convey("Then the placeholder is rewritten for the region", func() {
				So(ok, ShouldBeTrue)
				So(got.MarketInsights, ShouldEqual, model.NoMarketInsights+" - Regional trends in Europe show strong potential.")
			})
		})

		Convey("When a record carries an industry tag", func() {
			got, ok := svc.GetTrend(ctx, "growth-hacker", "en", "africa")

			Convey("Then the tagged class picks the multiplier", func() {
				So(ok, ShouldBeTrue)
				So(got.GrowthRate, ShouldAlmostEqual, 15, 1e-9)
			})
		})

		Convey("When many goroutines look up concurrently", func() {
			var wg sync.WaitGroup
			found := make([]bool, 32)
			for i := range found {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					regions := []string{"europe", "africa", "middle-east", "asia-pacific"}
					_, found[i] = svc.GetTrend(ctx, "software-engineer", "en", regions[i%len(regions)])
				}(i)
			}
			wg.Wait()

			Convey("Then every lookup succeeds and each region is cached once", func() {
				for i := range found {
					So(found[i], ShouldBeTrue)
				}
				So(svc.CacheStats().Size, ShouldEqual, 4)
			})
		})

		Convey("When the market boards are read from the store", func() {
			_, err := store.InsertSkill(ctx, model.TrendingSkill{Skill: "Go", Demand: 70, Growth: 10, IsTrending: true})
			So(err, ShouldBeNil)
			_, err = store.InsertSkill(ctx, model.TrendingSkill{Skill: "Rust", Demand: 75, Growth: 14, IsTrending: true})
			So(err, ShouldBeNil)

			snap := svc.MarketTrends(ctx)

			Convey("Then stored rows replace the fallback board", func() {
				So(snap.Fallback, ShouldBeFalse)
				So(snap.TrendingSkills, ShouldHaveLength, 2)
				So(snap.TrendingSkills[0].Skill, ShouldEqual, "Rust")
				So(snap.EmergingRoles, ShouldBeEmpty)
				So(svc.TrendCareerIDs(ctx), ShouldResemble, []string{"growth-hacker", "rn", "software-engineer"})

				sum, ok := svc.CareerSummary(ctx, "senior-dev")
				So(ok, ShouldBeTrue)
				So(sum["career_id"], ShouldEqual, "software-engineer")
			})
		})

		Convey("When a batch is requested", func() {
			ids := make([]string, 0, 12)
			for i := 0; i < 10; i++ {
				ids = append(ids, fmt.Sprintf("missing-%d", i))
			}
			ids = append(ids, "software-engineer", "rn")

			got, err := svc.TrendsFor(ctx, ids, "en", "south-america")

			Convey("Then only careers with data are returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got["rn"].TopLocations[0], ShouldEqual, "São Paulo")
			})
		})
	})
}
