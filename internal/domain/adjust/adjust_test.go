package adjust

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/careeratlas/trends/internal/domain/industry"
	"github.com/careeratlas/trends/internal/domain/model"
	"github.com/careeratlas/trends/internal/domain/region"
)

func sampleRecord(careerID string) model.TrendRecord {
	return model.TrendRecord{
		CareerID:             careerID,
		TrendScore:           8.0,
		TrendDirection:       model.Rising,
		DemandLevel:          model.DemandHigh,
		GrowthRate:           10,
		JobAvailabilityScore: 7,
		RemoteWorkTrend:      5,
		AutomationRisk:       3,
		MarketInsights:       "Strong growth potential for engineers",
		FutureOutlook:        "A positive outlook overall",
		IndustryImpact:       "Shaped by industry trends",
		SalaryTrend:          "Salaries rising",
		KeySkillsTrending:    []string{"go", "kubernetes"},
		TopLocations:         []string{"Nowhere"},
		ConfidenceScore:      0.9,
		LastUpdated:          time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		LanguageCode:         "en",
	}
}

func TestAdjustExample(t *testing.T) {
	Convey("Given a software engineer record in asia-pacific", t, func() {
		a := New(nil)
		out := a.Adjust(sampleRecord("software-engineer"), "asia-pacific")

		Convey("Then numeric fields follow the tech multiplier", func() {
			So(out.GrowthRate, ShouldAlmostEqual, 14, 1e-9)
			So(out.RemoteWorkTrend, ShouldAlmostEqual, 4.5, 1e-9)
			So(out.TrendScore, ShouldEqual, 8.0)
			So(out.JobAvailabilityScore, ShouldEqual, 7.14)
		})

		Convey("Then locations come from the region", func() {
			So(out.TopLocations, ShouldResemble, []string{"Tokyo", "Seoul", "Singapore", "Sydney", "Melbourne"})
			So(out.Region, ShouldEqual, "asia-pacific")
		})

		Convey("Then narrative text names the region", func() {
			So(out.MarketInsights, ShouldEqual, "Strong growth potential in Asia Pacific for engineers")
			So(out.FutureOutlook, ShouldEqual, "A positive outlook in Asia Pacific overall")
			So(out.IndustryImpact, ShouldEqual, "Shaped by industry trends in Asia Pacific")
		})

		Convey("Then untouched fields are copied", func() {
			So(out.AutomationRisk, ShouldEqual, 3)
			So(out.SalaryTrend, ShouldEqual, "Salaries rising")
			So(out.KeySkillsTrending, ShouldResemble, []string{"go", "kubernetes"})
			So(out.TrendDirection, ShouldEqual, model.Rising)
		})
	})
}

func TestAdjustDeterministic(t *testing.T) {
	Convey("Given any record and region", t, func() {
		a := New(nil)
		ids := []string{"software-engineer", "rn", "plant-manager", "barista"}

		for _, info := range a.Table().All() {
			for _, id := range ids {
				rec := sampleRecord(id)
				first := a.Adjust(rec, info.ID)
				second := a.Adjust(rec, info.ID)
				So(cmp.Diff(first, second), ShouldBeEmpty)
			}
		}
	})

	Convey("The input record is not modified", t, func() {
		rec := sampleRecord("software-engineer")
		before := rec.Clone()
		out := New(nil).Adjust(rec, "europe")
		out.KeySkillsTrending[0] = "mutated"

		So(cmp.Diff(before, rec), ShouldBeEmpty)
	})
}

func TestAdjustClamping(t *testing.T) {
	Convey("Given extreme inputs", t, func() {
		a := New(nil)
		extremes := []model.TrendRecord{
			{CareerID: "software-engineer", TrendScore: 1000, GrowthRate: 1e6, JobAvailabilityScore: 1000, RemoteWorkTrend: 1e6},
			{CareerID: "rn", TrendScore: -1000, GrowthRate: -1e6, JobAvailabilityScore: -5, RemoteWorkTrend: -1e6},
			{CareerID: "other", TrendScore: 0, GrowthRate: 0, JobAvailabilityScore: 0, RemoteWorkTrend: 0},
			{CareerID: "plant-manager", TrendScore: 10, GrowthRate: 49, JobAvailabilityScore: 10, RemoteWorkTrend: 10},
		}

		for _, info := range a.Table().All() {
			for _, rec := range extremes {
				out := a.Adjust(rec, info.ID)
				So(out.TrendScore, ShouldBeBetweenOrEqual, MinScore, MaxScore)
				So(out.JobAvailabilityScore, ShouldBeBetweenOrEqual, MinScore, MaxScore)
				So(out.RemoteWorkTrend, ShouldBeBetweenOrEqual, MinRemote, MaxRemote)
				So(out.GrowthRate, ShouldBeBetweenOrEqual, MinGrowthRate, MaxGrowthRate)
			}
		}
	})

	Convey("Given a table with huge multipliers", t, func() {
		tbl, err := region.New("big", []region.Factors{{
			ID: "big", Name: "Big", TechGrowth: 100, HealthcareGrowth: 100, ManufacturingGrowth: 100,
			RemoteWork: 100, SalaryMultiplier: 1, TopCities: []string{"a", "b", "c", "d", "e"},
		}})
		So(err, ShouldBeNil)

		out := New(tbl).Adjust(sampleRecord("software-engineer"), "big")
		So(out.TrendScore, ShouldEqual, MaxScore)
		So(out.JobAvailabilityScore, ShouldEqual, MaxScore)
		So(out.RemoteWorkTrend, ShouldEqual, MaxRemote)
		So(out.GrowthRate, ShouldEqual, MaxGrowthRate)
	})

	Convey("Given a record with NaN numeric fields", t, func() {
		nan := math.NaN()
		rec := sampleRecord("software-engineer")
		rec.TrendScore = nan
		rec.GrowthRate = nan
		rec.JobAvailabilityScore = nan
		rec.RemoteWorkTrend = nan

		out := New(nil).Adjust(rec, "north-america")

		Convey("Then every bounded field falls back to its lower bound", func() {
			So(out.TrendScore, ShouldEqual, MinScore)
			So(out.JobAvailabilityScore, ShouldEqual, MinScore)
			So(out.RemoteWorkTrend, ShouldEqual, MinRemote)
			So(out.GrowthRate, ShouldEqual, MinGrowthRate)
		})
	})
}

func TestAdjustUnknownRegion(t *testing.T) {
	Convey("Given an unknown region id", t, func() {
		a := New(nil)
		rec := sampleRecord("data-scientist")

		got := a.Adjust(rec, "nonexistent-region")
		want := a.Adjust(rec, region.BaselineID)

		So(cmp.Diff(want, got), ShouldBeEmpty)
		So(got.Region, ShouldEqual, region.BaselineID)
	})
}

func TestAdjustTopLocations(t *testing.T) {
	Convey("Given every region", t, func() {
		a := New(nil)
		for _, info := range a.Table().All() {
			f, _ := a.Table().Lookup(info.ID)
			for _, locs := range [][]string{nil, {}, {"x"}, {"1", "2", "3", "4", "5", "6", "7"}} {
				rec := sampleRecord("barista")
				rec.TopLocations = locs
				out := a.Adjust(rec, info.ID)
				So(out.TopLocations, ShouldHaveLength, LocationCount)
				So(out.TopLocations, ShouldResemble, f.TopCities[:LocationCount])
			}
		}
	})
}

func TestAdjustIndustryTag(t *testing.T) {
	Convey("Given a record with an explicit industry tag", t, func() {
		a := New(nil)
		rec := sampleRecord("software-engineer")
		rec.Industry = industry.Manufacturing

		out := a.Adjust(rec, "asia-pacific")

		Convey("Then the tag decides the multiplier", func() {
			So(out.GrowthRate, ShouldAlmostEqual, 13, 1e-9)
		})
	})

	Convey("Given a general career the mean multiplier applies", t, func() {
		out := New(nil).Adjust(sampleRecord("barista"), "europe")
		So(out.GrowthRate, ShouldAlmostEqual, 10*(1.1+1.0+1.0)/3, 1e-9)
		So(math.IsNaN(out.TrendScore), ShouldBeFalse)
	})
}

func TestRewrite(t *testing.T) {
	Convey("Given narrative text", t, func() {
		Convey("Insights rules apply in order", func() {
			So(Rewrite("growth potential and growth potential", "Europe", Insights),
				ShouldEqual, "growth potential in Europe and growth potential")
			So(Rewrite("increasing demand here", "Europe", Insights),
				ShouldEqual, "increasing demand across Europe here")
			So(Rewrite("growth potential and increasing demand", "Europe", Insights),
				ShouldEqual, "growth potential in Europe and increasing demand")
			So(Rewrite("Quiet market", "Europe", Insights),
				ShouldEqual, "Quiet market - Regional trends in Europe show strong potential.")
		})

		Convey("Outlook rules apply in order", func() {
			So(Rewrite("strong future prospects", "Africa", Outlook),
				ShouldEqual, "strong future prospects across Africa")
			So(Rewrite("Unclear", "Africa", Outlook),
				ShouldEqual, "Unclear - Africa market shows promising growth opportunities.")
		})

		Convey("Impact has one rule and a fallback", func() {
			So(Rewrite("follows industry trends", "Middle East", Impact),
				ShouldEqual, "follows industry trends in Middle East")
			So(Rewrite("", "Middle East", Impact),
				ShouldEqual, " - Middle East regional market dynamics.")
		})

		Convey("Matching is case sensitive", func() {
			So(Rewrite("Growth Potential", "Europe", Insights), ShouldStartWith, "Growth Potential - Regional trends")
		})

		Convey("Braces in the input are left alone", func() {
			So(Rewrite("{region}", "Europe", Impact), ShouldEqual, "{region} - Europe regional market dynamics.")
		})

		Convey("Output always names the region", func() {
			for _, k := range []TextKind{Insights, Outlook, Impact} {
				for _, in := range []string{"", "growth potential", "positive outlook", "industry trends", "x"} {
					So(strings.Contains(Rewrite(in, "South America", k), "South America"), ShouldBeTrue)
				}
			}
		})
	})

	Convey("TextKind names", t, func() {
		So(Insights.String(), ShouldEqual, "insights")
		So(Impact.String(), ShouldEqual, "impact")
		So(TextKind(9).String(), ShouldEqual, "unknown")
	})
}
