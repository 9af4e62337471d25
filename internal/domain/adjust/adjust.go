// Package adjust scales a career trend record to a geographic region.
//
// Adjust is pure: the same record and region id always produce the same
// output, and the input record is never modified.
package adjust

import (
	"math"

	"github.com/careeratlas/trends/internal/domain/industry"
	"github.com/careeratlas/trends/internal/domain/model"
	"github.com/careeratlas/trends/internal/domain/region"
)

// Bounds for adjusted fields.
const (
	MinGrowthRate = -10.0
	MaxGrowthRate = 50.0
	MinScore      = 1.0
	MaxScore      = 10.0
	MinRemote     = 0.0
	MaxRemote     = 10.0

	// LocationCount is how many region cities replace topLocations.
	LocationCount = 5
)

// Adjuster applies regional factors from a table.
type Adjuster struct {
	table *region.Table
}

// New returns an Adjuster over table. A nil table uses the embedded default.
func New(table *region.Table) *Adjuster {
	if table == nil {
		table = region.Default()
	}
	return &Adjuster{table: table}
}

// Table returns the factor table in use.
func (a *Adjuster) Table() *region.Table { return a.table }

// Adjust returns rec scaled to regionID. Unknown regions use the baseline.
func (a *Adjuster) Adjust(rec model.TrendRecord, regionID string) model.TrendRecord {
	id, f := a.table.Resolve(regionID)
	class := industry.Resolve(rec.Industry, rec.CareerID)
	m := f.GrowthMultiplier(class)

	out := rec.Clone()
	out.Region = id
	out.GrowthRate = clamp(rec.GrowthRate*m, MinGrowthRate, MaxGrowthRate)
	out.RemoteWorkTrend = clamp(rec.RemoteWorkTrend*f.RemoteWork, MinRemote, MaxRemote)
	out.TopLocations = firstN(f.TopCities, LocationCount)

	out.MarketInsights = Rewrite(rec.MarketInsights, f.Name, Insights)
	out.FutureOutlook = Rewrite(rec.FutureOutlook, f.Name, Outlook)
	out.IndustryImpact = Rewrite(rec.IndustryImpact, f.Name, Impact)

	out.TrendScore = round2(clamp(rec.TrendScore*(0.8+(m-1)*0.5), MinScore, MaxScore))
	out.JobAvailabilityScore = round2(clamp(rec.JobAvailabilityScore*(0.9+(m-1)*0.3), MinScore, MaxScore))
	return out
}

// clamp bounds v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func firstN(in []string, n int) []string {
	if len(in) < n {
		n = len(in)
	}
	out := make([]string, n)
	copy(out, in[:n])
	return out
}
