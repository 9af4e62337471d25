// Package model contains domain models passed between layers.
package model

import (
	"math"
	"time"

	"github.com/careeratlas/trends/internal/domain/industry"
)

// Direction is the qualitative movement of a career trend.
type Direction string

const (
	Rising    Direction = "rising"
	Stable    Direction = "stable"
	Declining Direction = "declining"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	switch d {
	case Rising, Stable, Declining:
		return true
	}
	return false
}

// Demand is the qualitative labour demand for a career.
type Demand string

const (
	DemandHigh   Demand = "high"
	DemandMedium Demand = "medium"
	DemandLow    Demand = "low"
)

// Valid reports whether d is one of the known demand levels.
func (d Demand) Valid() bool {
	switch d {
	case DemandHigh, DemandMedium, DemandLow:
		return true
	}
	return false
}

// Placeholder text used when a stored text column is NULL.
const (
	NoMarketInsights = "No market insights available"
	NoSalaryTrend    = "No salary trend data available"
	NoIndustryImpact = "No industry impact data available"
	NoFutureOutlook  = "No future outlook data available"
)

// TrendRecord is the labour-market snapshot for one career in one language.
// Bounded fields: TrendScore and JobAvailabilityScore in [1,10],
// RemoteWorkTrend and AutomationRisk in [0,10], GrowthRate in [-10,50].
type TrendRecord struct {
	CareerID             string         `json:"careerId"`
	TrendScore           float64        `json:"trendScore"`
	TrendDirection       Direction      `json:"trendDirection"`
	DemandLevel          Demand         `json:"demandLevel"`
	GrowthRate           float64        `json:"growthRate"`
	JobAvailabilityScore float64        `json:"jobAvailabilityScore"`
	RemoteWorkTrend      float64        `json:"remoteWorkTrend"`
	AutomationRisk       float64        `json:"automationRisk"`
	MarketInsights       string         `json:"marketInsights"`
	FutureOutlook        string         `json:"futureOutlook"`
	IndustryImpact       string         `json:"industryImpact"`
	SalaryTrend          string         `json:"salaryTrend"`
	KeySkillsTrending    []string       `json:"keySkillsTrending"`
	TopLocations         []string       `json:"topLocations"`
	ConfidenceScore      float64        `json:"confidenceScore"`
	LastUpdated          time.Time      `json:"lastUpdated"`
	LanguageCode         string         `json:"languageCode,omitempty"`
	Industry             industry.Class `json:"industry,omitempty"`
	Region               string         `json:"region,omitempty"`
}

// Clone returns a copy of r that shares no slices with it.
func (r TrendRecord) Clone() TrendRecord {
	out := r
	out.KeySkillsTrending = cloneStrings(r.KeySkillsTrending)
	out.TopLocations = cloneStrings(r.TopLocations)
	return out
}

// Finite reports whether every numeric field of r is a finite number.
func (r TrendRecord) Finite() bool {
	for _, v := range []float64{
		r.TrendScore, r.GrowthRate, r.JobAvailabilityScore,
		r.RemoteWorkTrend, r.AutomationRisk, r.ConfidenceScore,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FillPlaceholders replaces empty text fields with the fixed placeholders
// and turns nil slices into empty ones.
func (r *TrendRecord) FillPlaceholders() {
	if r.MarketInsights == "" {
		r.MarketInsights = NoMarketInsights
	}
	if r.SalaryTrend == "" {
		r.SalaryTrend = NoSalaryTrend
	}
	if r.IndustryImpact == "" {
		r.IndustryImpact = NoIndustryImpact
	}
	if r.FutureOutlook == "" {
		r.FutureOutlook = NoFutureOutlook
	}
	if r.KeySkillsTrending == nil {
		r.KeySkillsTrending = []string{}
	}
	if r.TopLocations == nil {
		r.TopLocations = []string{}
	}
}

// IndustryTrend aggregates the trend state of one industry.
type IndustryTrend struct {
	Industry           string    `json:"industry"`
	AvgTrendScore      float64   `json:"avgTrendScore"`
	TotalCareers       int       `json:"totalCareers"`
	RisingCareers      int       `json:"risingCareers"`
	StableCareers      int       `json:"stableCareers"`
	DecliningCareers   int       `json:"decliningCareers"`
	TopTrendingCareers []string  `json:"topTrendingCareers"`
	EmergingSkills     []string  `json:"emergingSkills"`
	LastUpdated        time.Time `json:"lastUpdated"`
	LanguageCode       string    `json:"languageCode,omitempty"`
}

// Clone returns a copy of t that shares no slices with it.
func (t IndustryTrend) Clone() IndustryTrend {
	out := t
	out.TopTrendingCareers = cloneStrings(t.TopTrendingCareers)
	out.EmergingSkills = cloneStrings(t.EmergingSkills)
	return out
}

// TrendingCareer is one row of the trending list.
type TrendingCareer struct {
	CareerID       string    `json:"careerId"`
	Title          string    `json:"title"`
	Industry       string    `json:"industry"`
	TrendScore     float64   `json:"trendScore"`
	TrendDirection Direction `json:"trendDirection"`
	DemandLevel    Demand    `json:"demandLevel"`
	GrowthRate     float64   `json:"growthRate"`
	MarketInsights string    `json:"marketInsights"`
}

// TrendSnapshot is a monthly history entry for a career.
type TrendSnapshot struct {
	MonthYear string      `json:"monthYear"`
	TrendData TrendRecord `json:"trendData"`
	CreatedAt time.Time   `json:"createdAt"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
