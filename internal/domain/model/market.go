package model

import "time"

// Movement selects the rising or falling side of a market list.
type Movement string

const (
	MoveTrending  Movement = "trending"
	MoveDeclining Movement = "declining"
)

// Valid reports whether m is a known movement.
func (m Movement) Valid() bool {
	return m == MoveTrending || m == MoveDeclining
}

// TrendingSkill is one row of the skill demand board.
type TrendingSkill struct {
	ID          int64     `json:"id"`
	Skill       string    `json:"skill"`
	Demand      float64   `json:"demand"`
	Growth      float64   `json:"growth"`
	Salary      float64   `json:"salary,omitempty"`
	Category    string    `json:"category,omitempty"`
	IsTrending  bool      `json:"isTrending"`
	IsDeclining bool      `json:"isDeclining"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MarketIndustry is one row of the industry growth board. It is distinct
// from IndustryTrend, which aggregates career trends per industry.
type MarketIndustry struct {
	ID          int64     `json:"id"`
	Industry    string    `json:"industry"`
	Growth      float64   `json:"growth"`
	JobCount    int       `json:"jobCount"`
	AvgSalary   float64   `json:"avgSalary,omitempty"`
	Category    string    `json:"category,omitempty"`
	IsTrending  bool      `json:"isTrending"`
	IsDeclining bool      `json:"isDeclining"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EmergingRole is a new or fast-growing job title.
type EmergingRole struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Growth          float64   `json:"growth"`
	Skills          []string  `json:"skills"`
	Industry        string    `json:"industry,omitempty"`
	SalaryRange     string    `json:"salaryRange,omitempty"`
	ExperienceLevel string    `json:"experienceLevel,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Clone returns a copy of r that shares no slices with it.
func (r EmergingRole) Clone() EmergingRole {
	out := r
	out.Skills = cloneStrings(r.Skills)
	return out
}

// MarketSnapshot is the full market board. Fallback is set when the data
// is the built-in default rather than stored rows.
type MarketSnapshot struct {
	TrendingSkills      []TrendingSkill  `json:"trendingSkills"`
	DecliningSkills     []TrendingSkill  `json:"decliningSkills"`
	TrendingIndustries  []MarketIndustry `json:"trendingIndustries"`
	DecliningIndustries []MarketIndustry `json:"decliningIndustries"`
	EmergingRoles       []EmergingRole   `json:"emergingRoles"`
	Fallback            bool             `json:"fallback,omitempty"`
}

// Clone returns a deep copy of m.
func (m MarketSnapshot) Clone() MarketSnapshot {
	out := m
	out.TrendingSkills = CloneSkills(m.TrendingSkills)
	out.DecliningSkills = CloneSkills(m.DecliningSkills)
	out.TrendingIndustries = CloneIndustries(m.TrendingIndustries)
	out.DecliningIndustries = CloneIndustries(m.DecliningIndustries)
	out.EmergingRoles = CloneRoles(m.EmergingRoles)
	return out
}

// CloneSkills copies in; nil stays nil.
func CloneSkills(in []TrendingSkill) []TrendingSkill {
	if in == nil {
		return nil
	}
	return append(make([]TrendingSkill, 0, len(in)), in...)
}

// CloneIndustries copies in; nil stays nil.
func CloneIndustries(in []MarketIndustry) []MarketIndustry {
	if in == nil {
		return nil
	}
	return append(make([]MarketIndustry, 0, len(in)), in...)
}

// CloneRoles deep-copies in; nil stays nil.
func CloneRoles(in []EmergingRole) []EmergingRole {
	if in == nil {
		return nil
	}
	out := make([]EmergingRole, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// MarketUpdate is one entry of the market refresh log.
type MarketUpdate struct {
	ID                int64     `json:"id"`
	UpdateType        string    `json:"updateType"`
	SkillsUpdated     int       `json:"skillsUpdated"`
	IndustriesUpdated int       `json:"industriesUpdated"`
	RolesUpdated      int       `json:"rolesUpdated"`
	Notes             string    `json:"notes,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MarketStats counts the market board rows. LastUpdate is nil when the
// refresh log is empty.
type MarketStats struct {
	TotalSkills     int           `json:"totalSkills"`
	TotalIndustries int           `json:"totalIndustries"`
	TotalRoles      int           `json:"totalRoles"`
	LastUpdate      *MarketUpdate `json:"lastUpdate"`
}

// Summary is a loosely typed trend summary row keyed by column name.
type Summary map[string]any

// Clone returns a shallow copy of s.
func (s Summary) Clone() Summary {
	if s == nil {
		return nil
	}
	out := make(Summary, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
