// Package region holds the immutable table of regional adjustment factors.
//
// The default table is embedded at build time; an override file with the
// same layout may replace it at start-up. A Table is never mutated after
// construction and is safe for concurrent use.
package region

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/careeratlas/trends/internal/domain/industry"
)

// BaselineID is the region used when a caller names an unknown region.
const BaselineID = "north-america"

// MinCities is the minimum number of cities a region must list.
const MinCities = 5

// ErrInvalidTable is returned when a factor document fails validation.
var ErrInvalidTable = errors.New("invalid region table")

//go:embed regions.yaml
var defaultDocument []byte

// Factors are the multipliers and cities for one region.
type Factors struct {
	ID                  string   `yaml:"id" json:"id"`
	Name                string   `yaml:"name" json:"name"`
	TechGrowth          float64  `yaml:"tech_growth" json:"techGrowth"`
	HealthcareGrowth    float64  `yaml:"healthcare_growth" json:"healthcareGrowth"`
	ManufacturingGrowth float64  `yaml:"manufacturing_growth" json:"manufacturingGrowth"`
	RemoteWork          float64  `yaml:"remote_work" json:"remoteWork"`
	SalaryMultiplier    float64  `yaml:"salary_multiplier" json:"salaryMultiplier"`
	TopCities           []string `yaml:"top_cities" json:"topCities"`
}

// GrowthMultiplier selects the growth factor for an industry class. General
// careers use the mean of the three sector factors.
func (f Factors) GrowthMultiplier(c industry.Class) float64 {
	switch c {
	case industry.Tech:
		return f.TechGrowth
	case industry.Healthcare:
		return f.HealthcareGrowth
	case industry.Manufacturing:
		return f.ManufacturingGrowth
	default:
		return (f.TechGrowth + f.HealthcareGrowth + f.ManufacturingGrowth) / 3
	}
}

// Info is the id/name pair listed to callers.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type document struct {
	Baseline string    `yaml:"baseline"`
	Regions  []Factors `yaml:"regions"`
}

// Table is an ordered, read-only set of regions.
type Table struct {
	baseline string
	order    []string
	byID     map[string]Factors
}

// Default returns the embedded table. It panics only if the embedded
// document is broken, which the package tests guard against.
func Default() *Table {
	t, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("region: embedded table: %v", err))
	}
	return t
}

// LoadFile reads and validates a factor document from disk.
func LoadFile(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a YAML factor document.
func Parse(b []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	if doc.Baseline == "" {
		doc.Baseline = BaselineID
	}
	return New(doc.Baseline, doc.Regions)
}

// New builds a table from regions in the given order.
func New(baseline string, regions []Factors) (*Table, error) {
	t := &Table{
		baseline: baseline,
		order:    make([]string, 0, len(regions)),
		byID:     make(map[string]Factors, len(regions)),
	}
	for _, f := range regions {
		if err := validate(f); err != nil {
			return nil, err
		}
		if _, dup := t.byID[f.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate region %q", ErrInvalidTable, f.ID)
		}
		f.TopCities = append([]string(nil), f.TopCities...)
		t.byID[f.ID] = f
		t.order = append(t.order, f.ID)
	}
	if _, ok := t.byID[baseline]; !ok {
		return nil, fmt.Errorf("%w: baseline region %q missing", ErrInvalidTable, baseline)
	}
	return t, nil
}

func validate(f Factors) error {
	switch {
	case f.ID == "":
		return fmt.Errorf("%w: region without id", ErrInvalidTable)
	case f.Name == "":
		return fmt.Errorf("%w: region %q has no name", ErrInvalidTable, f.ID)
	case f.TechGrowth <= 0, f.HealthcareGrowth <= 0, f.ManufacturingGrowth <= 0, f.RemoteWork <= 0:
		return fmt.Errorf("%w: region %q has a non-positive factor", ErrInvalidTable, f.ID)
	case f.SalaryMultiplier <= 0 || f.SalaryMultiplier > 1:
		return fmt.Errorf("%w: region %q salary_multiplier must be in (0,1]", ErrInvalidTable, f.ID)
	case len(f.TopCities) < MinCities:
		return fmt.Errorf("%w: region %q lists %d cities, need %d", ErrInvalidTable, f.ID, len(f.TopCities), MinCities)
	}
	return nil
}

// Lookup returns the factors for id.
func (t *Table) Lookup(id string) (Factors, bool) {
	f, ok := t.byID[id]
	if !ok {
		return Factors{}, false
	}
	return f, true
}

// Resolve returns the region id and factors for id, substituting the
// baseline when id is unknown.
func (t *Table) Resolve(id string) (string, Factors) {
	if f, ok := t.byID[id]; ok {
		return id, f
	}
	return t.baseline, t.byID[t.baseline]
}

// Baseline returns the id of the fallback region.
func (t *Table) Baseline() string { return t.baseline }

// DisplayName returns the human name for id, or the baseline's name.
func (t *Table) DisplayName(id string) string {
	_, f := t.Resolve(id)
	return f.Name
}

// All lists regions in document order.
func (t *Table) All() []Info {
	out := make([]Info, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, Info{ID: id, Name: t.byID[id].Name})
	}
	return out
}

// Len returns the number of regions.
func (t *Table) Len() int { return len(t.order) }
