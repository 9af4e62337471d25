package region

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/careeratlas/trends/internal/domain/industry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultTable(t *testing.T) {
	Convey("Given the embedded region table", t, func() {
		tbl := Default()

		Convey("Then it lists the six regions in order", func() {
			So(tbl.Len(), ShouldEqual, 6)
			So(tbl.All(), ShouldResemble, []Info{
				{ID: "north-america", Name: "North America"},
				{ID: "europe", Name: "Europe"},
				{ID: "asia-pacific", Name: "Asia Pacific"},
				{ID: "south-america", Name: "South America"},
				{ID: "africa", Name: "Africa"},
				{ID: "middle-east", Name: "Middle East"},
			})
			So(tbl.Baseline(), ShouldEqual, BaselineID)
		})

		Convey("Then every region lists at least five cities", func() {
			for _, info := range tbl.All() {
				f, ok := tbl.Lookup(info.ID)
				So(ok, ShouldBeTrue)
				So(len(f.TopCities), ShouldBeGreaterThanOrEqualTo, MinCities)
			}
		})

		Convey("Then the factors match the published values", func() {
			f, _ := tbl.Lookup("asia-pacific")
			So(f.TechGrowth, ShouldEqual, 1.4)
			So(f.RemoteWork, ShouldEqual, 0.9)
			So(f.SalaryMultiplier, ShouldEqual, 0.7)
			So(f.TopCities[0], ShouldEqual, "Tokyo")
		})

		Convey("Then unknown ids resolve to the baseline", func() {
			id, f := tbl.Resolve("mars")
			So(id, ShouldEqual, "north-america")
			So(f.Name, ShouldEqual, "North America")
			So(tbl.DisplayName("mars"), ShouldEqual, "North America")
			_, ok := tbl.Lookup("mars")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestGrowthMultiplier(t *testing.T) {
	Convey("Given europe factors", t, func() {
		f, _ := Default().Lookup("europe")

		So(f.GrowthMultiplier(industry.Tech), ShouldEqual, 1.1)
		So(f.GrowthMultiplier(industry.Healthcare), ShouldEqual, 1.0)
		So(f.GrowthMultiplier(industry.Manufacturing), ShouldEqual, 1.0)
		So(f.GrowthMultiplier(industry.General), ShouldAlmostEqual, (1.1+1.0+1.0)/3, 1e-9)
	})
}

func TestParseValidation(t *testing.T) {
	cities := "[a, b, c, d, e]"

	Convey("Given factor documents", t, func() {
		Convey("When the baseline is missing", func() {
			_, err := Parse([]byte(`
baseline: home
regions:
  - {id: away, name: Away, tech_growth: 1, healthcare_growth: 1, manufacturing_growth: 1, remote_work: 1, salary_multiplier: 1, top_cities: ` + cities + `}
`))
			So(errors.Is(err, ErrInvalidTable), ShouldBeTrue)
		})

		Convey("When a region has too few cities", func() {
			_, err := Parse([]byte(`
regions:
  - {id: north-america, name: NA, tech_growth: 1, healthcare_growth: 1, manufacturing_growth: 1, remote_work: 1, salary_multiplier: 1, top_cities: [a]}
`))
			So(errors.Is(err, ErrInvalidTable), ShouldBeTrue)
		})

		Convey("When the salary multiplier is above one", func() {
			_, err := Parse([]byte(`
regions:
  - {id: north-america, name: NA, tech_growth: 1, healthcare_growth: 1, manufacturing_growth: 1, remote_work: 1, salary_multiplier: 1.5, top_cities: ` + cities + `}
`))
			So(errors.Is(err, ErrInvalidTable), ShouldBeTrue)
		})

		Convey("When a factor is zero", func() {
			_, err := Parse([]byte(`
regions:
  - {id: north-america, name: NA, tech_growth: 0, healthcare_growth: 1, manufacturing_growth: 1, remote_work: 1, salary_multiplier: 1, top_cities: ` + cities + `}
`))
			So(errors.Is(err, ErrInvalidTable), ShouldBeTrue)
		})

		Convey("When a region is duplicated", func() {
			row := "  - {id: north-america, name: NA, tech_growth: 1, healthcare_growth: 1, manufacturing_growth: 1, remote_work: 1, salary_multiplier: 1, top_cities: " + cities + "}\n"
			_, err := Parse([]byte("regions:\n" + row + row))
			So(errors.Is(err, ErrInvalidTable), ShouldBeTrue)
		})

		Convey("When the YAML is malformed", func() {
			_, err := Parse([]byte("regions: [::"))
			So(errors.Is(err, ErrInvalidTable), ShouldBeTrue)
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given an override file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "regions.yaml")
		doc := `
baseline: home
regions:
  - {id: home, name: Home, tech_growth: 2, healthcare_growth: 1, manufacturing_growth: 1, remote_work: 1, salary_multiplier: 1, top_cities: [a, b, c, d, e, f]}
`
		So(os.WriteFile(path, []byte(doc), 0o600), ShouldBeNil)

		tbl, err := LoadFile(path)
		So(err, ShouldBeNil)
		So(tbl.Baseline(), ShouldEqual, "home")
		So(tbl.DisplayName("anything"), ShouldEqual, "Home")

		Convey("A missing file is an error", func() {
			_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
