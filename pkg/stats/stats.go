package stats

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Category is one of the four population series published per prefecture.
type Category int

const (
	TotalPopulation Category = iota
	YouthPopulation
	WorkingAgePopulation
	ElderlyPopulation
)

// Categories lists every category in display order.
var Categories = []Category{
	TotalPopulation,
	YouthPopulation,
	WorkingAgePopulation,
	ElderlyPopulation,
}

var categoryLabels = map[Category]string{
	TotalPopulation:      "総人口",
	YouthPopulation:      "年少人口",
	WorkingAgePopulation: "生産年齢人口",
	ElderlyPopulation:    "老年人口",
}

// Label returns the label used by the upstream API for the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) String() string { return c.Label() }

// ParseCategory maps an upstream label back to its category.
func ParseCategory(label string) (Category, bool) {
	for c, l := range categoryLabels {
		if l == label {
			return c, true
		}
	}
	return 0, false
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Label())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, ok := ParseCategory(label)
	if !ok {
		return fmt.Errorf("unknown population category %q", label)
	}
	*c = parsed
	return nil
}

type Prefecture struct {
	Code int    `json:"prefCode"`
	Name string `json:"prefName"`
}

type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

type Series struct {
	Category Category `json:"label"`
	Points   []Point  `json:"data"`
}

// At returns the value recorded for year.
func (s *Series) At(year int) (float64, bool) {
	if s == nil {
		return 0, false
	}
	for _, p := range s.Points {
		if p.Year == year {
			return p.Value, true
		}
	}
	return 0, false
}

// Record holds every population series for a single prefecture.
// BoundaryYear separates observed values from projections.
type Record struct {
	BoundaryYear int      `json:"boundaryYear"`
	Data         []Series `json:"data"`
}

// Series returns the series for c, or nil if the record does not carry it.
func (r *Record) Series(c Category) *Series {
	if r == nil {
		return nil
	}
	for i := range r.Data {
		if r.Data[i].Category == c {
			return &r.Data[i]
		}
	}
	return nil
}

// Value is shorthand for r.Series(c).At(year).
func (r *Record) Value(c Category, year int) (float64, bool) {
	return r.Series(c).At(year)
}

// UnmarshalJSON keeps the first series seen per category, drops series with
// labels it does not know, and orders points by year.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		BoundaryYear int `json:"boundaryYear"`
		Data         []struct {
			Label string  `json:"label"`
			Data  []Point `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.BoundaryYear = raw.BoundaryYear
	r.Data = nil

	seen := make(map[Category]bool)
	for _, s := range raw.Data {
		c, ok := ParseCategory(s.Label)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		r.Data = append(r.Data, NewSeries(c, s.Data))
	}
	return nil
}

// NewSeries builds a series with points sorted by year and negative values dropped.
func NewSeries(c Category, points []Point) Series {
	kept := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Value < 0 {
			continue
		}
		kept = append(kept, p)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Year < kept[j].Year
	})
	return Series{Category: c, Points: kept}
}

// Dataset is the read-only view analysis runs against.
type Dataset struct {
	Prefectures []Prefecture
	Records     map[int]*Record
}

// Record returns the cached record for code, if any.
func (d Dataset) Record(code int) *Record {
	if d.Records == nil {
		return nil
	}
	return d.Records[code]
}
