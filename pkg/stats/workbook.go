package stats

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PopulationSheet is the sheet name exports write the long-format table to.
const PopulationSheet = "Population"

// PopulationHeader is the header row of the long-format population table.
var PopulationHeader = []string{"県コード", "都道府県", "区分", "年", "人口", "境界年"}

// Workbook is an offline Provider backed by a population table loaded from
// an .xlsx or .xls file. Rows that do not parse (headers, notes, blank
// lines) are skipped.
type Workbook struct {
	prefectures []Prefecture
	records     map[int]*Record
}

func LoadWorkbook(path string) (*Workbook, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseWorkbook(f)
}

func ParseWorkbook(f *File) (*Workbook, error) {
	type key struct {
		code int
		cat  Category
	}

	names := make(map[int]string)
	boundary := make(map[int]int)
	points := make(map[key][]Point)

	err := ExtractDataFromFile(f, func(row []string) {
		if len(row) < 5 {
			return
		}
		code, err := strconv.Atoi(mustTrim(row[0]))
		if err != nil || !ValidCode(code) {
			return
		}
		cat, ok := ParseCategory(mustTrim(row[2]))
		if !ok {
			return
		}
		year, err := strconv.Atoi(mustTrim(row[3]))
		if err != nil {
			return
		}
		value, err := parseNumber(row[4])
		if err != nil {
			return
		}

		if name := mustTrim(row[1]); name != "" {
			names[code] = name
		} else if _, ok := names[code]; !ok {
			names[code] = PrefectureName(code)
		}
		if len(row) > 5 {
			if by, err := strconv.Atoi(mustTrim(row[5])); err == nil {
				boundary[code] = by
			}
		}

		k := key{code, cat}
		points[k] = append(points[k], Point{Year: year, Value: value})
	})
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook '%s' contains no population rows", f.Title)
	}

	wb := &Workbook{records: make(map[int]*Record)}
	for code, name := range names {
		wb.prefectures = append(wb.prefectures, Prefecture{Code: code, Name: name})

		rec := &Record{BoundaryYear: boundary[code]}
		for _, c := range Categories {
			if p, ok := points[key{code, c}]; ok {
				rec.Data = append(rec.Data, NewSeries(c, p))
			}
		}
		wb.records[code] = rec
	}
	sort.Slice(wb.prefectures, func(i, j int) bool {
		return wb.prefectures[i].Code < wb.prefectures[j].Code
	})

	return wb, nil
}

func (w *Workbook) Prefectures(ctx context.Context) ([]Prefecture, error) {
	return append([]Prefecture(nil), w.prefectures...), nil
}

func (w *Workbook) Population(ctx context.Context, code int) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := w.records[code]
	if !ok {
		return nil, fmt.Errorf("prefecture %d: %w", code, ErrNotFound)
	}
	return rec, nil
}

func mustTrim(v string) string {
	return strings.Trim(v, " \n\t\r")
}

func parseNumber(v string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(mustTrim(v), ",", ""), 64)
}
