package report

import (
	"fmt"
	"sort"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/anrid/japan-population/pkg/stats"
)

// AnalysisSheet holds the analysis summary in exported workbooks.
const AnalysisSheet = "Analysis"

// Export writes a workbook with the population records of codes in the long
// format stats.LoadWorkbook reads, plus an analysis sheet when res is set.
func Export(path string, data stats.Dataset, codes []int, res *stats.AnalysisResult) error {
	f := xlsx.NewFile()
	f.SetSheetName("Sheet1", stats.PopulationSheet)

	if err := writePopulation(f, data, codes); err != nil {
		return err
	}
	if res != nil {
		f.NewSheet(AnalysisSheet)
		if err := writeAnalysis(f, *res); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writePopulation(f *xlsx.File, data stats.Dataset, codes []int) error {
	row := 1
	put := func(values ...interface{}) error {
		cell, err := xlsx.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(stats.PopulationSheet, cell, &values)
	}

	header := make([]interface{}, len(stats.PopulationHeader))
	for i, h := range stats.PopulationHeader {
		header[i] = h
	}
	if err := put(header...); err != nil {
		return err
	}

	for _, code := range stats.NormalizeCodes(codes) {
		rec := data.Record(code)
		if rec == nil {
			continue
		}
		name := prefectureName(data, code)
		for _, c := range stats.Categories {
			s := rec.Series(c)
			if s == nil {
				continue
			}
			for _, p := range s.Points {
				if err := put(code, name, c.Label(), p.Year, p.Value, rec.BoundaryYear); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func writeAnalysis(f *xlsx.File, res stats.AnalysisResult) error {
	rows := [][]interface{}{
		{"タイトル", res.Title},
		{"説明", res.Description},
		{"種類", string(res.Kind)},
		{},
		{"県コード", "都道府県"},
	}
	for _, code := range res.SelectedCodes {
		rows = append(rows, []interface{}{code, stats.PrefectureName(code)})
	}
	if len(res.Insights) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"都道府県", "値", "単位", "補足"})
		for _, in := range res.Insights {
			rows = append(rows, []interface{}{in.Prefecture, in.Value, in.Unit, in.Context})
		}
	}

	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, err := xlsx.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := r
		if err := f.SetSheetRow(AnalysisSheet, cell, &r); err != nil {
			return err
		}
	}
	return nil
}

func prefectureName(data stats.Dataset, code int) string {
	for _, p := range data.Prefectures {
		if p.Code == code {
			return p.Name
		}
	}
	return stats.PrefectureName(code)
}

func sortedYears(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for y := range set {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
