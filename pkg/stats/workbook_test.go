package stats

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := xlsx.NewFile()
	f.SetSheetName("Sheet1", PopulationSheet)
	for i, row := range rows {
		for j, v := range row {
			cell, err := xlsx.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(PopulationSheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "population.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"県コード", "都道府県", "区分", "年", "人口", "境界年"},
		{27, "大阪府", "総人口", 2025, 9000000, 2020},
		{27, "大阪府", "総人口", 2020, 8800000, 2020},
		{27, "大阪府", "老年人口", 2025, "2,500,000", 2020},
		{28, "", "総人口", 2025, 5000000},
		{"注", "出典: 国立社会保障・人口問題研究所"},
		{29, "奈良県", "世帯数", 2025, 500000},
	})

	wb, err := LoadWorkbook(path)
	require.NoError(t, err)

	prefs, err := wb.Prefectures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Prefecture{{27, "大阪府"}, {28, "兵庫県"}}, prefs)

	osaka, err := wb.Population(context.Background(), 27)
	require.NoError(t, err)
	assert.Equal(t, 2020, osaka.BoundaryYear)
	assert.Equal(t, []Point{{2020, 8800000}, {2025, 9000000}}, osaka.Series(TotalPopulation).Points)

	v, ok := osaka.Value(ElderlyPopulation, 2025)
	assert.True(t, ok)
	assert.Equal(t, 2500000.0, v)

	_, err = wb.Population(context.Background(), 29)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadWorkbookWithoutRows(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{{"県コード", "都道府県"}})

	_, err := LoadWorkbook(path)
	assert.ErrorContains(t, err, "no population rows")
}
