package report

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/anrid/japan-population/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataset() stats.Dataset {
	return stats.Dataset{
		Prefectures: []stats.Prefecture{{Code: 13, Name: "東京都"}, {Code: 27, Name: "大阪府"}},
		Records: map[int]*stats.Record{
			13: {BoundaryYear: 2020, Data: []stats.Series{
				stats.NewSeries(stats.TotalPopulation, []stats.Point{{Year: 2020, Value: 14047594}, {Year: 2025, Value: 14100000}}),
				stats.NewSeries(stats.ElderlyPopulation, []stats.Point{{Year: 2020, Value: 3200000}}),
			}},
			27: {BoundaryYear: 2020, Data: []stats.Series{
				stats.NewSeries(stats.TotalPopulation, []stats.Point{{Year: 2020, Value: 8837685}}),
			}},
		},
	}
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "14,047,594", Number(14047594))
	assert.Equal(t, "0", Number(0))
}

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResult(&buf, stats.AnalysisResult{
		Kind:          stats.KindSelection,
		SelectedCodes: []int{27, 13},
		Title:         "関西地方の総人口多い順",
		Description:   "説明",
		Insights: []stats.DataInsight{
			{Prefecture: "大阪府", Value: 8837685, Unit: "人", Context: "2025年の総人口"},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "■ 関西地方の総人口多い順\n説明\n")
	assert.Contains(t, out, "選択: 大阪府、東京都")
	assert.Contains(t, out, "8,837,685人")
}

func TestWriteSeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSeries(&buf, dataset(), []int{13, 27}, stats.TotalPopulation))

	out := buf.String()
	assert.Contains(t, out, "東京都")
	assert.Contains(t, out, "14,100,000*")
	assert.Contains(t, out, "8,837,685")
	assert.Contains(t, out, "-")

	buf.Reset()
	require.NoError(t, WriteSeries(&buf, dataset(), []int{27}, stats.YouthPopulation))
	assert.Equal(t, "年少人口: データなし\n", buf.String())
}

func TestExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	res := &stats.AnalysisResult{Kind: stats.KindSelection, SelectedCodes: []int{13}, Title: "東京"}

	require.NoError(t, Export(path, dataset(), []int{13, 27, 13, 99}, res))

	wb, err := stats.LoadWorkbook(path)
	require.NoError(t, err)

	prefs, err := wb.Prefectures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []stats.Prefecture{{Code: 13, Name: "東京都"}, {Code: 27, Name: "大阪府"}}, prefs)

	tokyo, err := wb.Population(context.Background(), 13)
	require.NoError(t, err)
	assert.Equal(t, 2020, tokyo.BoundaryYear)
	v, ok := tokyo.Value(stats.ElderlyPopulation, 2020)
	assert.True(t, ok)
	assert.Equal(t, 3200000.0, v)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	title, err := f.GetCellValue(AnalysisSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "東京", title)
}
