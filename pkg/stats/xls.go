package stats

import (
	"bytes"
	"fmt"
	"strings"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/anrid/xls"
)

// ExtractDataFromFile calls handler for every row of the first sheet.
func ExtractDataFromFile(f *File, handler func(r []string)) error {
	if strings.HasSuffix(strings.ToLower(f.Path), ".xls") {
		return ExtractDataFromXLS(f, handler)
	}
	return ExtractDataFromXLSX(f, handler)
}

func ExtractDataFromXLS(f *File, handler func(r []string)) error {
	reader := bytes.NewReader(f.Content)
	wb, err := xls.OpenReader(reader, "utf-8")
	if err != nil {
		return fmt.Errorf("could not read XLS file '%s' (%s): %w", f.Title, f.Path, err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return fmt.Errorf("XLS file '%s' has no sheets", f.Title)
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		var cols []string
		for j := 0; j <= row.LastCol(); j++ {
			cols = append(cols, row.Col(j))
		}
		handler(cols)
	}
	return nil
}

func ExtractDataFromXLSX(f *File, handler func(r []string)) error {
	reader := bytes.NewReader(f.Content)
	wb, err := xlsx.OpenReader(reader)
	if err != nil {
		return fmt.Errorf("could not read XLSX file '%s' (%s): %w", f.Title, f.Path, err)
	}

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("XLSX file '%s' has no sheets", f.Title)
	}

	// Exports put the population table on a dedicated sheet; fall back to
	// the first one for hand-made workbooks.
	sheet := sheets[0]
	for _, s := range sheets {
		if s == PopulationSheet {
			sheet = s
			break
		}
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("could not get rows for sheet '%s': %w", sheet, err)
	}

	for _, r := range rows {
		handler(r)
	}
	return nil
}
