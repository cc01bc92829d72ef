// Package report renders analysis results and population series for humans:
// aligned text for terminals and XLSX workbooks for spreadsheets.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/anrid/japan-population/pkg/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Japanese)

// Number formats v with Japanese digit grouping, e.g. 14,047,594.
func Number(v float64) string {
	return printer.Sprintf("%.f", v)
}

// WriteResult prints res as a title block followed by the selection and any
// insights.
func WriteResult(w io.Writer, res stats.AnalysisResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "■ %s\n", res.Title)
	if res.Description != "" {
		fmt.Fprintf(&b, "%s\n", res.Description)
	}

	if len(res.SelectedCodes) > 0 {
		names := make([]string, 0, len(res.SelectedCodes))
		for _, code := range res.SelectedCodes {
			names = append(names, stats.PrefectureName(code))
		}
		fmt.Fprintf(&b, "\n選択: %s\n", strings.Join(names, "、"))
	}

	if len(res.Insights) > 0 {
		b.WriteString("\n")
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		for i, in := range res.Insights {
			fmt.Fprintf(tw, "%d.\t%s\t%s%s\t%s\n", i+1, in.Prefecture, Number(in.Value), in.Unit, in.Context)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSeries prints one column per prefecture and one row per year for
// category c. Years past a record's boundary year are marked with *.
func WriteSeries(w io.Writer, data stats.Dataset, codes []int, c stats.Category) error {
	years := make(map[int]bool)
	var cols []int
	for _, code := range codes {
		s := data.Record(code).Series(c)
		if s == nil {
			continue
		}
		cols = append(cols, code)
		for _, p := range s.Points {
			years[p.Year] = true
		}
	}
	if len(cols) == 0 {
		_, err := fmt.Fprintf(w, "%s: %s\n", c.Label(), "データなし")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t", c.Label())
	for _, code := range cols {
		fmt.Fprintf(tw, "%s\t", stats.PrefectureName(code))
	}
	fmt.Fprintln(tw)

	for _, year := range sortedYears(years) {
		fmt.Fprintf(tw, "%s\t", fmt.Sprint(year))
		for _, code := range cols {
			rec := data.Record(code)
			v, ok := rec.Value(c, year)
			switch {
			case !ok:
				fmt.Fprint(tw, "-\t")
			case rec.BoundaryYear > 0 && year > rec.BoundaryYear:
				fmt.Fprintf(tw, "%s*\t", Number(v))
			default:
				fmt.Fprintf(tw, "%s\t", Number(v))
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
