// Package analyzer ranks prefectures from cached population records.
//
// Every function is pure: it reads the dataset it is given and never triggers
// fetches, so callers must warm the cache first. Ties are broken by
// prefecture code so the same dataset always yields the same result.
package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anrid/japan-population/pkg/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	BaseYear       = 2020
	ProjectionYear = 2045
	LatestYear     = 2025

	DefaultTopN = 5
)

type Analyzer struct {
	data stats.Dataset
	p    *message.Printer
}

func New(data stats.Dataset) *Analyzer {
	return &Analyzer{
		data: data,
		p:    message.NewPrinter(language.Japanese),
	}
}

// number formats v with digit grouping, e.g. 9,000,000.
func (a *Analyzer) number(v float64) string {
	return a.p.Sprintf("%.f", v)
}

type ranked struct {
	pref  stats.Prefecture
	value float64
	extra float64
}

func sortRanked(rs []ranked, desc bool) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].value != rs[j].value {
			if desc {
				return rs[i].value > rs[j].value
			}
			return rs[i].value < rs[j].value
		}
		return rs[i].pref.Code < rs[j].pref.Code
	})
}

func top(rs []ranked, n int) []ranked {
	if n <= 0 {
		n = DefaultTopN
	}
	if n > len(rs) {
		n = len(rs)
	}
	return rs[:n]
}

func codes(rs []ranked) []int {
	out := make([]int, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.pref.Code)
	}
	return stats.NormalizeCodes(out)
}

// declineRates computes (v2020 - v2045) / v2020 * 100 per prefecture for c,
// keeping only shrinking prefectures.
func (a *Analyzer) declineRates(c stats.Category) []ranked {
	var out []ranked
	for _, pref := range a.data.Prefectures {
		rec := a.data.Record(pref.Code)
		from, ok := rec.Value(c, BaseYear)
		if !ok || from == 0 {
			continue
		}
		to, ok := rec.Value(c, ProjectionYear)
		if !ok {
			continue
		}
		rate := (from - to) / from * 100
		if rate > 0 {
			out = append(out, ranked{pref: pref, value: rate})
		}
	}
	sortRanked(out, true)
	return out
}

// DecliningPopulations selects the prefectures whose total population is
// projected to shrink the most between 2020 and 2045.
func (a *Analyzer) DecliningPopulations(topN int) stats.AnalysisResult {
	rs := top(a.declineRates(stats.TotalPopulation), topN)

	res := stats.AnalysisResult{
		Kind:          stats.KindSelection,
		SelectedCodes: codes(rs),
		Title:         "人口減少が激しい地域",
		Insights:      make([]stats.DataInsight, 0, len(rs)),
	}
	for _, r := range rs {
		res.Insights = append(res.Insights, stats.DataInsight{
			Prefecture: r.pref.Name,
			Value:      r.value,
			Unit:       "%",
			Context:    fmt.Sprintf("%d年から%d年で%.1f%%の人口減少が予測されています", BaseYear, ProjectionYear, r.value),
		})
	}
	if len(rs) > 0 {
		res.Description = fmt.Sprintf("分析の結果、%sが最も深刻な人口減少（%.1f%%減）を示しています。地方都市では若年層の都市部流出と少子化の影響が顕著に表れています。",
			rs[0].pref.Name, rs[0].value)
	} else {
		res.Description = noDataDescription
	}
	return res
}

// AgingSociety ranks prefectures by the gap between their 2025 aging rate
// and youth rate.
func (a *Analyzer) AgingSociety(topN int) stats.AnalysisResult {
	var rs []ranked
	for _, pref := range a.data.Prefectures {
		rec := a.data.Record(pref.Code)
		total, ok1 := rec.Value(stats.TotalPopulation, LatestYear)
		elderly, ok2 := rec.Value(stats.ElderlyPopulation, LatestYear)
		youth, ok3 := rec.Value(stats.YouthPopulation, LatestYear)
		if !ok1 || !ok2 || !ok3 || total == 0 {
			continue
		}
		agingRate := elderly / total * 100
		youthRate := youth / total * 100
		rs = append(rs, ranked{pref: pref, value: agingRate - youthRate, extra: youthRate})
	}
	sortRanked(rs, true)
	rs = top(rs, topN)

	res := stats.AnalysisResult{
		Kind:          stats.KindSelection,
		SelectedCodes: codes(rs),
		Title:         "少子高齢化が深刻な地域",
		Insights:      make([]stats.DataInsight, 0, len(rs)),
	}
	for _, r := range rs {
		agingRate := r.value + r.extra
		res.Insights = append(res.Insights, stats.DataInsight{
			Prefecture: r.pref.Name,
			Value:      agingRate,
			Unit:       "%",
			Context:    fmt.Sprintf("高齢化率%.1f%%、年少人口率%.1f%%", agingRate, r.extra),
		})
	}
	if len(rs) > 0 {
		res.Description = fmt.Sprintf("%sでは高齢化率が%.1f%%に達し、年少人口率は%.1f%%まで低下しています。地方では医療・介護需要の増加と労働力不足が課題となっています。",
			rs[0].pref.Name, rs[0].value+rs[0].extra, rs[0].extra)
	} else {
		res.Description = noDataDescription
	}
	return res
}

// WorkforceDecline is DecliningPopulations for the working-age series.
func (a *Analyzer) WorkforceDecline(topN int) stats.AnalysisResult {
	rs := top(a.declineRates(stats.WorkingAgePopulation), topN)

	res := stats.AnalysisResult{
		Kind:          stats.KindSelection,
		SelectedCodes: codes(rs),
		Title:         "働く世代の減少が深刻な地域",
		Insights:      make([]stats.DataInsight, 0, len(rs)),
	}
	for _, r := range rs {
		res.Insights = append(res.Insights, stats.DataInsight{
			Prefecture: r.pref.Name,
			Value:      r.value,
			Unit:       "%",
			Context:    fmt.Sprintf("生産年齢人口が%.1f%%減少予測", r.value),
		})
	}
	if len(rs) > 0 {
		res.Description = fmt.Sprintf("労働力の中核である生産年齢人口の減少が最も深刻なのは%sで、%.1f%%の減少が予測されます。経済活動の維持と社会保障制度への影響が懸念されます。",
			rs[0].pref.Name, rs[0].value)
	} else {
		res.Description = noDataDescription
	}
	return res
}

const noDataDescription = "分析に必要な人口データが不足しています。"

// RegionalRanking ranks the prefectures of region by their 2025 value in
// category. An unknown region name is not an error: the result is an
// insight listing the supported regions.
func (a *Analyzer) RegionalRanking(region string, category stats.Category, limit int, order stats.SortOrder) stats.AnalysisResult {
	r, ok := stats.ParseRegion(region)
	if !ok {
		return stats.AnalysisResult{
			Kind:          stats.KindInsight,
			SelectedCodes: []int{},
			Title:         fmt.Sprintf("地域「%s」が見つかりません", region),
			Description:   "対応している地域: " + strings.Join(stats.RegionNames(), "、"),
			Insights:      []stats.DataInsight{},
		}
	}
	if order != stats.Ascending {
		order = stats.Descending
	}

	var rs []ranked
	for _, pref := range a.data.Prefectures {
		if !r.Contains(pref.Name) {
			continue
		}
		v, ok := a.data.Record(pref.Code).Value(category, LatestYear)
		if !ok {
			continue
		}
		rs = append(rs, ranked{pref: pref, value: v})
	}
	sortRanked(rs, order == stats.Descending)
	if limit > 0 && limit < len(rs) {
		rs = rs[:limit]
	}

	sortText := "多い"
	if order == stats.Ascending {
		sortText = "少ない"
	}

	res := stats.AnalysisResult{
		Kind:          stats.KindSelection,
		SelectedCodes: codes(rs),
		Title:         fmt.Sprintf("%s地方の%s%s順", r.Name(), category.Label(), sortText),
		Insights:      make([]stats.DataInsight, 0, len(rs)),
	}
	for _, x := range rs {
		res.Insights = append(res.Insights, stats.DataInsight{
			Prefecture: x.pref.Name,
			Value:      x.value,
			Unit:       "人",
			Context:    fmt.Sprintf("%d年の%s: %s人", LatestYear, category.Label(), a.number(x.value)),
		})
	}
	if len(rs) > 0 {
		res.Description = fmt.Sprintf("%s地方で%sが最も%sのは%s（%s人）です。地域内での人口分布の違いが明確に表れています。",
			r.Name(), category.Label(), sortText, rs[0].pref.Name, a.number(rs[0].value))
	} else {
		res.Description = fmt.Sprintf("%s地方のデータが見つかりませんでした。", r.Name())
	}
	return res
}
