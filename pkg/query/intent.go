package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/anrid/japan-population/pkg/stats"
	"golang.org/x/text/width"
)

// Category keywords, highest priority first. A query mentioning both young
// and old people ranks by the youth series.
var categoryKeywords = []struct {
	cat   stats.Category
	terms []string
}{
	{stats.YouthPopulation, []string{"年少", "子ども", "子供", "こども", "若年", "少子"}},
	{stats.ElderlyPopulation, []string{"老年", "高齢", "シニア", "お年寄り"}},
	{stats.WorkingAgePopulation, []string{"生産年齢", "働く世代", "労働", "現役世代"}},
	{stats.TotalPopulation, []string{"総人口", "人口"}},
}

var (
	ascendingTerms  = []string{"少ない", "少なめ", "最少", "低い", "下位", "ワースト"}
	descendingTerms = []string{"多い", "最多", "高い", "上位", "トップ", "ベスト"}
)

var limitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:トップ|上位|下位|ワースト|ベスト|top)\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*(?:選|つ|県|件|位|都道府県)`),
}

// ParseIntent extracts what it can from free text. Full-width digits and
// Latin letters are folded to ASCII first.
func ParseIntent(text string) stats.QueryIntent {
	text = width.Fold.String(text)

	var intent stats.QueryIntent

	if r, ok := matchRegion(text); ok {
		intent.Region = &r
	}
	if c, ok := matchCategory(text); ok {
		intent.Category = &c
	}
	intent.Limit = matchLimit(text)
	intent.SortOrder = matchSortOrder(text)

	return intent
}

// matchRegion returns the longest region name contained in text.
func matchRegion(text string) (stats.Region, bool) {
	var (
		best    stats.Region
		bestLen int
	)
	for _, r := range stats.Regions {
		name := r.Name()
		if strings.Contains(text, name) && len(name) > bestLen {
			best, bestLen = r, len(name)
		}
	}
	return best, bestLen > 0
}

func matchCategory(text string) (stats.Category, bool) {
	for _, k := range categoryKeywords {
		for _, term := range k.terms {
			if strings.Contains(text, term) {
				return k.cat, true
			}
		}
	}
	return 0, false
}

func matchLimit(text string) int {
	for _, re := range limitPatterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func matchSortOrder(text string) stats.SortOrder {
	for _, term := range ascendingTerms {
		if strings.Contains(text, term) {
			return stats.Ascending
		}
	}
	for _, term := range descendingTerms {
		if strings.Contains(text, term) {
			return stats.Descending
		}
	}
	return ""
}
