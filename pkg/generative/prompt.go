package generative

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anrid/japan-population/pkg/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// SnapshotYear is the year whose values are shown to the model.
	SnapshotYear = 2025

	// NoData marks a category with no value for SnapshotYear.
	NoData = "データなし"

	// MaxInputSize bounds (len(query)+len(dataContext))*2, measured in
	// characters.
	MaxInputSize = 80_000
)

var snapshotColumns = []struct {
	short string
	cat   stats.Category
}{
	{"総", stats.TotalPopulation},
	{"年少", stats.YouthPopulation},
	{"生産", stats.WorkingAgePopulation},
	{"老年", stats.ElderlyPopulation},
}

// Snapshot renders one line per prefecture with its SnapshotYear values, e.g.
//
//	東京都[県コード:13]: 総=14,000,000人, 年少=データなし, 生産=..., 老年=...
func Snapshot(data stats.Dataset) string {
	p := message.NewPrinter(language.Japanese)

	lines := make([]string, 0, len(data.Prefectures))
	for _, pref := range data.Prefectures {
		rec := data.Record(pref.Code)

		cols := make([]string, 0, len(snapshotColumns))
		for _, c := range snapshotColumns {
			if v, ok := rec.Value(c.cat, SnapshotYear); ok {
				cols = append(cols, c.short+"="+p.Sprintf("%.f", v)+"人")
			} else {
				cols = append(cols, c.short+"="+NoData)
			}
		}
		lines = append(lines, fmt.Sprintf("%s[県コード:%d]: %s", pref.Name, pref.Code, strings.Join(cols, ", ")))
	}
	return strings.Join(lines, "\n")
}

// Oversized reports whether a request is past the size guard.
func Oversized(query, dataContext string) bool {
	n := utf8.RuneCountInString(query) + utf8.RuneCountInString(dataContext)
	return n*2 > MaxInputSize
}

// BuildPrompt embeds the query and data snapshot in the instructions sent to
// the model. The code and region tables come from pkg/stats so the prompt
// and the deterministic parser always agree.
func BuildPrompt(query, dataContext string) string {
	var b strings.Builder

	b.WriteString("あなたは日本の人口データ分析の専門家です。ユーザーの自然言語クエリを分析して、適切な都道府県を選択してください。\n\n")
	fmt.Fprintf(&b, "ユーザーの質問: %q\n\n", query)
	b.WriteString("利用可能なデータ:\n")
	b.WriteString(dataContext)
	b.WriteString("\n\n県コード対応表:\n")
	b.WriteString(stats.CodeTable())
	b.WriteString("\n\n地域区分:\n")
	b.WriteString(stats.RegionTable())
	b.WriteString(`
以下のJSON形式のオブジェクトを1つだけ出力してください。説明文やコードブロック(` + "```" + `)は付けないでください:
{
  "selectedPrefectures": [選択すべき県コードの配列],
  "title": "選択理由のタイトル",
  "description": "一言解説（100文字以内）",
  "insights": [
    {
      "prefecture": "県名",
      "value": 数値,
      "unit": "単位",
      "context": "その県が選択された理由"
    }
  ]
}

重要な注意事項:
- selectedPrefecturesには必ず上記の県コード対応表の数値を使用してください
`)
	fmt.Fprintf(&b, "- 特に指定がなければ%d年の人口データを使用してください\n", SnapshotYear)
	fmt.Fprintf(&b, "- 「%s」と表示されている県は除外してください\n", NoData)
	b.WriteString(`- 「N選」「トップN」「上位N」のように件数が指定された場合は必ずその件数だけ選択してください
- 「少ない」「最少」では数値の小さい順（昇順）、「多い」「最多」では大きい順（降順）に正確にソートしてください
- 例：大分県128,920人 < 長崎県152,059人 なので、大分県の方が「少ない」
- 地域名が含まれる場合は上記の地域区分に含まれる県だけから選択してください
- contextには実際のデータ値と「2025年の○○人口」のように年次を明記してください
- データが不足している場合は推定値を使わず、利用可能なデータのみで分析してください
`)
	return b.String()
}
