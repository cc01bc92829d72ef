package stats

import (
	"fmt"
	"strings"
)

// PrefectureNames is the canonical code → name table. Index 0 is unused.
var PrefectureNames = [...]string{
	"",
	"北海道", "青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県",
	"静岡県", "愛知県", "三重県", "滋賀県", "京都府", "大阪府", "兵庫県",
	"奈良県", "和歌山県", "鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県", "福岡県", "佐賀県", "長崎県",
	"熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

const (
	MinCode = 1
	MaxCode = 47
)

func ValidCode(code int) bool {
	return code >= MinCode && code <= MaxCode
}

// PrefectureName returns the canonical name for code, or "" when out of range.
func PrefectureName(code int) string {
	if !ValidCode(code) {
		return ""
	}
	return PrefectureNames[code]
}

// PrefectureCode looks up a canonical name.
func PrefectureCode(name string) (int, bool) {
	for code := MinCode; code <= MaxCode; code++ {
		if PrefectureNames[code] == name {
			return code, true
		}
	}
	return 0, false
}

// DefaultPrefectures returns the full catalog built from the canonical table.
func DefaultPrefectures() []Prefecture {
	out := make([]Prefecture, 0, MaxCode)
	for code := MinCode; code <= MaxCode; code++ {
		out = append(out, Prefecture{Code: code, Name: PrefectureNames[code]})
	}
	return out
}

// Region is one of the fixed regional groupings queries can name.
type Region int

const (
	Kanto Region = iota
	Kansai
	Tokai
	Kyushu
	Tohoku
	Chugoku
	Shikoku
	Hokkaido
)

// Regions lists every region in the order they are presented to users.
var Regions = []Region{Kanto, Kansai, Tokai, Kyushu, Tohoku, Chugoku, Shikoku, Hokkaido}

var regionTable = map[Region]struct {
	name    string
	members []string
}{
	Kanto:    {"関東", []string{"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県"}},
	Kansai:   {"関西", []string{"滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県"}},
	Tokai:    {"東海", []string{"岐阜県", "静岡県", "愛知県", "三重県"}},
	Kyushu:   {"九州", []string{"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県"}},
	Tohoku:   {"東北", []string{"青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県"}},
	Chugoku:  {"中国", []string{"鳥取県", "島根県", "岡山県", "広島県", "山口県"}},
	Shikoku:  {"四国", []string{"徳島県", "香川県", "愛媛県", "高知県"}},
	Hokkaido: {"北海道", []string{"北海道"}},
}

func (r Region) Name() string {
	if e, ok := regionTable[r]; ok {
		return e.name
	}
	return fmt.Sprintf("Region(%d)", int(r))
}

func (r Region) String() string { return r.Name() }

// Members returns the prefecture names belonging to r.
func (r Region) Members() []string {
	return append([]string(nil), regionTable[r].members...)
}

// Contains reports whether the named prefecture is part of r.
func (r Region) Contains(prefName string) bool {
	for _, m := range regionTable[r].members {
		if m == prefName {
			return true
		}
	}
	return false
}

// ParseRegion matches an exact region name.
func ParseRegion(name string) (Region, bool) {
	for _, r := range Regions {
		if regionTable[r].name == name {
			return r, true
		}
	}
	return 0, false
}

// RegionNames returns the supported region names in presentation order.
func RegionNames() []string {
	names := make([]string, 0, len(Regions))
	for _, r := range Regions {
		names = append(names, r.Name())
	}
	return names
}

// CodeTable renders "北海道=1, 青森県=2, ..." for prompts.
func CodeTable() string {
	parts := make([]string, 0, MaxCode)
	for code := MinCode; code <= MaxCode; code++ {
		parts = append(parts, fmt.Sprintf("%s=%d", PrefectureNames[code], code))
	}
	return strings.Join(parts, ", ")
}

// RegionTable renders one "関東: 茨城県=8, ..." line per region for prompts.
func RegionTable() string {
	var b strings.Builder
	for _, r := range Regions {
		b.WriteString(r.Name())
		b.WriteString(": ")
		for i, m := range regionTable[r].members {
			if i > 0 {
				b.WriteString(", ")
			}
			code, _ := PrefectureCode(m)
			fmt.Fprintf(&b, "%s=%d", m, code)
		}
		b.WriteString("\n")
	}
	return b.String()
}
