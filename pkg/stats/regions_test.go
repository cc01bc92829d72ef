package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefectureTable(t *testing.T) {
	assert.Len(t, DefaultPrefectures(), 47)
	assert.Equal(t, "東京都", PrefectureName(13))
	assert.Equal(t, "", PrefectureName(48))

	code, ok := PrefectureCode("沖縄県")
	assert.True(t, ok)
	assert.Equal(t, 47, code)
}

func TestRegionMembersAreCanonical(t *testing.T) {
	for _, r := range Regions {
		for _, m := range r.Members() {
			_, ok := PrefectureCode(m)
			assert.True(t, ok, "%s member %s", r, m)
		}
	}
}

func TestParseRegion(t *testing.T) {
	r, ok := ParseRegion("関西")
	require.True(t, ok)
	assert.Equal(t, Kansai, r)
	assert.True(t, r.Contains("大阪府"))
	assert.False(t, r.Contains("東京都"))

	_, ok = ParseRegion("北陸")
	assert.False(t, ok)
}

func TestPromptTables(t *testing.T) {
	codes := CodeTable()
	assert.True(t, strings.HasPrefix(codes, "北海道=1, 青森県=2"))
	assert.True(t, strings.HasSuffix(codes, "沖縄県=47"))

	regions := RegionTable()
	assert.Contains(t, regions, "関西: 滋賀県=25, 京都府=26, 大阪府=27, 兵庫県=28, 奈良県=29, 和歌山県=30\n")
	assert.Equal(t, len(Regions), strings.Count(regions, "\n"))
}
