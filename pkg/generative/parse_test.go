package generative

import (
	"errors"
	"testing"

	"github.com/anrid/japan-population/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseProseWrapped(t *testing.T) {
	r, err := ParseResponse("Here is the result:\n{\"selectedPrefectures\":[13,\"27\"],\"title\":\"T\"}")
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{13, 27}, r.SelectedPrefectures)
	assert.Equal(t, "T", r.Title)
	assert.Equal(t, "", r.Description)
	assert.NotNil(t, r.Insights)
	assert.Empty(t, r.Insights)
}

func TestParseResponseBareJSON(t *testing.T) {
	r, err := ParseResponse(`{
		"selectedPrefectures": [1, 1, 48, 0, -2, 13.5, "x", true, null, 47],
		"title": 42,
		"description": "北と南",
		"insights": [
			{"prefecture": "北海道", "value": "5224614", "unit": "人", "context": "2025年の総人口"},
			"not an object"
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 47}, r.SelectedPrefectures)
	assert.Equal(t, DefaultTitle, r.Title)
	assert.Equal(t, "北と南", r.Description)
	assert.Equal(t, []stats.DataInsight{
		{Prefecture: "北海道", Value: 5224614, Unit: "人", Context: "2025年の総人口"},
	}, r.Insights)
}

func TestParseResponseFencedWithNestedBraces(t *testing.T) {
	text := "```json\n{\"selectedPrefectures\":[40],\"title\":\"a {brace} \\\" in text\",\"insights\":[{\"prefecture\":\"福岡県\"}]}\n```\nand then {\"ignored\": true}"

	r, err := ParseResponse(text)
	require.NoError(t, err)
	assert.Equal(t, []int{40}, r.SelectedPrefectures)
	assert.Equal(t, "a {brace} \" in text", r.Title)
	require.Len(t, r.Insights, 1)
	assert.Equal(t, "福岡県", r.Insights[0].Prefecture)
}

func TestParseResponseInsightsNotASequence(t *testing.T) {
	r, err := ParseResponse(`{"selectedPrefectures":"13","insights":{"a":1}}`)
	require.NoError(t, err)
	assert.Empty(t, r.SelectedPrefectures)
	assert.Empty(t, r.Insights)
}

func TestParseResponseInvalid(t *testing.T) {
	for _, text := range []string{
		"",
		"sorry, I cannot help with that",
		"{ unbalanced",
		"{not: json}",
		"[1, 2, 3]",
	} {
		_, err := ParseResponse(text)
		assert.True(t, errors.Is(err, ErrInvalidResponse), "%q", text)
	}
}

func TestFirstObject(t *testing.T) {
	got, ok := firstObject(`x {"a":{"b":"}"}} y {"c":1}`)
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":"}"}}`, got)

	_, ok = firstObject("no braces here")
	assert.False(t, ok)
}
