package generative

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/anrid/japan-population/pkg/stats"
)

const (
	DefaultTitle = "AI分析結果"
)

// Response is the sanitized shape of a model answer.
type Response struct {
	SelectedPrefectures []int               `json:"selectedPrefectures"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Insights            []stats.DataInsight `json:"insights"`
}

// ParseResponse decodes a model answer. The whole text is tried first; if
// that fails the first balanced {...} object in the text is used.
func ParseResponse(text string) (Response, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return Response{}, err
	}
	return sanitize(obj), nil
}

func decodeObject(text string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &obj); err == nil && obj != nil {
		return obj, nil
	}

	candidate, ok := firstObject(text)
	if !ok {
		return nil, ErrInvalidResponse
	}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil || obj == nil {
		return nil, ErrInvalidResponse
	}
	return obj, nil
}

// firstObject returns the first balanced {...} span in text, skipping braces
// inside JSON strings.
func firstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func sanitize(obj map[string]interface{}) Response {
	r := Response{
		SelectedPrefectures: sanitizeCodes(obj["selectedPrefectures"]),
		Title:               DefaultTitle,
		Insights:            []stats.DataInsight{},
	}
	if s, ok := obj["title"].(string); ok {
		r.Title = s
	}
	if s, ok := obj["description"].(string); ok {
		r.Description = s
	}
	if items, ok := obj["insights"].([]interface{}); ok {
		for _, it := range items {
			m, ok := it.(map[string]interface{})
			if !ok {
				continue
			}
			in := stats.DataInsight{}
			in.Prefecture, _ = m["prefecture"].(string)
			in.Unit, _ = m["unit"].(string)
			in.Context, _ = m["context"].(string)
			if v, ok := toNumber(m["value"]); ok {
				in.Value = v
			}
			r.Insights = append(r.Insights, in)
		}
	}
	return r
}

func sanitizeCodes(v interface{}) []int {
	items, ok := v.([]interface{})
	if !ok {
		return []int{}
	}
	codes := make([]int, 0, len(items))
	for _, it := range items {
		n, ok := toNumber(it)
		if !ok || n != math.Trunc(n) {
			continue
		}
		codes = append(codes, int(n))
	}
	return stats.NormalizeCodes(codes)
}

// toNumber accepts JSON numbers and numeric strings.
func toNumber(v interface{}) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
