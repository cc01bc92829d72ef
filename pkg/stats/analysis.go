package stats

// SortOrder controls the ranking direction of a query.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// QueryIntent is what the query parser could extract from free text.
// Nil fields were not present in the query.
type QueryIntent struct {
	Region    *Region
	Category  *Category
	Limit     int
	SortOrder SortOrder
}

type ResultKind string

const (
	KindSelection ResultKind = "selection"
	KindInsight   ResultKind = "insight"
)

type DataInsight struct {
	Prefecture string  `json:"prefecture"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Context    string  `json:"context"`
}

// AnalysisResult is the outcome of a single query, regardless of which path
// produced it.
type AnalysisResult struct {
	Kind          ResultKind    `json:"type"`
	SelectedCodes []int         `json:"selectedPrefectures"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Insights      []DataInsight `json:"insights"`
}

// NormalizeCodes drops codes outside 1..47 and duplicates, keeping the first
// occurrence order.
func NormalizeCodes(codes []int) []int {
	out := make([]int, 0, len(codes))
	seen := make(map[int]bool, len(codes))
	for _, c := range codes {
		if !ValidCode(c) || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
