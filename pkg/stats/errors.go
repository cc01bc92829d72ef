package stats

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogUnavailable means the prefecture list could not be loaded.
	ErrCatalogUnavailable = errors.New("prefecture catalog unavailable")

	// ErrNotFound is returned by providers that have no data for a code.
	ErrNotFound = errors.New("population data not found")
)

// FetchFailure reports that a single prefecture's population fetch failed.
type FetchFailure struct {
	Code  int
	Cause error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("都道府県%dの人口データ取得に失敗しました: %v", f.Code, f.Cause)
}

func (f *FetchFailure) Unwrap() error { return f.Cause }
