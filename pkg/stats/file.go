package stats

import (
	"fmt"
	"os"
	"path/filepath"
)

// File represents a workbook containing population tables.
// This is typically an Excel file exported by `create` or by hand.
type File struct {
	Path    string
	Title   string
	Content []byte
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &File{
		Path:    path,
		Title:   filepath.Base(path),
		Content: data,
	}, nil
}
