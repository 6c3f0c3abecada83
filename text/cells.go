package text

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/DS4SD/docling-eval/model"
)

// Cell is one positioned text cell of a parsed page, in PDF points with a
// bottom-left origin.
type Cell struct {
	Text string     `json:"text"`
	BBox model.BBox `json:"bbox"`
}

// ParsedPage is a parsed PDF page: its point-space dimension and all text
// cells the parsing engine produced for it.
type ParsedPage struct {
	Dimension model.Size `json:"dimension"`
	Cells     []Cell     `json:"cells"`
}

// LoadPage reads a parsed-page JSON dump. Cells stored with a top-left
// origin are converted to the bottom-left convention on load, so every cell
// in a loaded page satisfies the query's expectations.
func LoadPage(r io.Reader) (*ParsedPage, error) {
	var page ParsedPage
	if err := json.NewDecoder(r).Decode(&page); err != nil {
		return nil, fmt.Errorf("text: decode parsed page: %w", err)
	}
	if page.Dimension.Width <= 0 || page.Dimension.Height <= 0 {
		return nil, fmt.Errorf("text: parsed page has degenerate dimension %+v", page.Dimension)
	}
	for i, c := range page.Cells {
		if c.BBox.Origin != model.CoordBottomLeft {
			page.Cells[i].BBox = c.BBox.ToBottomLeft(page.Dimension.Height)
		}
	}
	return &page, nil
}

// LoadPageFile reads a parsed-page JSON file.
func LoadPageFile(path string) (*ParsedPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("text: open parsed page: %w", err)
	}
	defer f.Close()
	return LoadPage(f)
}
