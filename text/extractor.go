package text

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/DS4SD/docling-eval/model"
)

// Options holds the fixed tolerance parameters for cell selection and
// merging.
type Options struct {
	// CellOverlap is the fraction of a cell's area that must fall inside
	// the query rectangle for the cell to be selected.
	CellOverlap float64

	// LineTolerance is the maximum vertical midpoint distance, in points,
	// for two cells to be treated as the same line when their vertical
	// extents do not overlap.
	LineTolerance float64

	// SpaceWidthFactor is the gap threshold, in multiples of the estimated
	// space width, up to which two adjacent cells are merged with a single
	// separating space.
	SpaceWidthFactor float64

	// SpaceWidthFactorTight is the gap threshold, in multiples of the
	// estimated space width, below which two adjacent cells are fragments
	// of the same word and are concatenated without a space.
	SpaceWidthFactorTight float64
}

// DefaultOptions returns the tolerances used for ground-truth construction.
func DefaultOptions() Options {
	return Options{
		CellOverlap:           0.90,
		LineTolerance:         1.0,
		SpaceWidthFactor:      1.5,
		SpaceWidthFactorTight: 0.33,
	}
}

// Extractor answers rectangle text queries against parsed pages.
type Extractor struct {
	opts Options
}

// NewExtractor creates an extractor with the default tolerances.
func NewExtractor() *Extractor {
	return &Extractor{opts: DefaultOptions()}
}

// NewExtractorWithOptions creates an extractor with custom tolerances.
func NewExtractorWithOptions(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// BBoxText returns the text inside rect, left-to-right and top-to-bottom,
// NFKC-normalized and space-joined. rect must be expressed in the page's
// bottom-left origin; passing a top-left rectangle is a caller bug and is
// rejected rather than silently reinterpreted.
func (e *Extractor) BBoxText(page *ParsedPage, rect model.BBox) (string, error) {
	if rect.Origin != model.CoordBottomLeft {
		return "", fmt.Errorf("text: query rect must be bottom-left origin, got %q", rect.Origin)
	}
	if page == nil {
		return "", fmt.Errorf("text: nil parsed page")
	}

	cells := e.selectCells(page, rect)
	if len(cells) == 0 {
		return "", nil
	}

	lines := e.groupLines(cells)

	var parts []string
	for _, ln := range lines {
		parts = append(parts, e.joinLine(ln))
	}
	joined := strings.Join(parts, " ")

	// NFKC folds ligatures and presentation forms the PDF engine emits.
	joined = norm.NFKC.String(joined)
	return strings.Join(strings.Fields(joined), " "), nil
}

// selectCells keeps the cells whose area lies inside the rectangle by at
// least the overlap fraction.
func (e *Extractor) selectCells(page *ParsedPage, rect model.BBox) []Cell {
	var selected []Cell
	for _, c := range page.Cells {
		area := c.BBox.Area()
		if area <= 0 {
			continue
		}
		if c.BBox.IntersectionArea(rect)/area >= e.opts.CellOverlap {
			selected = append(selected, c)
		}
	}
	return selected
}

// groupLines clusters cells into reading lines, top of page first.
func (e *Extractor) groupLines(cells []Cell) [][]Cell {
	sorted := make([]Cell, len(cells))
	copy(sorted, cells)
	// Bottom-left origin: larger Y is higher on the page.
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, mj := midY(sorted[i]), midY(sorted[j])
		if mi != mj {
			return mi > mj
		}
		return sorted[i].BBox.L < sorted[j].BBox.L
	})

	var lines [][]Cell
	for _, c := range sorted {
		if len(lines) == 0 || !e.sameLine(lines[len(lines)-1], c) {
			lines = append(lines, []Cell{c})
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], c)
	}

	for _, ln := range lines {
		sort.SliceStable(ln, func(i, j int) bool { return ln[i].BBox.L < ln[j].BBox.L })
	}
	return lines
}

// sameLine reports whether cell c belongs to the current line: its vertical
// extent overlaps a cell already on the line, or its midpoint is within the
// line tolerance of one.
func (e *Extractor) sameLine(line []Cell, c Cell) bool {
	for _, lc := range line {
		if verticalOverlap(lc.BBox, c.BBox) > 0 {
			return true
		}
		d := midY(lc) - midY(c)
		if d < 0 {
			d = -d
		}
		if d <= e.opts.LineTolerance {
			return true
		}
	}
	return false
}

// joinLine concatenates one line's cells, deciding per gap whether the
// cells are fragments of one word or separate words.
func (e *Extractor) joinLine(line []Cell) string {
	var sb strings.Builder
	for i, c := range line {
		if i == 0 {
			sb.WriteString(c.Text)
			continue
		}
		prev := line[i-1]
		gap := c.BBox.L - prev.BBox.R
		space := spaceWidth(prev)
		switch {
		case gap < e.opts.SpaceWidthFactorTight*space && !strings.HasSuffix(prev.Text, " "):
			sb.WriteString(c.Text)
		case gap <= e.opts.SpaceWidthFactor*space:
			sb.WriteString(" ")
			sb.WriteString(c.Text)
		default:
			// Column-scale gap; inside one query rectangle it still reads
			// as a single separating space.
			sb.WriteString(" ")
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

func midY(c Cell) float64 {
	return (c.BBox.T + c.BBox.B) / 2
}

// verticalOverlap returns the shared vertical extent of two bottom-left
// origin rectangles.
func verticalOverlap(a, b model.BBox) float64 {
	top := a.T
	if b.T < top {
		top = b.T
	}
	bottom := a.B
	if b.B > bottom {
		bottom = b.B
	}
	return top - bottom
}

// spaceWidth estimates a space advance from the cell's average glyph width.
func spaceWidth(c Cell) float64 {
	n := len([]rune(c.Text))
	if n == 0 {
		return c.BBox.Width()
	}
	return c.BBox.Width() / float64(n)
}
