package annotation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/DS4SD/docling-eval/model"
)

var (
	// ErrMissingAnnotation marks a record without boxes or without
	// polylines. The image is skipped, not failed.
	ErrMissingAnnotation = errors.New("annotation: record has no boxes or no polylines")

	// ErrMalformedBox marks a degenerate box rectangle. Fatal for the image.
	ErrMalformedBox = errors.New("annotation: degenerate box rectangle")
)

// Relation labels as drawn in the annotation tool. next_text/merge and
// next_figure/group are synonym pairs.
const (
	relReadingOrder = "reading_order"
	relToCaption    = "to_caption"
	relToFootnote   = "to_footnote"
	relToValue      = "to_value"
	relNextText     = "next_text"
	relMerge        = "merge"
	relNextFigure   = "next_figure"
	relGroup        = "group"
)

// Box is a validated annotation box. ID is its index in the record's box
// list; every polyline-derived box id refers back to that list. Page is the
// page number the box belongs to.
type Box struct {
	ID    int
	Label model.Label
	Rect  model.BBox // pixel space, top-left origin
	Page  int
}

// Polyline is a classified relation line together with the box ids its
// vertices resolved to. BoxIDs may be shorter than Points when vertices
// were unlocatable.
type Polyline struct {
	Label  string
	Points []model.Point
	BoxIDs []int
}

// Annotation is a fully parsed per-image record: validated boxes plus the
// polylines bucketed by relation.
type Annotation struct {
	Name         string
	Boxes        []Box
	ReadingOrder []Polyline // expected to hold exactly one entry
	Captions     []Polyline
	Footnotes    []Polyline
	Values       []Polyline
	Merges       []Polyline
	Groups       []Polyline
}

// Box returns the box with the given id, or nil if the id is out of range.
func (a *Annotation) Box(id int) *Box {
	if id < 0 || id >= len(a.Boxes) {
		return nil
	}
	return &a.Boxes[id]
}

// Parser normalizes one raw image record. It has no state besides its
// logger and is safe for reuse across images.
type Parser struct {
	Logger *slog.Logger
}

// NewParser creates a parser logging to the default logger.
func NewParser() *Parser {
	return &Parser{Logger: slog.Default()}
}

// Parse validates the record's boxes, locates every polyline vertex, and
// buckets the polylines by relation label. page is the page number the
// record's boxes belong to.
func (p *Parser) Parse(rec ImageRecord, page int) (*Annotation, error) {
	logger := p.logger()

	if len(rec.Boxes) == 0 || len(rec.Polylines) == 0 {
		return nil, fmt.Errorf("%w: image %q", ErrMissingAnnotation, rec.Name)
	}

	ann := &Annotation{Name: rec.Name}
	for i, rb := range rec.Boxes {
		rect := model.NewTopLeftBBox(rb.XTL, rb.YTL, rb.XBR, rb.YBR)
		if !rect.Valid() {
			return nil, fmt.Errorf("%w: image %q box %d (%s): l=%v t=%v r=%v b=%v",
				ErrMalformedBox, rec.Name, i, rb.Label, rb.XTL, rb.YTL, rb.XBR, rb.YBR)
		}
		ann.Boxes = append(ann.Boxes, Box{
			ID:    i,
			Label: model.Label(rb.Label),
			Rect:  rect,
			Page:  page,
		})
	}

	locator := &Locator{Logger: logger}
	for _, rp := range rec.Polylines {
		line := Polyline{
			Label:  rp.Label,
			Points: rp.Points,
			BoxIDs: locator.BoxIDs(ann.Boxes, rp.Points, rec.Name),
		}

		switch rp.Label {
		case relReadingOrder:
			ann.ReadingOrder = append(ann.ReadingOrder, line)
		case relToCaption:
			ann.Captions = append(ann.Captions, line)
		case relToFootnote:
			ann.Footnotes = append(ann.Footnotes, line)
		case relToValue:
			ann.Values = append(ann.Values, line)
		case relNextText, relMerge:
			ann.Merges = append(ann.Merges, line)
		case relNextFigure, relGroup:
			ann.Groups = append(ann.Groups, line)
		default:
			logger.Warn("ignoring polyline with unknown relation label",
				"image", rec.Name, "label", rp.Label)
		}
	}

	return ann, nil
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
