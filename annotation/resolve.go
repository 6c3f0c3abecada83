package annotation

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAmbiguousReadingOrder marks an image with zero or more than one
// reading_order polyline, or one that touches no boxes. Such images are
// unusable and are skipped.
var ErrAmbiguousReadingOrder = errors.New("annotation: need exactly one non-empty reading_order polyline")

// ChainMap maps an anchor box id to its ordered dependent box ids. The
// anchor is the first box a relation polyline visits; the dependents are
// the rest, in drawing order.
type ChainMap map[int][]int

// Dependents returns the dependent ids for an anchor, or nil.
func (m ChainMap) Dependents(anchor int) []int {
	return m[anchor]
}

// Relations is the resolved relation structure for one image: the single
// authoritative reading order plus the chain maps keyed by anchor box id.
// Groups are parsed and carried but not materialized downstream; grouping
// of multi-box figures is a recognized no-op.
type Relations struct {
	ReadingOrder []int
	Merges       ChainMap
	Captions     ChainMap
	Footnotes    ChainMap
	Values       ChainMap
	Groups       [][]int
}

// Resolver gates and resolves a parsed annotation into Relations.
type Resolver struct {
	Logger *slog.Logger
}

// NewResolver creates a resolver logging to the default logger.
func NewResolver() *Resolver {
	return &Resolver{Logger: slog.Default()}
}

// Resolve enforces the reading-order gate and builds the chain maps.
// Only polylines visiting more than one box produce chain entries; a line
// that stayed inside a single box carries no relation.
func (r *Resolver) Resolve(ann *Annotation) (*Relations, error) {
	if n := len(ann.ReadingOrder); n != 1 {
		return nil, fmt.Errorf("%w: image %q has %d", ErrAmbiguousReadingOrder, ann.Name, n)
	}

	order := ann.ReadingOrder[0].BoxIDs
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: image %q reading order touches no boxes", ErrAmbiguousReadingOrder, ann.Name)
	}

	rel := &Relations{
		ReadingOrder: order,
		Merges:       chainMap(ann.Merges),
		Captions:     chainMap(ann.Captions),
		Footnotes:    chainMap(ann.Footnotes),
		Values:       chainMap(ann.Values),
	}
	for _, g := range ann.Groups {
		if len(g.BoxIDs) > 1 {
			rel.Groups = append(rel.Groups, g.BoxIDs)
		}
	}
	return rel, nil
}

func chainMap(lines []Polyline) ChainMap {
	m := make(ChainMap)
	for _, line := range lines {
		if len(line.BoxIDs) < 2 {
			continue
		}
		anchor := line.BoxIDs[0]
		m[anchor] = append(m[anchor], line.BoxIDs[1:]...)
	}
	return m
}
