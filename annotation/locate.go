package annotation

import (
	"log/slog"

	"github.com/DS4SD/docling-eval/model"
)

// Unmatched is the sentinel box id for a polyline vertex that no box
// contains.
const Unmatched = -1

// Locator maps polyline vertices to the boxes that contain them.
type Locator struct {
	Logger *slog.Logger
}

// FindBox returns the id of the last box (in list order) whose rectangle
// contains the point, boundaries inclusive, or Unmatched if no box does.
// For overlapping boxes the later box wins; existing annotation sets were
// reviewed under this tie-break, so it must not change.
func (l *Locator) FindBox(boxes []Box, pt model.Point) int {
	id := Unmatched
	for _, box := range boxes {
		if box.Rect.Contains(pt) {
			id = box.ID
		}
	}
	return id
}

// BoxIDs resolves every vertex of a polyline. Unlocatable vertices are
// logged and dropped from the derived sequence; processing continues.
func (l *Locator) BoxIDs(boxes []Box, points []model.Point, image string) []int {
	ids := make([]int, 0, len(points))
	for _, pt := range points {
		id := l.FindBox(boxes, pt)
		if id == Unmatched {
			l.logger().Warn("polyline vertex is not inside any box",
				"image", image, "x", pt.X, "y", pt.Y)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (l *Locator) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
