package tables

import (
	"log/slog"

	"github.com/DS4SD/docling-eval/model"
)

// DefaultIoUCutoff is the overlap an annotated region must reach against a
// reference table to adopt its cell structure.
const DefaultIoUCutoff = 0.90

// Matcher reconciles candidate table regions against reference documents.
type Matcher struct {
	Cutoff float64
	Logger *slog.Logger
}

// NewMatcher creates a matcher with the default cutoff.
func NewMatcher() *Matcher {
	return &Matcher{Cutoff: DefaultIoUCutoff, Logger: slog.Default()}
}

// FindTableData returns the cell structure of the first reference table on
// the candidate's page whose IoU with the candidate exceeds the cutoff.
// Both rectangles are normalized to a top-left origin before comparison.
// When no table clears the cutoff the empty-table sentinel is returned and
// a warning logged; a miss is never an error.
func (m *Matcher) FindTableData(ref *model.Document, cand model.ProvenanceItem) model.TableData {
	logger := m.logger()
	if ref == nil {
		logger.Warn("no reference document for table region", "page", cand.PageNo)
		return model.TableData{}
	}

	for _, node := range ref.Tables() {
		if node.Table == nil {
			continue
		}
		for _, p := range node.Prov {
			if p.PageNo != cand.PageNo {
				continue
			}
			page := ref.Page(p.PageNo)
			if page == nil {
				continue
			}
			a := p.BBox.ToTopLeft(page.Size.Height)
			b := cand.BBox.ToTopLeft(page.Size.Height)
			if iou := a.IoU(b); iou > m.cutoff() {
				logger.Info("matched reference table",
					"document", ref.Name, "page", cand.PageNo, "iou", iou)
				return *node.Table
			}
		}
	}

	logger.Warn("no reference table matches annotated region",
		"document", ref.Name, "page", cand.PageNo)
	return model.TableData{}
}

func (m *Matcher) cutoff() float64 {
	if m.Cutoff > 0 {
		return m.Cutoff
	}
	return DefaultIoUCutoff
}

func (m *Matcher) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
