package doclingeval_test

import (
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"

	doclingeval "github.com/DS4SD/docling-eval"
	"github.com/DS4SD/docling-eval/annotation"
	"github.com/DS4SD/docling-eval/model"
	"github.com/DS4SD/docling-eval/pages"
	"github.com/DS4SD/docling-eval/text"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPage() *pages.Page {
	return &pages.Page{
		Number:    1,
		Image:     image.NewRGBA(image.Rect(0, 0, 100, 100)),
		PixelSize: model.Size{Width: 100, Height: 100},
		PointSize: model.Size{Width: 100, Height: 100},
	}
}

func blCell(s string, l, b, r, t float64) text.Cell {
	return text.Cell{
		Text: s,
		BBox: model.BBox{L: l, T: t, R: r, B: b, Origin: model.CoordBottomLeft},
	}
}

// sampleRecord annotates a title, a paragraph, a table, and the table's
// caption. The reading order visits the first three; the caption hangs off
// the table via a to_caption line.
func sampleRecord() annotation.ImageRecord {
	return annotation.ImageRecord{
		Name: "page_000001.png",
		Boxes: []annotation.BoxRecord{
			{Label: "title", XTL: 0, YTL: 0, XBR: 100, YBR: 10},
			{Label: "text", XTL: 0, YTL: 15, XBR: 100, YBR: 30},
			{Label: "table", XTL: 0, YTL: 40, XBR: 100, YBR: 70},
			{Label: "caption", XTL: 0, YTL: 75, XBR: 100, YBR: 80},
		},
		Polylines: []annotation.PolylineRecord{
			{Label: "reading_order", Points: []model.Point{{X: 50, Y: 5}, {X: 50, Y: 20}, {X: 50, Y: 55}}},
			{Label: "to_caption", Points: []model.Point{{X: 50, Y: 55}, {X: 50, Y: 77}}},
		},
	}
}

// sampleCells covers the title, paragraph, and caption boxes, in the
// bottom-left convention of a 100-point-high page.
func sampleCells() *text.ParsedPage {
	return &text.ParsedPage{
		Dimension: model.Size{Width: 100, Height: 100},
		Cells: []text.Cell{
			blCell("Sample Title", 0, 90, 100, 100),
			blCell("Body paragraph.", 0, 70, 100, 85),
			blCell("Table 1: results", 0, 20, 100, 25),
		},
	}
}

func referenceDoc() *model.Document {
	ref := model.NewDocument("ref")
	ref.AddPage(&model.PageItem{PageNo: 1, Size: model.Size{Width: 100, Height: 100}})
	ref.AddTable(model.LabelTable,
		model.TableData{NumRows: 2, NumCols: 2, Cells: []model.TableCell{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}}},
		model.ProvenanceItem{PageNo: 1, BBox: model.NewTopLeftBBox(0, 40, 100, 70)})
	return ref
}

func TestBuildEndToEnd(t *testing.T) {
	doc, warnings, err := doclingeval.FromRecord(sampleRecord()).
		WithPages(testPage()).
		WithParsedPage(1, sampleCells()).
		WithReference(referenceDoc()).
		Logger(quiet()).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if len(doc.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(doc.Nodes))
	}
	if doc.Nodes[0].Label != model.LabelTitle || doc.Nodes[0].Text != "Sample Title" {
		t.Errorf("node 0 = %q %q", doc.Nodes[0].Label, doc.Nodes[0].Text)
	}
	if doc.Nodes[1].Text != "Body paragraph." {
		t.Errorf("node 1 text = %q", doc.Nodes[1].Text)
	}

	table := doc.Nodes[2]
	if table.Kind() != model.KindTable {
		t.Fatalf("node 2 kind = %v", table.Kind())
	}
	if table.Table == nil || table.Table.NumRows != 2 || table.Table.NumCols != 2 {
		t.Errorf("table structure not reconciled: %+v", table.Table)
	}
	if len(table.Captions) != 1 || table.Captions[0].Text != "Table 1: results" {
		t.Errorf("captions = %+v", table.Captions)
	}

	for _, w := range warnings {
		t.Errorf("unexpected warning: %s", w)
	}
}

func TestBuildWithoutReferenceWarns(t *testing.T) {
	doc, warnings, err := doclingeval.FromRecord(sampleRecord()).
		WithPages(testPage()).
		WithParsedPage(1, sampleCells()).
		Logger(quiet()).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if doc.Nodes[2].Table == nil || !doc.Nodes[2].Table.IsEmpty() {
		t.Errorf("table without reference should carry the empty sentinel: %+v", doc.Nodes[2].Table)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning about the missing table structure")
	}
}

func TestBuildCollectsTextWarnings(t *testing.T) {
	// No parsed cells at all: every text query degrades to empty.
	doc, warnings, err := doclingeval.FromRecord(sampleRecord()).
		WithPages(testPage()).
		WithReference(referenceDoc()).
		Logger(quiet()).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if doc.Nodes[0].Text != "" {
		t.Errorf("text without cells = %q, want empty", doc.Nodes[0].Text)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning about the missing text source")
	}
	// Warnings must carry the image name for batch logs.
	formatted := doclingeval.FormatWarnings(warnings)
	if !strings.Contains(formatted, "page_000001.png") {
		t.Errorf("warnings missing image name: %q", formatted)
	}
}

func TestBuildFailFast(t *testing.T) {
	_, _, err := doclingeval.FromRecord(sampleRecord()).
		WithPages(testPage()).
		Page(0).
		Logger(quiet()).
		Build()
	if err == nil {
		t.Fatal("expected configuration error for page 0")
	}

	_, _, err = doclingeval.FromRecord(sampleRecord()).
		WithPages(testPage()).
		IoUCutoff(1.5).
		Logger(quiet()).
		Build()
	if err == nil {
		t.Fatal("expected configuration error for cutoff > 1")
	}
}

func TestBuildRequiresPages(t *testing.T) {
	_, _, err := doclingeval.FromRecord(sampleRecord()).Logger(quiet()).Build()
	if err == nil {
		t.Fatal("expected error when no pages supplied")
	}
}

func TestBuildChainsAreIndependent(t *testing.T) {
	base := doclingeval.FromRecord(sampleRecord()).
		WithPages(testPage()).
		WithParsedPage(1, sampleCells()).
		Logger(quiet())

	// Forking the chain must not leak configuration back into the base.
	_ = base.IoUCutoff(0.5).ImageScale(2.0)

	doc, _, err := base.Build()
	if err != nil {
		t.Fatalf("Build() on base chain error: %v", err)
	}
	if len(doc.Nodes) != 3 {
		t.Errorf("len(Nodes) = %d, want 3", len(doc.Nodes))
	}
}

func TestBuildRejectsAmbiguousReadingOrder(t *testing.T) {
	rec := sampleRecord()
	rec.Polylines = append(rec.Polylines, annotation.PolylineRecord{
		Label:  "reading_order",
		Points: []model.Point{{X: 50, Y: 5}},
	})

	_, _, err := doclingeval.FromRecord(rec).
		WithPages(testPage()).
		Logger(quiet()).
		Build()
	if err == nil {
		t.Fatal("expected error for two reading_order polylines")
	}
}
