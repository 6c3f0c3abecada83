package model

import (
	"bytes"
	"testing"
)

// ============================================================================
// Label dispatch
// ============================================================================

func TestLabelKind(t *testing.T) {
	tests := []struct {
		label Label
		want  NodeKind
	}{
		{LabelText, KindText},
		{LabelParagraph, KindText},
		{LabelTitle, KindText},
		{LabelSectionHeader, KindText},
		{LabelCheckboxSelected, KindText},
		{LabelFormula, KindText},
		{LabelKeyValueRegion, KindText},
		{LabelListItem, KindListItem},
		{LabelCaption, KindCaption},
		{LabelTable, KindTable},
		{LabelDocumentIndex, KindTable},
		{LabelPicture, KindPicture},
		{Label("scribble"), KindUnknown},
		{Label(""), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			if got := tt.label.Kind(); got != tt.want {
				t.Errorf("Kind(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Document assembly
// ============================================================================

func prov(page int, l, tp, r, b float64) ProvenanceItem {
	return ProvenanceItem{PageNo: page, BBox: NewTopLeftBBox(l, tp, r, b)}
}

func TestDocumentNodeOrder(t *testing.T) {
	doc := NewDocument("sample")
	doc.AddPage(&PageItem{PageNo: 1, Size: Size{Width: 612, Height: 792}})

	doc.AddText(LabelTitle, prov(1, 0, 0, 100, 20), "Heading")
	doc.AddText(LabelText, prov(1, 0, 30, 100, 50), "Body")
	doc.AddListItem(prov(1, 0, 60, 100, 70), "item one")

	if len(doc.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(doc.Nodes))
	}
	if doc.Nodes[0].Label != LabelTitle || doc.Nodes[1].Label != LabelText || doc.Nodes[2].Label != LabelListItem {
		t.Errorf("node labels out of order: %v %v %v",
			doc.Nodes[0].Label, doc.Nodes[1].Label, doc.Nodes[2].Label)
	}
}

func TestDocumentTables(t *testing.T) {
	doc := NewDocument("tables")
	doc.AddText(LabelText, prov(1, 0, 0, 10, 10), "x")
	doc.AddTable(LabelTable, TableData{NumRows: 2, NumCols: 2}, prov(1, 0, 20, 100, 80))
	doc.AddTable(LabelDocumentIndex, TableData{}, prov(1, 0, 90, 100, 120))

	tables := doc.Tables()
	if len(tables) != 2 {
		t.Fatalf("len(Tables()) = %d, want 2", len(tables))
	}
	if tables[0].Table.NumRows != 2 {
		t.Errorf("first table rows = %d, want 2", tables[0].Table.NumRows)
	}
	if !tables[1].Table.IsEmpty() {
		t.Errorf("second table should be the empty sentinel")
	}
}

func TestTableDataIsEmpty(t *testing.T) {
	if !(TableData{}).IsEmpty() {
		t.Error("zero TableData should be empty")
	}
	if (TableData{NumRows: 1, NumCols: 1}).IsEmpty() {
		t.Error("populated TableData should not be empty")
	}
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc := NewDocument("roundtrip")
	doc.AddPage(&PageItem{
		PageNo: 1,
		Size:   Size{Width: 612, Height: 792},
		Image:  &ImageRef{MimeType: "image/png", Size: Size{Width: 1224, Height: 1584}},
	})
	node := doc.AddText(LabelText, prov(1, 0, 0, 100, 20), "hello world")
	node.Prov = append(node.Prov, prov(1, 0, 30, 100, 50))
	table := doc.AddTable(LabelTable, TableData{
		NumRows: 1,
		NumCols: 2,
		Cells: []TableCell{
			{Text: "a", RowSpan: 1, ColSpan: 1, EndRow: 1, EndCol: 1},
			{Text: "b", RowSpan: 1, ColSpan: 1, StartCol: 1, EndRow: 1, EndCol: 2},
		},
	}, prov(1, 0, 60, 100, 120))
	table.Captions = append(table.Captions, &Node{
		Label: LabelCaption,
		Prov:  []ProvenanceItem{prov(1, 0, 125, 100, 135)},
		Text:  "Table 1",
	})

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := LoadDocument(&buf)
	if err != nil {
		t.Fatalf("LoadDocument() error: %v", err)
	}
	if got.Name != "roundtrip" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Page(1) == nil || got.Page(1).ImageSize().Width != 1224 {
		t.Errorf("page registry lost: %+v", got.Pages)
	}
	if len(got.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(got.Nodes))
	}
	if len(got.Nodes[0].Prov) != 2 {
		t.Errorf("merged provenance lost: %d rects", len(got.Nodes[0].Prov))
	}
	tb := got.Nodes[1]
	if tb.Kind() != KindTable || tb.Table == nil || len(tb.Table.Cells) != 2 {
		t.Fatalf("table payload lost: %+v", tb)
	}
	if len(tb.Captions) != 1 || tb.Captions[0].Text != "Table 1" {
		t.Errorf("caption attachment lost: %+v", tb.Captions)
	}
}
