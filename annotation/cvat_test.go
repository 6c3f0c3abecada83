package annotation

import (
	"errors"
	"strings"
	"testing"
)

const sampleXML = `<?xml version="1.0" encoding="utf-8"?>
<annotations>
  <version>1.1</version>
  <image id="0" name="doc_042.png" width="1224" height="1584">
    <box label="title" xtl="10.5" ytl="20.0" xbr="400.0" ybr="60.0" occluded="0"></box>
    <box label="text" xtl="10.5" ytl="80.0" xbr="400.0" ybr="200.0" occluded="0"></box>
    <polyline label="reading_order" points="50.0,40.0;50.0,120.0" occluded="0"></polyline>
  </image>
  <image id="1" name="doc_043.png" width="1224" height="1584">
    <box label="picture" xtl="0" ytl="0" xbr="100" ybr="100"></box>
  </image>
</annotations>`

func TestDecode(t *testing.T) {
	records, err := Decode(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	rec := records[0]
	if rec.Name != "doc_042.png" {
		t.Errorf("Name = %q", rec.Name)
	}
	if len(rec.Boxes) != 2 {
		t.Fatalf("len(Boxes) = %d, want 2", len(rec.Boxes))
	}
	if rec.Boxes[0].Label != "title" || rec.Boxes[0].XTL != 10.5 || rec.Boxes[0].YBR != 60.0 {
		t.Errorf("box 0 = %+v", rec.Boxes[0])
	}
	if len(rec.Polylines) != 1 {
		t.Fatalf("len(Polylines) = %d, want 1", len(rec.Polylines))
	}
	line := rec.Polylines[0]
	if line.Label != "reading_order" || len(line.Points) != 2 {
		t.Fatalf("polyline = %+v", line)
	}
	if line.Points[1].X != 50.0 || line.Points[1].Y != 120.0 {
		t.Errorf("point 1 = %+v", line.Points[1])
	}

	// A record with boxes but no polylines still decodes.
	if records[1].Name != "doc_043.png" || len(records[1].Polylines) != 0 {
		t.Errorf("record 1 = %+v", records[1])
	}
}

func TestDecodeInvalidPoints(t *testing.T) {
	const bad = `<annotations>
  <image name="x.png">
    <box label="text" xtl="0" ytl="0" xbr="10" ybr="10"></box>
    <polyline label="reading_order" points="1,2;nope"></polyline>
  </image>
</annotations>`

	_, err := Decode(strings.NewReader(bad))
	if !errors.Is(err, ErrInvalidPolyline) {
		t.Errorf("err = %v, want ErrInvalidPolyline", err)
	}
}

func TestParsePoints(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantLen int
		wantErr bool
	}{
		{"two points", "1.5,2.5;3,4", 2, false},
		{"single point", "10,20", 1, false},
		{"spaces tolerated", "1,2; 3,4", 2, false},
		{"empty", "", 0, true},
		{"missing coord", "1;2,3", 0, true},
		{"non numeric", "a,b", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts, err := parsePoints(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", pts)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePoints(%q) error: %v", tt.in, err)
			}
			if len(pts) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(pts), tt.wantLen)
			}
		})
	}
}
