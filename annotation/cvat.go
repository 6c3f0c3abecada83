package annotation

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DS4SD/docling-eval/model"
)

// ErrInvalidPolyline is returned when a polyline's points attribute cannot
// be parsed as "x0,y0;x1,y1;...".
var ErrInvalidPolyline = errors.New("annotation: invalid polyline points")

// BoxRecord is one <box> element as exported by CVAT: a labelled rectangle
// given by its top-left and bottom-right corners in image pixels.
type BoxRecord struct {
	Label string
	XTL   float64
	YTL   float64
	XBR   float64
	YBR   float64
}

// PolylineRecord is one <polyline> element: a relation label plus the
// ordered vertices of the drawn line.
type PolylineRecord struct {
	Label  string
	Points []model.Point
}

// ImageRecord is the raw annotation content for one page image.
type ImageRecord struct {
	Name      string
	Boxes     []BoxRecord
	Polylines []PolylineRecord
}

type cvatBox struct {
	Label string  `xml:"label,attr"`
	XTL   float64 `xml:"xtl,attr"`
	YTL   float64 `xml:"ytl,attr"`
	XBR   float64 `xml:"xbr,attr"`
	YBR   float64 `xml:"ybr,attr"`
}

type cvatPolyline struct {
	Label  string `xml:"label,attr"`
	Points string `xml:"points,attr"`
}

type cvatImage struct {
	Name      string         `xml:"name,attr"`
	Boxes     []cvatBox      `xml:"box"`
	Polylines []cvatPolyline `xml:"polyline"`
}

type cvatFile struct {
	XMLName xml.Name    `xml:"annotations"`
	Images  []cvatImage `xml:"image"`
}

// Decode reads a CVAT annotations XML export and returns one record per
// annotated image. Records with no boxes or no polylines still decode; the
// parser stage decides whether they are usable.
func Decode(r io.Reader) ([]ImageRecord, error) {
	var file cvatFile
	if err := xml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("annotation: decode CVAT file: %w", err)
	}

	records := make([]ImageRecord, 0, len(file.Images))
	for _, img := range file.Images {
		rec := ImageRecord{Name: img.Name}
		for _, b := range img.Boxes {
			rec.Boxes = append(rec.Boxes, BoxRecord{
				Label: b.Label,
				XTL:   b.XTL, YTL: b.YTL, XBR: b.XBR, YBR: b.YBR,
			})
		}
		for _, pl := range img.Polylines {
			pts, err := parsePoints(pl.Points)
			if err != nil {
				return nil, fmt.Errorf("image %q polyline %q: %w", img.Name, pl.Label, err)
			}
			rec.Polylines = append(rec.Polylines, PolylineRecord{Label: pl.Label, Points: pts})
		}
		records = append(records, rec)
	}
	return records, nil
}

// DecodeFile reads a CVAT annotations XML file.
func DecodeFile(path string) ([]ImageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("annotation: open CVAT file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// parsePoints parses CVAT's "x0,y0;x1,y1;..." vertex encoding.
func parsePoints(s string) ([]model.Point, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty attribute", ErrInvalidPolyline)
	}
	pairs := strings.Split(s, ";")
	points := make([]model.Point, 0, len(pairs))
	for _, pair := range pairs {
		xy := strings.Split(strings.TrimSpace(pair), ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPolyline, pair)
		}
		x, err := strconv.ParseFloat(xy[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPolyline, pair)
		}
		y, err := strconv.ParseFloat(xy[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPolyline, pair)
		}
		points = append(points, model.Point{X: x, Y: y})
	}
	return points, nil
}
