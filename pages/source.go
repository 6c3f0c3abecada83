package pages

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/DS4SD/docling-eval/model"
)

// Page is one page of the source document in both coordinate spaces.
type Page struct {
	Number    int
	Image     image.Image
	PixelSize model.Size // size of the render, pixels
	PointSize model.Size // size of the PDF page, points
}

// DPI returns the effective render resolution, derived from the ratio of
// pixel to point width.
func (p *Page) DPI() int {
	if p.PointSize.Width <= 0 {
		return 0
	}
	return int(math.Round(72 * p.PixelSize.Width / p.PointSize.Width))
}

// Source yields pages by page number (1-indexed).
type Source interface {
	Page(no int) (*Page, error)
}

// FileSource reads page renders from PNG files and point sizes from the
// source PDF.
type FileSource struct {
	imagePaths map[int]string
	dims       []model.Size
}

// NewFileSource creates a source for one document. imagePaths maps page
// numbers to pre-rendered PNG files; pdfPath is the original PDF, consulted
// once for the point-space dimensions of every page.
func NewFileSource(pdfPath string, imagePaths map[int]string) (*FileSource, error) {
	ctx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("pages: read %s: %w", pdfPath, err)
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("pages: page dimensions of %s: %w", pdfPath, err)
	}

	sizes := make([]model.Size, len(dims))
	for i, d := range dims {
		sizes[i] = model.Size{Width: d.Width, Height: d.Height}
	}
	return &FileSource{imagePaths: imagePaths, dims: sizes}, nil
}

// Page loads and returns one page. The render is decoded on every call;
// callers that need the image repeatedly should keep the returned Page.
func (s *FileSource) Page(no int) (*Page, error) {
	if no < 1 || no > len(s.dims) {
		return nil, fmt.Errorf("pages: page %d out of range (document has %d)", no, len(s.dims))
	}
	path, ok := s.imagePaths[no]
	if !ok {
		return nil, fmt.Errorf("pages: no render registered for page %d", no)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pages: open render: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("pages: decode render %s: %w", path, err)
	}

	bounds := img.Bounds()
	return &Page{
		Number:    no,
		Image:     img,
		PixelSize: model.Size{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())},
		PointSize: s.dims[no-1],
	}, nil
}
