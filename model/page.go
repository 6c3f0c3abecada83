package model

// ImageRef holds an embedded raster image. Data is the encoded image; it
// serializes as base64 in JSON.
type ImageRef struct {
	MimeType string `json:"mimetype"`
	DPI      int    `json:"dpi,omitempty"`
	Size     Size   `json:"size"`
	Data     []byte `json:"data,omitempty"`
}

// PageItem registers one page of the source document. Size is the PDF
// point-space page size; Image is the pixel-space render, whose own Size
// field carries the pixel dimensions. Both coordinate spaces coexist and
// both are needed: annotations address the render, text extraction addresses
// the PDF.
type PageItem struct {
	PageNo int       `json:"page_no"`
	Size   Size      `json:"size"`
	Image  *ImageRef `json:"image,omitempty"`
}

// ImageSize returns the pixel size of the page render, or a zero Size when
// no render is attached.
func (p *PageItem) ImageSize() Size {
	if p.Image == nil {
		return Size{}
	}
	return p.Image.Size
}
