//go:build !ocr

// Package ocr provides an optional Tesseract-backed fallback for annotated
// regions whose PDF text query comes back empty.
//
// This is the stub used when the "ocr" build tag is not set; every
// operation returns ErrOCRNotEnabled. Rebuild with
//
//	go build -tags ocr
//
// to enable recognition (requires Tesseract to be installed).
package ocr

import (
	"errors"
	"image"
)

// ErrOCRNotEnabled is returned when OCR is requested but support was not
// compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Recognizer is the no-op stand-in for the Tesseract-backed recognizer.
type Recognizer struct{}

// New reports that OCR support is not compiled in.
func New() (*Recognizer, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op on the stub.
func (r *Recognizer) Close() error { return nil }

// SetLanguage reports that OCR support is not compiled in.
func (r *Recognizer) SetLanguage(lang string) error { return ErrOCRNotEnabled }

// RecognizeRegion reports that OCR support is not compiled in.
func (r *Recognizer) RecognizeRegion(img image.Image) (string, error) {
	return "", ErrOCRNotEnabled
}
