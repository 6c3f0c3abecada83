//go:build ocr

// Package ocr provides an optional Tesseract-backed fallback for annotated
// regions whose PDF text query comes back empty, typically scanned pages
// with no embedded text layer.
//
// This file is the OCR-enabled implementation, selected with the "ocr"
// build tag. It requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/DS4SD/docling-eval/pages"
)

// Recognizer wraps a Tesseract client for region recognition. It is not
// safe for concurrent use; a batch runs one recognizer per build.
type Recognizer struct {
	client *gosseract.Client
}

// New creates a recognizer. Close it when no longer needed.
func New() (*Recognizer, error) {
	return &Recognizer{client: gosseract.NewClient()}, nil
}

// Close releases the Tesseract client.
func (r *Recognizer) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// SetLanguage sets the recognition language(s), "+"-separated for multiple
// (e.g. "eng+deu"). Default is "eng".
func (r *Recognizer) SetLanguage(lang string) error {
	return r.client.SetLanguage(lang)
}

// RecognizeRegion runs OCR over a cropped page region and returns the
// recognized text, whitespace-trimmed.
func (r *Recognizer) RecognizeRegion(img image.Image) (string, error) {
	data, err := pages.EncodePNG(img)
	if err != nil {
		return "", err
	}
	if err := r.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("ocr: set region image: %w", err)
	}
	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: recognize region: %w", err)
	}
	return strings.TrimSpace(text), nil
}
