// Package doclingeval provides a fluent API for building ground-truth
// documents from CVAT-annotated page images.
//
// Basic usage:
//
//	doc, warnings, err := doclingeval.FromRecord(rec).
//	    WithPages(pgs).
//	    WithParsedPage(1, cells).
//	    Build()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", doclingeval.FormatWarnings(warnings))
//	}
//
// With a reference document for table reconciliation:
//
//	doc, _, err := doclingeval.FromRecord(rec).
//	    WithPages(pgs).
//	    WithParsedPage(1, cells).
//	    WithReference(ref).
//	    Build()
//
// For advanced use cases, the lower-level annotation, text, tables, pages
// and groundtruth packages are also available.
package doclingeval

import (
	"fmt"

	"github.com/DS4SD/docling-eval/annotation"
	"github.com/DS4SD/docling-eval/model"
	"github.com/DS4SD/docling-eval/pages"
)

// FromRecord creates a GroundTruthBuilder for one annotated image record.
//
// Example:
//
//	doc, warnings, err := doclingeval.FromRecord(rec).WithPages(pgs).Build()
func FromRecord(rec annotation.ImageRecord) *GroundTruthBuilder {
	return &GroundTruthBuilder{
		rec:     rec,
		parsed:  nil,
		options: defaultBuildOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	recs := doclingeval.Must(annotation.DecodeFile("annotations.xml"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustBuild is a helper that wraps a call to Build() and panics if the
// error is non-nil. It discards warnings and returns just the document.
//
// Example:
//
//	doc := doclingeval.MustBuild(doclingeval.FromRecord(rec).WithPages(pgs).Build())
func MustBuild(doc *model.Document, _ []Warning, err error) *model.Document {
	if err != nil {
		panic(err)
	}
	return doc
}

// LoadPages reads every page of a source into a slice, in the given order.
// It is a convenience for wiring a pages.Source into WithPages.
func LoadPages(src pages.Source, nos ...int) ([]*pages.Page, error) {
	out := make([]*pages.Page, 0, len(nos))
	for _, no := range nos {
		p, err := src.Page(no)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}
		out = append(out, p)
	}
	return out, nil
}
