// Package annotation turns raw CVAT annotation records into typed boxes and
// resolved spatial relations.
//
// The pipeline inside the package is strictly layered:
//
//	DecodeFile: annotations.xml into raw per-image records
//	Parser:     one record into validated boxes and classified polylines
//	Locator:    polyline vertices into box ids
//	Resolver:   classified polylines into the reading order and the
//	            merge/caption/footnote chain maps
//
// The resolver is the single admission gate: an image without exactly one
// reading_order polyline is unusable and never reaches the builder.
package annotation
