// Package model defines the ground-truth document data model: origin-tagged
// geometry, the closed set of content labels and node kinds, pages with their
// dual pixel/point sizes, table structure, and the Document value that the
// builder assembles and serializes to JSON.
//
// All values in this package are plain data. Geometry operations are pure
// functions; the Document is mutated only through its Add* methods, which the
// builder calls while walking the reading order.
package model
