// Package text implements the text-extraction collaborator: rectangle
// queries against a parsed PDF page.
//
// A ParsedPage is the output of an external PDF parsing engine, reduced to
// what the query needs: the point-space page dimension and the positioned
// text cells, bottom-left origin. Extractor.BBoxText answers "what text
// lies inside this rectangle", merging cells into lines with fixed
// tolerance parameters.
//
// Queries are pure reads; a ParsedPage can be shared across queries.
package text
