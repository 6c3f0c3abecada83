// Package groundtruth materializes a structured ground-truth document from
// a parsed annotation and its resolved relations.
//
// A Builder is single-use and single-threaded: it owns the document and the
// consumed set for exactly one image, and advances through a fixed state
// sequence (pages registered, reading order walked, done or failed). Batch
// processing runs one independent builder per image; builders share nothing.
//
// The builder bridges the two coordinate systems of the input: annotation
// boxes address the pixel-space page render, while the text-extraction
// collaborator answers queries in PDF point space with a bottom-left
// origin. Every conversion between the two is an explicit, checked step.
package groundtruth
