// Package tables reconciles annotated table regions against a reference
// document.
//
// The annotation only outlines where a table sits; its cell structure comes
// from a separately produced reference document. The matcher compares the
// annotated rectangle with every same-page reference table by
// intersection-over-union and adopts the first table that clears a fixed
// cutoff. A miss degrades to the empty-table sentinel; it never fails the
// build.
package tables
