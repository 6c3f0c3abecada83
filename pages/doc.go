// Package pages supplies the per-page inputs of a build: the pre-rendered
// pixel-space page image and the PDF point-space page size.
//
// Renders are produced upstream (one PNG per page); point sizes are read
// from the source PDF itself. The two sizes describe the same page in the
// two coordinate systems the builder has to bridge, so a Page always
// carries both.
package pages
