// Package typeset lays out paragraphs of styled text and turns them into
// glyph outlines on a gg context.
//
// A Layout is built once from Params: the text is split into paragraphs,
// wrapped, shaped run by run and positioned. Drawing then either appends
// the outlines to the current path (for stroking or warping) or fills them
// with the span colors.
//
// Coordinates are y-down pixels. Whole-layout calls take the top-left
// corner of the logical box; single-line calls take the left end of the
// baseline.
package typeset
