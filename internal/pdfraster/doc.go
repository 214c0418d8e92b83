// Package pdfraster renders PDF pages onto a gg context.
//
// Documents are parsed with pdfkit's object parser and stream filters.
// Pages are drawn by interpreting their content streams: paths, colors,
// clipping, text with embedded or substituted fonts, raster images and
// form XObjects. Shadings, patterns, Type 3 fonts and transparency groups
// are skipped.
//
// Rendering a document is safe from several goroutines as long as each
// uses its own context.
package pdfraster
