// Package fonts keeps the catalog of font faces the text effects can
// draw with, the role fontconfig plays for pango.
//
// A Catalog always contains the Go fonts. System font directories,
// extra directories and single files can be scanned in as well. Faces
// are described by family, style, weight and stretch, read from the
// font name table, and are only loaded into gg font sources when a
// render asks for them:
//
//	cat := fonts.New(fonts.WithSystemFonts(true))
//	src, err := cat.Resolve(fonts.ParseDescription("DejaVu Sans bold 32"))
package fonts
