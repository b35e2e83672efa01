// Package coverart downloads an album's front cover from the Cover Art
// Archive into the album directory as folder.<ext>.
//
// Fetching is best-effort: callers log failures and carry on. The file
// extension follows the response Content-Type (png or jpg, defaulting to jpg).
// Covers larger than a configured maximum dimension are downscaled with
// golang.org/x/image/draw and re-encoded as JPEG.
package coverart
