// Package textutil turns metadata strings into safe file and directory names.
//
// Names are NFC-normalized so the same title always maps to the same bytes on
// disk, path separators and characters that are invalid on common
// filesystems are replaced, and control characters are dropped.
package textutil
