package workflow

import "errors"

// Reasons a run stops before ripping.
var (
	ErrMetadataNotFound = errors.New("no album metadata for disc")
	ErrAlbumExists      = errors.New("album directory already exists")
)
