package musicbrainz

// Response is the body of a disc ID lookup.
type Response struct {
	Releases []Release `json:"releases"`
}

// Release is one release attached to a disc ID.
type Release struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Date            *string          `json:"date"`
	Country         *string          `json:"country"`
	ReleaseGroup    *ReleaseGroup    `json:"release-group"`
	CoverArtArchive *CoverArtArchive `json:"cover-art-archive"`
	ArtistCredit    []ArtistCredit   `json:"artist-credit"`
	Media           []Medium         `json:"media"`
}

// ReleaseGroup groups editions of the same album.
type ReleaseGroup struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PrimaryType string `json:"primary-type"`
}

// CoverArtArchive reports which images exist for a release.
type CoverArtArchive struct {
	Artwork bool `json:"artwork"`
	Count   int  `json:"count"`
	Front   bool `json:"front"`
	Back    bool `json:"back"`
}

// ArtistCredit is one entry of a release's credited artists.
type ArtistCredit struct {
	Name       string  `json:"name"`
	JoinPhrase string  `json:"joinphrase"`
	Artist     *Artist `json:"artist"`
}

// Artist identifies a credited artist.
type Artist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SortName string `json:"sort-name"`
}

// Medium is one physical disc (or other carrier) of a release.
type Medium struct {
	Format     *string `json:"format"`
	Position   int     `json:"position"`
	TrackCount int     `json:"track-count"`
	Tracks     []Track `json:"tracks"`
}

// Track is one track of a medium. Number is a string upstream ("1", "A1", ...).
type Track struct {
	ID       string  `json:"id"`
	Number   *string `json:"number"`
	Position int     `json:"position"`
	Title    *string `json:"title"`
	Length   *int64  `json:"length"`
}
