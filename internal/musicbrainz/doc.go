// Package musicbrainz resolves a disc identifier into album metadata using the
// MusicBrainz web service.
//
// Client performs the single discid lookup and classifies failures with the
// services error markers. Resolver turns the response into an album.Album:
// it takes the first release and its first medium whose format is exactly
// "CD", applies the field defaults, and drops tracks whose number is not a
// non-negative integer. Selection is deliberately first-match; discs matching
// several releases are not disambiguated.
package musicbrainz
