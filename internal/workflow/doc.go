// Package workflow sequences one rip of the disc in a drive.
//
// Runner.Run reads the TOC, derives the disc ID, resolves album metadata,
// creates the album directory under the configured root, rips every track
// through the ripping pipeline and finally fetches the cover. Missing
// metadata and an existing album directory stop the run before anything is
// written; cover art problems never fail it.
//
// Each run gets a UUID that is attached to the context (and therefore to every
// log line), recorded in the history store and returned in Result.
package workflow
