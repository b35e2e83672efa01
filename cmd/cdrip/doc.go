// Package main hosts the cdrip CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into single rips,
// a udev-driven watch loop, disc identification and MusicBrainz lookups,
// FLAC tag inspection, rip history queries, and configuration scaffolding.
// Configuration resolution, the per-drive lock, and logger setup live in the
// shared command context so subcommands only deal with presentation.
package main
