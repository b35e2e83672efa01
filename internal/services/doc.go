// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and track numbers for
//     logging.
//   - The failure taxonomy (transport, malformed response, not found, rate
//     limited, drive, local filesystem, encoding) plus the Wrap helper that
//     tags errors with one marker so callers classify them with errors.Is.
//
// Use these helpers when wiring new stage logic so error reporting stays
// uniform across the pipeline.
package services
