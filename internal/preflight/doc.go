// Package preflight provides readiness checks for the drive, filesystem
// paths and web services cdrip depends on.
//
// These checks run in two contexts:
//   - "cdrip rip" and "cdrip watch" call RunAll before touching the drive and
//     refuse to start when a required check fails.
//   - "cdrip status" renders every check, including the network probes, as a
//     table.
package preflight
