// Package scan coordinates a full local-network discovery run: it derives
// the 254 candidate addresses of the local /24, fans one probe per address
// out to a bounded worker pool, and folds the asynchronously completing
// results back into an ordered event stream.
//
// Completions are consumed in submission order, not arrival order, so
// progress percentages and discovered devices always appear in
// address-ascending sequence regardless of which worker finished first. A
// slow host therefore delays the reporting of faster hosts behind it in the
// consumption sequence, but never their probing.
//
// A Coordinator is single use: one Run per Coordinator, a fresh Coordinator
// per scan. Per-host failures never abort the run; the only fatal condition
// is the absence of a usable local interface.
package scan
