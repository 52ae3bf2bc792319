// Package worker drains the change-request queue in the background.
//
// A cron schedule fires a sweep at a fixed cadence with overlap
// protection: a sweep still in flight causes the next tick to be
// skipped rather than stacked. Each sweep reads all PENDING requests
// once, gates on a single provider health probe, and then processes
// records sequentially and independently. A record that fails leaves
// the rest of the sweep unaffected.
package worker
