// Package pipeline orchestrates a preparation run: acquire the raw table,
// clean it, build the star schema, compute the summaries, and export the
// artifacts. Each stage is a named Step with observable state, so the HTTP
// API and the WebSocket hub can report progress while a run executes.
//
// The error policy is deliberate: an unreachable source aborts the run,
// everything else degrades. Missing columns, unmatched join keys, and
// too-small groups are counted in the stage reports and the run finishes
// with whatever it could produce.
package pipeline
