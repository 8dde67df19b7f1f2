// Package pipeline orchestrates the report run as an ordered sequence
// of steps: acquire the source files, parse them, compute the
// indicator snapshots, export the report artifacts and render the
// dashboard. Each step carries its own runtime state and is traced
// and measured individually.
package pipeline
