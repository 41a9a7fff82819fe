// Package registry persists replacement selections and pipeline run history
// in SQLite.
//
// A project groups the replacements chosen for one host video: each entry
// maps a 0-based subtitle index to the scene clip that replaces it. Adding
// an index a project already has is a no-op, so the first selection for a
// subtitle wins. Runs record each splice invocation with its outputs so the
// CLI can show history and spot interrupted work.
//
// The database lives at config.Paths.StateDir/registry.db. Schema changes
// bump schemaVersion; mismatched databases are rejected rather than migrated.
package registry
