// Package script runs declarative YAML scenarios against a fresh
// future arena and captures the recorded trace for golden comparison.
//
// A scenario seeds one root future, issues a sequence of operations
// against it (and any handles bound along the way), and records the
// issued/settled event pairs through an in-memory trace store. Fixed
// op tokens keep scenario traces reproducible across runs.
//
// Scenario files are validated against an embedded CUE schema before
// execution, so authoring mistakes surface as schema errors rather
// than silent misbehavior.
package script
