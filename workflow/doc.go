// Package workflow implements the conversation workflow engine: a
// directed graph of named nodes threaded by a mutable ChatState.
//
// A node reads the current state and returns a partial Update that the
// engine merges in. After the merge, the engine follows the node's
// fixed edge, or invokes its router against the post-merge state and
// maps the returned label to the next node. Execution ends at the End
// marker or fails with a step-limit error once the global ceiling is
// exceeded.
//
// Graphs are assembled with Builder and validated by Compile; a
// compiled Plan is immutable and safe to share across concurrent runs,
// each of which owns its own ChatState.
package workflow
