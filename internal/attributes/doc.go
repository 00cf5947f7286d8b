// Package attributes compiles and evaluates expressions over file events.
//
// Expressions use the expr language and see one event as a flat environment
// (kind, pid, tid, path, new_path, old_path, file_object, time, datetime,
// event_id). See Env.
//
// Three evaluators:
//   - Filter: boolean expression selecting events (table rows)
//   - Evaluator: custom span attribute expressions
//   - TraceIDEvaluator: groups spans into traces (32 hex chars, or hashed)
//
// Invalid trace IDs are hashed with SHA-256 to produce valid IDs.
package attributes
