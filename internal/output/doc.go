// Package output turns dispatched file events into OpenTelemetry spans.
//
// SpanSubscriber is a pure formatting layer that:
//   - Receives fully correlated events from the publisher
//   - Creates one span per event, at the event's wall-clock time
//   - Sets span attributes from the event and custom attribute expressions
//
// It does NOT:
//   - Parse raw trace records
//   - Resolve volume paths or correlate handles
//   - Compile expressions
//
// Expression handling is delegated to the attributes package and FILETIME
// conversion to timesync.
package output
