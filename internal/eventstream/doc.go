// Package eventstream moves classified events from the trace callback thread
// to a single post-processing worker through a bounded queue.
//
// Submit never blocks: when the queue is full the event is dropped and
// counted. The worker stamps the common header fields (timestamps, type label
// and event id) and hands each event to the processor.
package eventstream
