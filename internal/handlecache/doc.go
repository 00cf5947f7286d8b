// Package handlecache remembers the last known path of file-object handles.
//
// A Create record reports a handle together with the file path; a later
// RenamePath record only reports the handle and the new path. The cache
// joins the two. Handles are reused by the kernel and arrive at a high rate,
// so the cache is bounded and evicts the least recently written handle.
//
// Recency is refreshed by Put only. Get is a pure lookup: reading the old
// path of a renamed handle does not keep that handle alive.
//
// Every operation, reads included, runs under the same mutex.
package handlecache
