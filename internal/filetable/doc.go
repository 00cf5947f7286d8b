// Package filetable materializes dispatched file events as rows of the file
// events table.
//
// Columns: type, datetime (unix seconds), time_windows (FILETIME), pid,
// path and, for renames, new_path. A rename's path column holds the old
// path recovered by correlation.
//
// Only events accepted by the row filter become rows. The default filter
// keeps events raised by the System process.
package filetable
