// Package timesync converts Windows FILETIME timestamps carried by trace
// records into Unix time and wall-clock values.
//
// A FILETIME counts 100-nanosecond ticks since 1601-01-01 UTC. The pipeline
// keeps the raw ticks (time_windows) next to the derived Unix seconds
// (datetime) so both can be reported.
package timesync
