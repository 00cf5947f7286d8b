// Package volume rewrites device-form volume paths such as
// \Device\HarddiskVolume3\Users\a.txt into drive-letter form (D:\Users\a.txt).
//
// The device-to-drive table is built once, before any event is processed,
// and is read-only afterwards, so a Normalizer can be shared by any number of
// goroutines without locking.
package volume
