// Package tally turns completion records into day buckets and derives
// completion statuses and statistics from them.
//
// Everything here is pure: functions read an immutable *domain.DayBucket
// snapshot, never fail, and are safe to call from any goroutine.
// Malformed input (e.g. unparsable day keys) is rejected before it gets here.
package tally
