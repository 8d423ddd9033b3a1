// Package toggle holds the create/undo cycle behind a tap on a tracker cell.
//
// Toggle and DestroyLast are pure: they look at the records of one
// (item, day) cell and return the status change plus the store commands that
// realise it. Executor runs those commands against the stores, one cell at a
// time, and publishes a Changed event after each successful mutation.
package toggle
