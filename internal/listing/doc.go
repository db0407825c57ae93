// Package listing holds the state machine behind the users table: a
// debounced search input, the filter and pagination state, the fetch cycle
// that refreshes the list and the store the views render from.
//
// Data flow:
//
//	keystrokes -> Debouncer -> Query -> Cycle -> Store -> subscribers
//
// A Page wires one instance of each for a mounted view and owns their
// lifetime.
package listing
