// Package core provides the risk table engine.
//
// The engine is independent of any UI or transport layer. The web server,
// the terminal browser and the CLI all drive it the same way: they hold
// the current filter, search term and sort column themselves and pass
// them in on every call.
//
// # Row Store
//
// A [RowStore] is built once per catalogue load and never changes:
//
//	store, err := core.NewRowStore(header, categories, rows)
//
// Visibility is never stored on a row; it is recomputed from the store
// and the current [Query] on every change.
//
// # Operations
//
//   - [ComputeVisibility]: category filter AND case-insensitive search
//   - [Highlight]: non-destructive span list for a cell; [Join] restores the text
//   - [SortRows] / [SortPermutation]: stable ascending sort on one column
//   - [ComputeStats]: visible rows overall and per category
//   - [ToCSV] / [WriteCSV]: fully quoted CSV of header plus rows
//
// [Apply] composes them into a [View] for one query.
//
// # Error Handling
//
// Caller mistakes wrap [ErrInvalidArgument]. Technical errors are mapped to
// user-facing messages with support codes by [MapError].
package core
