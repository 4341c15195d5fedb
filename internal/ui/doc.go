// Package ui contains the bubbletea collection browser behind `aniq tui`.
//
// The browser renders one collection (a user's list or a catalog sample) as
// a filterable [bubbles/list] with the shared color palette.
package ui
