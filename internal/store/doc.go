// Package store persists prism's small amount of state in SQLite: the
// per-day advisory usage counter for the paid video provider, the search
// history, and a best-effort error log.
package store
