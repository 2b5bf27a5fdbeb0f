// Package sqlite implements kv.Store on a SQLite database using the pure-Go
// modernc.org/sqlite driver. Every bucket is a table of (key, value) rows.
package sqlite
