// Package database keeps the history of scrape runs in SQLite.
//
// Every run is stored with its result rows, the per-handle outcomes and
// the profile snapshots that were fetched, so that `biomail history`
// can list past runs and show their rows again without scraping.
//
// The database is a single file (biomail.db) opened through the CGO-free
// modernc.org/sqlite driver in WAL mode.
package database
