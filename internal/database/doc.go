// Package database stores harvested contacts and crawl summaries in SQLite.
//
// The CSV files written during a batch are the primary output; the database
// keeps a queryable history across runs for the history command.
//
// Design decision: the database is a single file opened through
// modernc.org/sqlite, the CGO-free driver, with one open connection and WAL
// journaling.
package database
