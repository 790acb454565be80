// Package storage provides the SQLite-backed marketplace store: additive
// schema migrations probed per column, the one-time ownership backfill and
// one repository per collection.
package storage
