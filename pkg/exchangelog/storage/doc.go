// Package storage implements exchangelog.Storage backends.
//
// SQLStorage runs over database/sql with three drivers:
//
//   - "sqlite": modernc.org/sqlite, pure Go, the default
//   - "sqlite3": github.com/mattn/go-sqlite3, needs cgo
//   - "mysql": github.com/go-sql-driver/mysql
//
// The SQLite drivers use WAL mode and a single connection. Timestamps are
// stored as Unix nanoseconds.
//
// MemoryStorage keeps records in process memory.
//
// Open picks a backend from a driver name and DSN, as found in the
// exchange_log configuration section:
//
//	store, err := storage.Open(cfg.ExchangeLog.Driver, cfg.ExchangeLog.DSN)
package storage
