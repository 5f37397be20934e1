package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/chatclient/pkg/exchangelog"
)

// Supported database/sql driver names.
const (
	DriverSQLite  = "sqlite"  // modernc.org/sqlite, pure Go
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3, cgo
	DriverMySQL   = "mysql"   // github.com/go-sql-driver/mysql
	DriverMemory  = "memory"
)

// SQLConfig contains configuration for the SQL storage backend.
type SQLConfig struct {
	// Driver is DriverSQLite, DriverSQLite3 or DriverMySQL.
	Driver string

	// DSN is a file path (or ":memory:") for the sqlite drivers and a
	// go-sql-driver DSN such as "user:pass@tcp(host:3306)/db" for mysql.
	DSN string

	// MaxOpenConns is the maximum number of open connections. SQLite
	// drivers always use a single connection.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLStorage implements exchangelog.Storage over database/sql.
type SQLStorage struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

var _ exchangelog.Storage = (*SQLStorage)(nil)

// Open returns the storage backend for driver. DriverMemory ignores dsn.
func Open(driver, dsn string) (exchangelog.Storage, error) {
	if driver == DriverMemory {
		return NewMemoryStorage(), nil
	}
	return NewSQLStorage(&SQLConfig{Driver: driver, DSN: dsn})
}

// NewSQLStorage opens the database, applies the schema and verifies its
// version.
func NewSQLStorage(cfg *SQLConfig) (*SQLStorage, error) {
	switch cfg.Driver {
	case DriverSQLite, DriverSQLite3, DriverMySQL:
	default:
		return nil, exchangelog.NewStorageError(cfg.Driver, "open", fmt.Errorf("unsupported driver %q", cfg.Driver))
	}
	if cfg.DSN == "" {
		return nil, exchangelog.NewStorageError(cfg.Driver, "open", errors.New("dsn cannot be empty"))
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "exchangelog.storage", "driver", cfg.Driver)

	if cfg.Driver != DriverMySQL {
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, exchangelog.NewStorageError(cfg.Driver, "open", err)
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, exchangelog.NewStorageError(cfg.Driver, "open", err)
	}

	if cfg.Driver == DriverMySQL {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
		db.SetConnMaxLifetime(2 * time.Minute)
	} else {
		// Single writer; also keeps ":memory:" databases on one connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	s := &SQLStorage{
		db:     db,
		driver: cfg.Driver,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.initialize(ctx, cfg); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("exchange log storage initialized", "dsn", redactDSN(cfg.Driver, cfg.DSN))
	return s, nil
}

func (s *SQLStorage) initialize(ctx context.Context, cfg *SQLConfig) error {
	if err := s.db.PingContext(ctx); err != nil {
		return exchangelog.NewStorageError(s.driver, "ping", err)
	}

	schema, insertVersion := mysqlSchema, mysqlInsertSchemaVersion
	if s.driver != DriverMySQL {
		schema, insertVersion = sqliteSchema, sqliteInsertSchemaVersion

		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA synchronous=NORMAL",
			fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout.Milliseconds()),
		}
		for _, pragma := range pragmas {
			if _, err := s.db.ExecContext(ctx, pragma); err != nil {
				s.logger.Warn("sqlite pragma failed", "pragma", pragma, "error", err)
			}
		}
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return exchangelog.NewStorageError(s.driver, "create_schema", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, insertVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return exchangelog.NewStorageError(s.driver, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, getSchemaVersion).Scan(&version); err != nil {
		return exchangelog.NewStorageError(s.driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return exchangelog.NewStorageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a record.
func (s *SQLStorage) Store(ctx context.Context, record *exchangelog.Record) error {
	var errorVal any
	if record.Error != "" {
		errorVal = record.Error
	}

	_, err := s.db.ExecContext(ctx, insertRecord,
		record.ID, record.RequestID, record.Operation,
		record.StartTime.UnixNano(), int64(record.Latency),
		record.Method, record.URL, record.Model,
		record.RequestBody, record.Curl, record.RequestHash,
		record.StatusCode, record.ResponseBody, record.ResponseHash,
		record.PromptTokens, record.CompletionTokens,
		record.Outcome, errorVal,
	)
	if err != nil {
		return exchangelog.NewStorageError(s.driver, "store", err)
	}
	return nil
}

// Get returns the record with the given ID.
func (s *SQLStorage) Get(ctx context.Context, id string) (*exchangelog.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM exchanges WHERE id = ?", id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, exchangelog.ErrNotFound
	}
	if err != nil {
		return nil, exchangelog.NewStorageError(s.driver, "get", err)
	}
	return record, nil
}

// List returns records matching the query, newest first unless
// SortOrder is "asc".
func (s *SQLStorage) List(ctx context.Context, query *exchangelog.Query) ([]*exchangelog.Record, error) {
	q := *query
	if err := exchangelog.ValidateQuery(&q); err != nil {
		return nil, err
	}
	exchangelog.ApplyQueryDefaults(&q)

	whereClause, args := buildWhereClause(&q)

	sqlQuery := "SELECT " + columns + " FROM exchanges"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	// SortOrder is validated above, so it is safe to inline
	sqlQuery += fmt.Sprintf(" ORDER BY start_time %s, id %s LIMIT %d OFFSET %d",
		strings.ToUpper(q.SortOrder), strings.ToUpper(q.SortOrder), q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, exchangelog.NewStorageError(s.driver, "list", err)
	}
	defer rows.Close()

	records := []*exchangelog.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, exchangelog.NewStorageError(s.driver, "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, exchangelog.NewStorageError(s.driver, "list", err)
	}

	return records, nil
}

// Count returns the number of records matching the query.
func (s *SQLStorage) Count(ctx context.Context, query *exchangelog.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM exchanges"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, exchangelog.NewStorageError(s.driver, "count", err)
	}
	return count, nil
}

// DeleteBefore removes records that started before t.
func (s *SQLStorage) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM exchanges WHERE start_time < ?", t.UnixNano())
	if err != nil {
		return 0, exchangelog.NewStorageError(s.driver, "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, exchangelog.NewStorageError(s.driver, "delete", err)
	}
	return count, nil
}

// Close releases the database handle.
func (s *SQLStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return exchangelog.NewStorageError(s.driver, "close", err)
	}
	s.logger.Info("exchange log storage closed")
	return nil
}

// buildWhereClause returns the WHERE clause (without "WHERE") and its args.
func buildWhereClause(query *exchangelog.Query) (string, []any) {
	var conditions []string
	var args []any

	if query.StartTime != nil {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, query.EndTime.UnixNano())
	}
	if query.RequestID != "" {
		conditions = append(conditions, "request_id = ?")
		args = append(args, query.RequestID)
	}
	if query.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, query.Operation)
	}
	if query.Model != "" {
		conditions = append(conditions, "model = ?")
		args = append(args, query.Model)
	}
	if query.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, query.Outcome)
	}

	return strings.Join(conditions, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*exchangelog.Record, error) {
	var record exchangelog.Record
	var startNanos, latencyNanos int64
	var errorVal sql.NullString

	err := row.Scan(
		&record.ID, &record.RequestID, &record.Operation,
		&startNanos, &latencyNanos,
		&record.Method, &record.URL, &record.Model,
		&record.RequestBody, &record.Curl, &record.RequestHash,
		&record.StatusCode, &record.ResponseBody, &record.ResponseHash,
		&record.PromptTokens, &record.CompletionTokens,
		&record.Outcome, &errorVal,
	)
	if err != nil {
		return nil, err
	}

	record.StartTime = time.Unix(0, startNanos)
	record.Latency = time.Duration(latencyNanos)
	if errorVal.Valid {
		record.Error = errorVal.String
	}
	return &record, nil
}

// ensureDir creates the parent directory of a file-backed SQLite DSN.
func ensureDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// redactDSN hides the password of a mysql DSN.
func redactDSN(driver, dsn string) string {
	if driver != DriverMySQL {
		return dsn
	}
	at := strings.LastIndex(dsn, "@")
	colon := strings.Index(dsn, ":")
	if at < 0 || colon < 0 || colon > at {
		return dsn
	}
	return dsn[:colon+1] + "***" + dsn[at:]
}
