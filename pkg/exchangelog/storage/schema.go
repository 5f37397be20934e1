package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Times are stored as Unix nanoseconds so ordering and range comparisons
// behave the same on every driver.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS exchanges (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    operation TEXT NOT NULL,
    start_time INTEGER NOT NULL,
    latency_ns INTEGER NOT NULL,
    method TEXT NOT NULL,
    url TEXT NOT NULL,
    model TEXT NOT NULL,
    request_body TEXT NOT NULL,
    curl TEXT NOT NULL,
    request_hash TEXT NOT NULL,
    status_code INTEGER NOT NULL,
    response_body TEXT NOT NULL,
    response_hash TEXT NOT NULL,
    prompt_tokens INTEGER NOT NULL,
    completion_tokens INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    error TEXT
)`,
	`CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_exchanges_start_time ON exchanges(start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_exchanges_request_id ON exchanges(request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_exchanges_outcome ON exchanges(outcome)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are declared inline.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS exchanges (
    id VARCHAR(36) PRIMARY KEY,
    request_id VARCHAR(64) NOT NULL,
    operation VARCHAR(32) NOT NULL,
    start_time BIGINT NOT NULL,
    latency_ns BIGINT NOT NULL,
    method VARCHAR(16) NOT NULL,
    url VARCHAR(2048) NOT NULL,
    model VARCHAR(128) NOT NULL,
    request_body MEDIUMTEXT NOT NULL,
    curl MEDIUMTEXT NOT NULL,
    request_hash CHAR(64) NOT NULL,
    status_code INT NOT NULL,
    response_body MEDIUMTEXT NOT NULL,
    response_hash CHAR(64) NOT NULL,
    prompt_tokens INT NOT NULL,
    completion_tokens INT NOT NULL,
    outcome VARCHAR(32) NOT NULL,
    error TEXT NULL,
    INDEX idx_exchanges_start_time (start_time),
    INDEX idx_exchanges_request_id (request_id),
    INDEX idx_exchanges_outcome (outcome)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS schema_version (
    version INT PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`,
}

const (
	sqliteInsertSchemaVersion = `INSERT INTO schema_version (version, applied_at) VALUES (?, ?) ON CONFLICT(version) DO NOTHING`
	mysqlInsertSchemaVersion  = `INSERT IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`
	getSchemaVersion          = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`
)

// columns lists the exchanges columns in scan order.
const columns = `id, request_id, operation, start_time, latency_ns, method, url, model,
    request_body, curl, request_hash, status_code, response_body, response_hash,
    prompt_tokens, completion_tokens, outcome, error`

const insertRecord = `INSERT INTO exchanges (` + columns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
