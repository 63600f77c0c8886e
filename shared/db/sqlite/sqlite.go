package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/dfryer1193/imagecat/shared/db"
	_ "modernc.org/sqlite"
)

const (
	// DefaultPath is the default path for the SQLite database
	DefaultPath = "images.db"
)

// pragmas are applied to every connection the pool opens, not just the first one
var pragmas = []string{
	"journal_mode(WAL)",   // Write-Ahead Logging for better concurrency
	"synchronous(NORMAL)", // Balance between safety and performance
	"busy_timeout(5000)",  // Wait up to 5 seconds if database is locked
	"cache_size(-16000)",  // 16MB cache (negative means KB)
}

type SQLiteConfig struct {
	Path string
}

// NewSQLiteConfig returns a config for the database at path, or at DefaultPath
// when path is empty
func NewSQLiteConfig(path string) *SQLiteConfig {
	if path == "" {
		path = DefaultPath
	}

	return &SQLiteConfig{
		Path: path,
	}
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteDB creates a new SQLite database instance
func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	return &SQLiteDB{
		dbPath: cfg.Path,
	}
}

// dsn appends the connection pragmas to the database path
func (s *SQLiteDB) dsn() string {
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, "_pragma="+url.QueryEscape(p))
	}

	sep := "?"
	if strings.Contains(s.dbPath, "?") {
		sep = "&"
	}
	return s.dbPath + sep + strings.Join(params, "&")
}

// Connect opens the SQLite database and brings the schema up to date.
// It is the only place the schema is created; call it once at process start.
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db

	if err := runMigrations(db); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

var _ db.Database = (*SQLiteDB)(nil)
