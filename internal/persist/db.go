package persist

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DB wraps the embedded SQLite journal database.
type DB struct {
	SQL *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the journal database at path and applies
// pending migrations. ":memory:" is accepted for throwaway journals.
func Open(ctx context.Context, path string, log *zap.Logger) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	memory := path == ":memory:"
	dsn := path
	if !memory {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if memory {
		// each connection would get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping journal db: %w", err)
	}

	if err := RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Debug("編輯日誌已開啟", zap.String("path", path))
	return &DB{SQL: sqlDB, log: log}, nil
}

func (db *DB) Close() error {
	if db == nil || db.SQL == nil {
		return nil
	}
	return db.SQL.Close()
}
