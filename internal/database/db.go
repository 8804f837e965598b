package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS study_lists (
		storage_key VARCHAR(64) NOT NULL PRIMARY KEY,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS study_rows (
		storage_key VARCHAR(64)  NOT NULL,
		position    INT          NOT NULL,
		id          VARCHAR(64)  NOT NULL,
		title       VARCHAR(255) NOT NULL DEFAULT '',
		solved_on   VARCHAR(64)  NOT NULL DEFAULT '',
		revisit     VARCHAR(255) NOT NULL DEFAULT '',
		topic       VARCHAR(64)  NOT NULL DEFAULT '',
		level       VARCHAR(16)  NOT NULL DEFAULT '',
		reviews     VARCHAR(255) NOT NULL DEFAULT '',
		link        VARCHAR(512) NOT NULL DEFAULT '',
		PRIMARY KEY (storage_key, position),
		UNIQUE KEY uq_study_rows_key_id (storage_key, id),
		CONSTRAINT fk_study_rows_list FOREIGN KEY (storage_key)
			REFERENCES study_lists (storage_key) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tracker tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
