// Package archive maintains the long-term dataset repository: a SQLite
// database of processed documents and their specimens, plus the importer
// that moves finished PDFs out of the source folder.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/structeng/cfst-extractor/internal/common"
)

// DB wraps the dataset repository connection.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the SQLite database at dbPath, bootstrapping the
// schema on first use. Parent directories are created as needed.
func Open(dbPath string) (*DB, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("archive: empty database path")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w: %w", common.ErrDatabase, err)
		}
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", common.ErrDatabase, err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w: %w", common.ErrDatabase, err)
	}

	db := &DB{DB: sqlDB, path: dbPath}
	if err := db.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w: %w", common.ErrDatabase, err)
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) ensureSchema() error {
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='documents'").Scan(&name)
	if err == sql.ErrNoRows {
		_, err = db.Exec(schema)
		return err
	}
	return err
}
