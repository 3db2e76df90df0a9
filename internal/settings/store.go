package settings

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the local mutable configuration of one comandero instance:
// printer address, admin password hash, session secret. It lives in a small
// SQLite file next to the binary so operators can change the printer IP
// from the API without touching the YAML config or restarting; the
// scheduler re-reads it every poll cycle.
type Store struct {
	db *sql.DB
}

// Well-known keys.
const (
	KeyPrinterAddress = "printer_address"
	KeyAdminPassword  = "admin_password"
	KeySessionSecret  = "session_secret"
)

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create settings dir: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)

	if _, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to init settings store: %w", err)
	}

	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key, or sql.ErrNoRows when unset.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", sql.ErrNoRows
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// PrinterAddress returns the configured printer target, empty when none is
// set. Callers treat the empty string as "not configured" and fail fast
// before dialing.
func (s *Store) PrinterAddress(ctx context.Context) (string, error) {
	value, err := s.Get(ctx, KeyPrinterAddress)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *Store) SetPrinterAddress(ctx context.Context, address string) error {
	return s.Set(ctx, KeyPrinterAddress, address)
}
