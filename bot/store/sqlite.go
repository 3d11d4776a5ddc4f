package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	contractx "github.com/bairolabs/bairo/bot/contract"
)

// SQLiteStore implements contract.InquiryStore on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB

	// registerMu serializes Register's exists-then-insert sequence so
	// two sessions sharing a contact cannot both commit.
	registerMu sync.Mutex
}

// NewSQLite opens (creating if needed) the enquiry database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create database directory: %v", contractx.ErrStoreUnavailable, err)
		}
	}

	// WAL keeps concurrent readers off the writers' backs.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", contractx.ErrStoreUnavailable, err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", contractx.ErrStoreUnavailable, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS enquiries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		mobile TEXT NOT NULL,
		email TEXT NOT NULL,
		status TEXT NOT NULL,
		courses_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_enquiries_contact ON enquiries(mobile, email);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("%w: create schema: %v", contractx.ErrStoreUnavailable, err)
	}
	return nil
}

// Exists reports whether any committed enquiry matches the mobile or
// the email. Either channel is enough to count as already registered.
func (s *SQLiteStore) Exists(ctx context.Context, mobile, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM enquiries WHERE mobile = ? OR email = ?`,
		mobile, email,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: contact lookup: %v", contractx.ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

// Append records the enquiry without any duplicate check.
func (s *SQLiteStore) Append(ctx context.Context, inq *contractx.Inquiry) error {
	return s.insert(ctx, s.db, inq)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insert(ctx context.Context, ex execer, inq *contractx.Inquiry) error {
	if inq == nil {
		return fmt.Errorf("%w: nil inquiry", contractx.ErrValidation)
	}
	if strings.TrimSpace(inq.ID) == "" {
		inq.ID = uuid.NewString()
	}
	if inq.CreatedAt.IsZero() {
		inq.CreatedAt = time.Now().UTC()
	}

	courses, err := json.Marshal(inq.Courses)
	if err != nil {
		return fmt.Errorf("%w: encode courses: %v", contractx.ErrStoreUnavailable, err)
	}

	_, err = ex.ExecContext(ctx,
		`INSERT INTO enquiries (id, name, mobile, email, status, courses_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inq.ID, inq.Name, inq.Mobile, inq.Email, inq.Status, string(courses), inq.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: insert enquiry: %v", contractx.ErrStoreUnavailable, err)
	}
	return nil
}

// Register re-checks the contact and inserts inside one transaction,
// both guarded by a store-level mutex. Returns ErrDuplicateContact when
// the contact won an earlier race.
func (s *SQLiteStore) Register(ctx context.Context, inq *contractx.Inquiry) error {
	if inq == nil {
		return fmt.Errorf("%w: nil inquiry", contractx.ErrValidation)
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin register: %v", contractx.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM enquiries WHERE mobile = ? OR email = ?`,
		inq.Mobile, inq.Email,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("%w: contact lookup: %v", contractx.ErrStoreUnavailable, err)
	}
	if n > 0 {
		return fmt.Errorf("%w: mobile=%s", contractx.ErrDuplicateContact, inq.Mobile)
	}

	if err := s.insert(ctx, tx, inq); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit register: %v", contractx.ErrStoreUnavailable, err)
	}
	return nil
}

// ListAll returns every enquiry in insertion order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]contractx.Inquiry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, mobile, email, status, courses_json, created_at
		 FROM enquiries ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list enquiries: %v", contractx.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []contractx.Inquiry
	for rows.Next() {
		var (
			inq       contractx.Inquiry
			courses   string
			createdAt int64
		)
		if err := rows.Scan(&inq.ID, &inq.Name, &inq.Mobile, &inq.Email, &inq.Status, &courses, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan enquiry: %v", contractx.ErrStoreUnavailable, err)
		}
		if err := json.Unmarshal([]byte(courses), &inq.Courses); err != nil {
			return nil, fmt.Errorf("%w: decode courses: %v", contractx.ErrStoreUnavailable, err)
		}
		inq.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, inq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate enquiries: %v", contractx.ErrStoreUnavailable, err)
	}
	return out, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
