package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/safe-acid/tornet/internal/torrc"
)

// dbFileName is the database file created under the history directory.
const dbFileName = "tornet.db"

// DefaultDir returns the default history location following the XDG
// Base Directory Specification (~/.local/share/tornet on Linux).
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "tornet")
}

// Rotation is one recorded rotation observation.
type Rotation struct {
	ID        int64
	RotatedAt time.Time
	IP        string
	ViaProxy  bool
}

// PolicyEvent is one recorded policy application outcome.
type PolicyEvent struct {
	ID        int64
	AppliedAt time.Time
	ExitNodes string
	Strict    bool
	Status    string
}

// Store is the SQLite-backed history store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the history database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	path := filepath.Join(dir, dbFileName)

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite supports a single writer; one connection avoids lock
	// contention entirely for this low-volume log.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, path: path}
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := s.createTables(); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// createTables creates the schema if it does not exist.
func (s *Store) createTables() error {
	schema := `
	-- One row per observed rotation.
	CREATE TABLE IF NOT EXISTS rotations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rotated_at TEXT NOT NULL,
		ip TEXT NOT NULL,
		via_proxy INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rotations_rotated_at ON rotations(rotated_at);

	-- One row per exit-policy application attempt.
	CREATE TABLE IF NOT EXISTS policies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		applied_at TEXT NOT NULL,
		exit_nodes TEXT NOT NULL,
		strict INTEGER NOT NULL,
		status TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRotation inserts one rotation observation.
func (s *Store) RecordRotation(ctx context.Context, ip string, viaProxy bool) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO rotations (rotated_at, ip, via_proxy) VALUES (?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), ip, boolToInt(viaProxy),
	)
	return err
}

// RecordPolicy inserts one policy application outcome. status is the
// applier's terminal state name ("preferred", "fallback", "degraded").
func (s *Store) RecordPolicy(ctx context.Context, policy torrc.ExitPolicy, status string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO policies (applied_at, exit_nodes, strict, status) VALUES (?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), policy.ExitNodes(), boolToInt(policy.Strict), status,
	)
	return err
}

// Rotations returns the most recent rotations, newest first.
// limit <= 0 returns everything.
func (s *Store) Rotations(ctx context.Context, limit int) ([]Rotation, error) {
	query := "SELECT id, rotated_at, ip, via_proxy FROM rotations ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []Rotation
	for rows.Next() {
		var (
			r        Rotation
			at       string
			viaProxy int
		)
		if err := rows.Scan(&r.ID, &at, &r.IP, &viaProxy); err != nil {
			return nil, err
		}
		r.RotatedAt, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("malformed timestamp %q in history: %w", at, err)
		}
		r.ViaProxy = viaProxy != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// boolToInt maps a bool onto SQLite's 0/1 convention.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
