package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/skein-dev/skein/internal/serialize"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no artifact matches the given hash.
var ErrNotFound = errors.New("store: artifact not found")

// Artifact describes one stored graph document.
type Artifact struct {
	ID          string
	ContentHash string
	Version     string
	CreatedSeq  int64
}

// Store persists saved graph documents in SQLite, keyed by content
// hash. The same document stored twice yields the original row.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and
// applies pragmas and schema. Idempotent.
//
// The database is configured with WAL mode for concurrent reads,
// NORMAL synchronous mode, a 5-second busy timeout and foreign key
// enforcement. SQLite supports one writer at a time, so the pool is
// held to a single connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores a wire document. The document must be loadable-shaped
// (it is schema-validated first); storing an already-present document
// returns the existing artifact.
func (s *Store) Put(ctx context.Context, body string) (Artifact, error) {
	if err := serialize.ValidateDocument(body); err != nil {
		return Artifact{}, fmt.Errorf("put artifact: %w", err)
	}
	hash, err := ContentHash(body)
	if err != nil {
		return Artifact{}, fmt.Errorf("put artifact: %w", err)
	}
	if existing, err := s.byHash(ctx, hash); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Artifact{}, err
	}

	a := Artifact{
		ID:          uuid.Must(uuid.NewV7()).String(),
		ContentHash: hash,
		Version:     serialize.Version,
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(created_seq), 0) + 1 FROM artifacts`)
	if err := row.Scan(&a.CreatedSeq); err != nil {
		return Artifact{}, fmt.Errorf("put artifact: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, content_hash, body, version, created_seq) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.ContentHash, body, a.Version, a.CreatedSeq)
	if err != nil {
		return Artifact{}, fmt.Errorf("put artifact: %w", err)
	}
	return a, nil
}

// Get returns the stored document body for a content hash.
func (s *Store) Get(ctx context.Context, contentHash string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM artifacts WHERE content_hash = ?`, contentHash).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get artifact: %w", err)
	}
	return body, nil
}

// List returns all artifacts in creation order.
func (s *Store) List(ctx context.Context) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content_hash, version, created_seq FROM artifacts ORDER BY created_seq`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.ID, &a.ContentHash, &a.Version, &a.CreatedSeq); err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) byHash(ctx context.Context, contentHash string) (Artifact, error) {
	var a Artifact
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content_hash, version, created_seq FROM artifacts WHERE content_hash = ?`,
		contentHash).Scan(&a.ID, &a.ContentHash, &a.Version, &a.CreatedSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, ErrNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("lookup artifact: %w", err)
	}
	return a, nil
}
