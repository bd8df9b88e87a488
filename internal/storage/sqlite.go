// Package storage persists pretrained word vectors in SQLite and reports disk usage.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// lookupBatchSize keeps IN (...) lists below SQLite's host parameter limit.
const lookupBatchSize = 500

// SQLiteVectors is a word-vector table stored in SQLite. Vectors are little-endian
// float32 blobs. It is read-only after Import and safe for concurrent lookups.
type SQLiteVectors struct {
	db         *sql.DB
	path       string
	dimensions int
}

// NewSQLiteVectors opens or creates a vector database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteVectors(dbPath string) (*SQLiteVectors, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLiteVectors{db: db, path: dbPath}
	dims, err := s.readDimensions(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.dimensions = dims
	return s, nil
}

// OpenSQLiteVectors opens an existing vector database read-only for lookups.
// Unlike NewSQLiteVectors it never creates files or directories; a missing
// database yields an error wrapping os.ErrNotExist.
func OpenSQLiteVectors(dbPath string) (*SQLiteVectors, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return nil, fmt.Errorf("vector database %s: %w", dbPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("vector database %s is a directory", dbPath)
	}
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteVectors{db: db, path: dbPath}
	dims, err := s.readDimensions(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.dimensions = dims
	return s, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS vectors (
		word TEXT PRIMARY KEY,
		vector BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLiteVectors) readDimensions(ctx context.Context) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'dimensions'`).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read dimensions: %w", err)
	}
	dims, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid dimensions %q: %w", value, err)
	}
	return dims, nil
}

// Path returns the database file path.
func (s *SQLiteVectors) Path() string {
	return s.path
}

// Dimensions returns the vector dimension, or 0 if nothing has been imported.
func (s *SQLiteVectors) Dimensions() int {
	return s.dimensions
}

// Import loads a GloVe or word2vec text file from r in a single transaction.
// Existing words are replaced. The file's dimension must match previously imported vectors.
// Returns the number of vectors written.
func (s *SQLiteVectors) Import(ctx context.Context, r io.Reader) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO vectors (word, vector) VALUES (?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	dims, err := ReadVectors(r, func(word string, vec []float32) error {
		if s.dimensions != 0 && len(vec) != s.dimensions {
			return fmt.Errorf("vector for %q has %d dimensions, database has %d", word, len(vec), s.dimensions)
		}
		if _, err := stmt.ExecContext(ctx, word, float32SliceToBytes(vec)); err != nil {
			return fmt.Errorf("insert %q: %w", word, err)
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('dimensions', ?)`, strconv.Itoa(dims),
	); err != nil {
		return 0, fmt.Errorf("failed to store dimensions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.dimensions = dims
	return count, nil
}

// Lookup returns the vectors of the given words that exist in the table.
// Missing words are absent from the result.
func (s *SQLiteVectors) Lookup(ctx context.Context, words []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(words))
	for start := 0; start < len(words); start += lookupBatchSize {
		end := start + lookupBatchSize
		if end > len(words) {
			end = len(words)
		}
		if err := s.lookupBatch(ctx, words[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteVectors) lookupBatch(ctx context.Context, words []string, out map[string][]float32) error {
	if len(words) == 0 {
		return nil
	}
	args := make([]interface{}, len(words))
	for i, w := range words {
		args[i] = w
	}
	query := `SELECT word, vector FROM vectors WHERE word IN (?` + strings.Repeat(",?", len(words)-1) + `)`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var word string
		var blob []byte
		if err := rows.Scan(&word, &blob); err != nil {
			return fmt.Errorf("failed to scan vector: %w", err)
		}
		out[word] = bytesToFloat32Slice(blob)
	}
	return rows.Err()
}

// CountVectors returns the number of stored words.
func (s *SQLiteVectors) CountVectors(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteVectors) Close() error {
	return s.db.Close()
}
