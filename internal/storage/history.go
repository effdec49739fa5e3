package storage

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cipherkit/internal/hashing"
)

// timeLayout is fixed-width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Source identifies which front end ran an operation.
type Source string

const (
	SourceCLI  Source = "cli"
	SourceAPI  Source = "api"
	SourceChat Source = "chat"
)

// Entry is one journaled operation.
type Entry struct {
	ID          string    `json:"id" yaml:"id" toml:"id"`
	Algorithm   string    `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	Operation   string    `json:"operation" yaml:"operation" toml:"operation"`
	Source      Source    `json:"source" yaml:"source" toml:"source"`
	InputSHA256 string    `json:"inputSha256" yaml:"inputSha256" toml:"input_sha256"`
	InputLen    int       `json:"inputLen" yaml:"inputLen" toml:"input_len"`
	OutputLen   int       `json:"outputLen" yaml:"outputLen" toml:"output_len"`
	ErrorCode   string    `json:"errorCode,omitempty" yaml:"errorCode,omitempty" toml:"error_code,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt" toml:"created_at"`
}

// NewEntry describes an operation by digest and length only.
func NewEntry(algorithm, operation string, source Source, input, output, errorCode string) Entry {
	h, _ := hashing.New("sha256")
	_, _ = h.Write([]byte(input))

	return Entry{
		ID:          uuid.New().String(),
		Algorithm:   algorithm,
		Operation:   operation,
		Source:      source,
		InputSHA256: hex.EncodeToString(h.Sum(nil)),
		InputLen:    len([]rune(input)),
		OutputLen:   len([]rune(output)),
		ErrorCode:   errorCode,
		CreatedAt:   time.Now().UTC(),
	}
}

// Recorder accepts history entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NopRecorder drops every entry; used when history is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

// Record inserts e, assigning an ID and timestamp if missing.
func (db *DB) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Source == "" {
		e.Source = SourceCLI
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO history (id, algorithm, operation, source, input_sha256, input_len, output_len, error_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.Algorithm,
		e.Operation,
		string(e.Source),
		e.InputSHA256,
		e.InputLen,
		e.OutputLen,
		nullString(e.ErrorCode),
		e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first.
func (db *DB) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, algorithm, operation, source, input_sha256, input_len, output_len, error_code, created_at
		FROM history
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			source    string
			errorCode sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Algorithm, &e.Operation, &source, &e.InputSHA256,
			&e.InputLen, &e.OutputLen, &errorCode, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.Source = Source(source)
		e.ErrorCode = errorCode.String
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AlgorithmStat counts journaled runs of one algorithm.
type AlgorithmStat struct {
	Algorithm string `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	Runs      int    `json:"runs" yaml:"runs" toml:"runs"`
	Failures  int    `json:"failures" yaml:"failures" toml:"failures"`
}

// Stats aggregates the journal per algorithm, most used first.
func (db *DB) Stats(ctx context.Context) ([]AlgorithmStat, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT algorithm, COUNT(*), SUM(CASE WHEN error_code IS NULL THEN 0 ELSE 1 END)
		FROM history
		GROUP BY algorithm
		ORDER BY COUNT(*) DESC, algorithm
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []AlgorithmStat
	for rows.Next() {
		var s AlgorithmStat
		if err := rows.Scan(&s.Algorithm, &s.Runs, &s.Failures); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Clear deletes every entry and returns how many were removed.
func (db *DB) Clear(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
