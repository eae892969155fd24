// Package sqlite stores extraction results in a local SQLite file. It backs
// the command-line tool, where no server-side database is available.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id              TEXT PRIMARY KEY,
    document_sha256 TEXT    NOT NULL,
    filename        TEXT    NOT NULL DEFAULT '',
    mime            TEXT    NOT NULL DEFAULT '',
    method          TEXT    NOT NULL,
    used_fallback   INTEGER NOT NULL DEFAULT 0,
    text_length     INTEGER NOT NULL DEFAULT 0,
    profile         TEXT    NOT NULL,
    created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS profiles_created_at_idx ON profiles (created_at);`

// ProfileRepo implements domain.ProfileRepository on SQLite.
type ProfileRepo struct{ db *sql.DB }

var _ domain.ProfileRepository = (*ProfileRepo)(nil)

// Open opens (creating when needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*ProfileRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("op=sqlite.Open: %w", err)
	}
	// a single writer avoids SQLITE_BUSY on concurrent saves
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("op=sqlite.Open: %w", err)
	}
	return &ProfileRepo{db: db}, nil
}

// Close releases the database handle.
func (r *ProfileRepo) Close() error { return r.db.Close() }

// Ping reports whether the database is reachable.
func (r *ProfileRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *ProfileRepo) Save(ctx context.Context, res domain.RunResult) (string, error) {
	id := res.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := res.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	profile, err := json.Marshal(res.Profile)
	if err != nil {
		return "", fmt.Errorf("op=profile.save: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, document_sha256, filename, mime, method, used_fallback, text_length, profile, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		id, res.DocumentSHA256, res.Filename, res.MIME, string(res.Outcome.Method),
		res.Outcome.UsedFallback, res.TextLength, string(profile), created.UnixNano())
	if err != nil {
		return "", fmt.Errorf("op=profile.save: %w", err)
	}
	return id, nil
}

const selectColumns = `SELECT id, document_sha256, filename, mime, method, used_fallback, text_length, profile, created_at FROM profiles`

func (r *ProfileRepo) Get(ctx context.Context, id string) (domain.RunResult, error) {
	res, err := scan(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RunResult{}, fmt.Errorf("op=profile.get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("op=profile.get: %w", err)
	}
	return res, nil
}

func (r *ProfileRepo) List(ctx context.Context, limit int) ([]domain.RunResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("op=profile.list: %w", err)
	}
	defer rows.Close()

	var out []domain.RunResult
	for rows.Next() {
		res, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("op=profile.list: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=profile.list: %w", err)
	}
	return out, nil
}

func (r *ProfileRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).UnixNano()
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("op=profile.delete_older_than: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface{ Scan(dest ...any) error }

func scan(row scanner) (domain.RunResult, error) {
	var (
		res     domain.RunResult
		method  string
		profile string
		created int64
	)
	if err := row.Scan(&res.ID, &res.DocumentSHA256, &res.Filename, &res.MIME, &method,
		&res.Outcome.UsedFallback, &res.TextLength, &profile, &created); err != nil {
		return domain.RunResult{}, err
	}
	res.Outcome.Method = domain.ExtractionMethod(method)
	res.CreatedAt = time.Unix(0, created).UTC()
	if err := json.Unmarshal([]byte(profile), &res.Profile); err != nil {
		return domain.RunResult{}, err
	}
	return res, nil
}
