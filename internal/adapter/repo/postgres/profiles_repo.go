// Package postgres provides PostgreSQL database adapters.
//
// ProfileRepo stores completed extraction runs with the profile kept as
// JSONB so the structured fields can be queried in place.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ProfileRepo implements domain.ProfileRepository.
type ProfileRepo struct{ Pool PgxPool }

var _ domain.ProfileRepository = (*ProfileRepo)(nil)

// NewProfileRepo constructs a ProfileRepo with the given pool.
func NewProfileRepo(p PgxPool) *ProfileRepo { return &ProfileRepo{Pool: p} }

const profileColumns = `id, document_sha256, filename, mime, method, used_fallback, text_length, profile, created_at`

func startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("repo.profiles").Start(ctx, name)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", op),
		attribute.String("db.sql.table", "profiles"),
	)
	return ctx, span
}

// Save stores r and returns its id (generates one if empty).
func (r *ProfileRepo) Save(ctx context.Context, res domain.RunResult) (string, error) {
	ctx, span := startSpan(ctx, "profiles.Save", "INSERT")
	defer span.End()

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
	q := `INSERT INTO profiles (` + profileColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err = r.Pool.Exec(ctx, q, id, res.DocumentSHA256, res.Filename, res.MIME,
		string(res.Outcome.Method), res.Outcome.UsedFallback, res.TextLength, string(profile), created)
	if err != nil {
		return "", fmt.Errorf("op=profile.save: %w", err)
	}
	return id, nil
}

// Get loads a run by id.
func (r *ProfileRepo) Get(ctx context.Context, id string) (domain.RunResult, error) {
	ctx, span := startSpan(ctx, "profiles.Get", "SELECT")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return domain.RunResult{}, fmt.Errorf("op=profile.get: %w", domain.ErrNotFound)
	}
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id=$1`
	res, err := scanResult(r.Pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RunResult{}, fmt.Errorf("op=profile.get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("op=profile.get: %w", err)
	}
	return res, nil
}

// List returns up to limit runs, newest first.
func (r *ProfileRepo) List(ctx context.Context, limit int) ([]domain.RunResult, error) {
	ctx, span := startSpan(ctx, "profiles.List", "SELECT")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC LIMIT $1`
	rows, err := r.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("op=profile.list: %w", err)
	}
	defer rows.Close()

	var out []domain.RunResult
	for rows.Next() {
		res, err := scanResult(rows)
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

// DeleteOlderThan removes runs created more than days ago.
func (r *ProfileRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	ctx, span := startSpan(ctx, "profiles.DeleteOlderThan", "DELETE")
	defer span.End()

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	tag, err := r.Pool.Exec(ctx, `DELETE FROM profiles WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("op=profile.delete_older_than: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanResult(row pgx.Row) (domain.RunResult, error) {
	var (
		res     domain.RunResult
		method  string
		profile []byte
	)
	if err := row.Scan(&res.ID, &res.DocumentSHA256, &res.Filename, &res.MIME, &method,
		&res.Outcome.UsedFallback, &res.TextLength, &profile, &res.CreatedAt); err != nil {
		return domain.RunResult{}, err
	}
	res.Outcome.Method = domain.ExtractionMethod(method)
	if err := json.Unmarshal(profile, &res.Profile); err != nil {
		return domain.RunResult{}, err
	}
	return res, nil
}
