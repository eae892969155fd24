package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cv-autofill/internal/adapter/repo/sqlite"
	"github.com/fairyhunter13/cv-autofill/internal/domain"
)

func openRepo(t *testing.T) *sqlite.ProfileRepo {
	t.Helper()
	repo, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestProfileRepo_SaveGet(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

	id, err := repo.Save(ctx, domain.RunResult{
		DocumentSHA256: "sha",
		Filename:       "cv.pdf",
		MIME:           domain.MIMEPDF,
		Outcome:        domain.ExtractionOutcome{Method: domain.MethodPdfOcrFallback, UsedFallback: true},
		TextLength:     300,
		Profile: domain.StructuredProfile{
			FullName:  "Maria Santos",
			Skills:    []string{"Leadership"},
			Education: []domain.Education{{Institution: "Up Diliman", Year: "2015"}},
		},
		CreatedAt: created,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, domain.MethodPdfOcrFallback, got.Outcome.Method)
	assert.True(t, got.Outcome.UsedFallback)
	assert.Equal(t, 300, got.TextLength)
	assert.Equal(t, "Maria Santos", got.Profile.FullName)
	assert.Equal(t, []string{"Leadership"}, got.Profile.Skills)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestProfileRepo_GetMissing(t *testing.T) {
	_, err := openRepo(t).Get(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileRepo_ListNewestFirst(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	base := time.Now().UTC()
	for i, name := range []string{"Old", "Mid", "New"} {
		_, err := repo.Save(ctx, domain.RunResult{
			Outcome:   domain.ExtractionOutcome{Method: domain.MethodPdfLayer},
			Profile:   domain.StructuredProfile{FullName: name},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	got, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "New", got[0].Profile.FullName)
	assert.Equal(t, "Mid", got[1].Profile.FullName)
}

func TestProfileRepo_DeleteOlderThan(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.Save(ctx, domain.RunResult{Outcome: domain.ExtractionOutcome{Method: domain.MethodImageOcr}, CreatedAt: now.AddDate(0, 0, -40)})
	require.NoError(t, err)
	keep, err := repo.Save(ctx, domain.RunResult{Outcome: domain.ExtractionOutcome{Method: domain.MethodImageOcr}, CreatedAt: now})
	require.NoError(t, err)

	n, err := repo.DeleteOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep, left[0].ID)
}
