package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retainer deletes rows past their retention window.
type Retainer interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// CleanupService handles data retention and cleanup
type CleanupService struct {
	Store         Retainer
	RetentionDays int
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(store Retainer, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90 // default 90 days
	}
	return &CleanupService{Store: store, RetentionDays: retentionDays}
}

// CleanupOldData removes stored runs older than the retention period.
func (s *CleanupService) CleanupOldData(ctx context.Context) error {
	n, err := s.Store.DeleteOlderThan(ctx, s.RetentionDays)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	slog.Info("data cleanup completed",
		slog.Int64("deleted_profiles", n),
		slog.Int("retention_days", s.RetentionDays),
	)
	return nil
}

// RunPeriodic starts a periodic cleanup job
func (s *CleanupService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour // daily by default
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.CleanupOldData(ctx); err != nil {
		slog.Error("initial cleanup failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup service stopping")
			return
		case <-ticker.C:
			if err := s.CleanupOldData(ctx); err != nil {
				slog.Error("periodic cleanup failed", slog.Any("error", err))
			}
		}
	}
}
