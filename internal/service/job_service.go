package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vroomgo/internal/db"
	"vroomgo/internal/repository"
)

// JobService runs the periodic booking maintenance passes.
type JobService struct {
	repo   repository.JobRepository
	logger zerolog.Logger
}

func NewJobService(repo repository.JobRepository, logger zerolog.Logger) *JobService {
	return &JobService{repo: repo, logger: logger}
}

// CompleteFinishedBookings marks confirmed bookings whose window has passed
// as completed.
func (s *JobService) CompleteFinishedBookings(ctx context.Context) error {
	ids, err := s.repo.ConfirmedIDsPastEnd(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.UpdateStatuses(ctx, ids, db.StatusCompleted); err != nil {
		return err
	}
	s.logger.Info().Int("count", len(ids)).Msg("completed finished bookings")
	return nil
}

// CancelStalePendingBookings cancels bookings that were never confirmed and
// whose window has fully passed. Bookings are never deleted.
func (s *JobService) CancelStalePendingBookings(ctx context.Context) error {
	ids, err := s.repo.PendingIDsPastEnd(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.UpdateStatuses(ctx, ids, db.StatusCancelled); err != nil {
		return err
	}
	s.logger.Info().Int("count", len(ids)).Msg("cancelled stale pending bookings")
	return nil
}
