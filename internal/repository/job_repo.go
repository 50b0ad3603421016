package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// JobRepository serves the background maintenance jobs.
type JobRepository interface {
	ConfirmedIDsPastEnd(ctx context.Context, now time.Time) ([]string, error)
	PendingIDsPastEnd(ctx context.Context, now time.Time) ([]string, error)
	UpdateStatuses(ctx context.Context, ids []string, status string) error
}

type jobRepository struct {
	db *sql.DB
}

func NewJobRepository(sqlDB *sql.DB) JobRepository {
	return &jobRepository{db: sqlDB}
}

func (r *jobRepository) ConfirmedIDsPastEnd(ctx context.Context, now time.Time) ([]string, error) {
	return r.idsByStatusPastEnd(ctx, "confirmed", now)
}

func (r *jobRepository) PendingIDsPastEnd(ctx context.Context, now time.Time) ([]string, error) {
	return r.idsByStatusPastEnd(ctx, "pending", now)
}

func (r *jobRepository) idsByStatusPastEnd(ctx context.Context, status string, now time.Time) ([]string, error) {
	query := `SELECT id FROM bookings WHERE status = $1 AND end_time < $2`
	rows, err := r.db.QueryContext(ctx, query, status, now)
	if err != nil {
		return nil, fmt.Errorf("error querying %s bookings past end time: %w", status, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking id rows: %w", err)
	}
	return ids, nil
}

func (r *jobRepository) UpdateStatuses(ctx context.Context, ids []string, status string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = ANY($3)`
	_, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating booking statuses: %w", err)
	}
	return nil
}
