package eventrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/pg"
)

var ErrEventNotFound = errors.New("processed event not found")

const (
	// insert-if-absent; a conflicting id returns no row
	claimQuery = `
        INSERT INTO processed_events (event_id, event_type, status)
        VALUES ($1, $2, $3)
        ON CONFLICT (event_id) DO NOTHING
        RETURNING event_id
    `
	markQuery = `
        UPDATE processed_events
        SET status = $1, error = $2, updated_at = now()
        WHERE event_id = $3
    `
	listByStatusQuery = `
        SELECT event_id, event_type, status, error, processed_at, updated_at
        FROM processed_events
        WHERE status = $1
        ORDER BY processed_at DESC
        LIMIT $2
    `
	deleteBeforeQuery = `
        DELETE FROM processed_events
        WHERE processed_at < $1 AND status = $2
    `
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Claim records eventID as taken. It reports false when the id was already claimed.
func (r *Repository) Claim(ctx context.Context, eventID, eventType string) (bool, error) {
	var claimed string
	err := r.db.QueryRow(ctx, claimQuery, eventID, eventType, domain.EventStatusClaimed).Scan(&claimed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		zap.L().Error("can't claim event", zap.String("eventID", eventID), zap.Error(err))
		return false, err
	}
	return true, nil
}

func (r *Repository) MarkApplied(ctx context.Context, eventID string) error {
	return r.mark(ctx, eventID, domain.EventStatusApplied, "")
}

func (r *Repository) MarkFailed(ctx context.Context, eventID, reason string) error {
	return r.mark(ctx, eventID, domain.EventStatusFailed, reason)
}

func (r *Repository) mark(ctx context.Context, eventID string, status domain.EventStatus, reason string) error {
	tag, err := r.db.Exec(ctx, markQuery, status, reason, eventID)
	if err != nil {
		zap.L().Error("can't update event status", zap.String("eventID", eventID), zap.String("status", string(status)), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.EventStatus, limit int) ([]domain.ProcessedEvent, error) {
	rows, err := r.db.Query(ctx, listByStatusQuery, status, limit)
	if err != nil {
		zap.L().Error("can't list events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []domain.ProcessedEvent
	for rows.Next() {
		var e domain.ProcessedEvent
		if err := rows.Scan(&e.EventID, &e.EventType, &e.Status, &e.Error, &e.ProcessedAt, &e.UpdatedAt); err != nil {
			zap.L().Error("can't scan event row", zap.Error(err))
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteBefore prunes APPLIED events processed before cutoff. CLAIMED and FAILED
// rows are reconciliation records and are kept.
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteBeforeQuery, cutoff, domain.EventStatusApplied)
	if err != nil {
		zap.L().Error("can't prune processed events", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
