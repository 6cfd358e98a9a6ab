package memory

import (
	"context"
	"sort"
	"time"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

type EventRepo struct {
	s *Store
}

func (r *EventRepo) Claim(ctx context.Context, eventID, eventType string) (bool, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.data.events[eventID]; ok {
		return false, nil
	}
	now := r.s.now()
	r.s.data.events[eventID] = domain.ProcessedEvent{
		EventID:     eventID,
		EventType:   eventType,
		Status:      domain.EventStatusClaimed,
		ProcessedAt: now,
		UpdatedAt:   now,
	}
	return true, nil
}

func (r *EventRepo) MarkApplied(ctx context.Context, eventID string) error {
	return r.mark(ctx, eventID, domain.EventStatusApplied, "")
}

func (r *EventRepo) MarkFailed(ctx context.Context, eventID, reason string) error {
	return r.mark(ctx, eventID, domain.EventStatusFailed, reason)
}

func (r *EventRepo) mark(ctx context.Context, eventID string, status domain.EventStatus, reason string) error {
	defer r.s.lock(ctx)()

	e, ok := r.s.data.events[eventID]
	if !ok {
		return ErrEventNotFound
	}
	e.Status = status
	e.Error = reason
	e.UpdatedAt = r.s.now()
	r.s.data.events[eventID] = e
	return nil
}

func (r *EventRepo) ListByStatus(ctx context.Context, status domain.EventStatus, limit int) ([]domain.ProcessedEvent, error) {
	defer r.s.lock(ctx)()

	var out []domain.ProcessedEvent
	for _, e := range r.s.data.events {
		if e.Status == status {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProcessedAt.After(out[j].ProcessedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *EventRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	defer r.s.lock(ctx)()

	var deleted int64
	for id, e := range r.s.data.events {
		if e.ProcessedAt.Before(cutoff) && e.Status == domain.EventStatusApplied {
			delete(r.s.data.events, id)
			deleted++
		}
	}
	return deleted, nil
}
