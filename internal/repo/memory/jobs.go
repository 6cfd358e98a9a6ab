package memory

import (
	"context"
	"slices"

	"github.com/GlebRadaev/servicehub/internal/domain"
)

type JobRepo struct {
	s *Store
}

func (r *JobRepo) Create(ctx context.Context, job *domain.Job) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.data.jobs[job.ID]; ok {
		return ErrDuplicateJob
	}
	now := r.s.now()
	job.CreatedAt, job.UpdatedAt = now, now
	r.s.data.jobs[job.ID] = *job
	return nil
}

func (r *JobRepo) FindByID(ctx context.Context, jobID string) (*domain.Job, error) {
	defer r.s.lock(ctx)()

	job, ok := r.s.data.jobs[jobID]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (r *JobRepo) TransitionStatus(ctx context.Context, jobID string, to domain.JobStatus, allowedFrom []domain.JobStatus) (*domain.JobTransition, error) {
	defer r.s.lock(ctx)()

	job, ok := r.s.data.jobs[jobID]
	if !ok {
		return nil, nil
	}
	t := &domain.JobTransition{
		JobID:              jobID,
		From:               job.Status,
		To:                 to,
		PlatformFeePercent: job.PlatformFeePercent,
	}
	if slices.Contains(allowedFrom, job.Status) {
		job.Status = to
		job.UpdatedAt = r.s.now()
		r.s.data.jobs[jobID] = job
		t.Applied = true
	}
	return t, nil
}
