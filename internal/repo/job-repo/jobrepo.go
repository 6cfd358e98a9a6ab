package jobrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/internal/pg"
)

const (
	findByIDQuery = `
        SELECT id, client_id, provider_id, status, price_total, agency_fee, provider_payout, platform_fee_percent, created_at, updated_at
        FROM jobs
        WHERE id = $1
    `
	// the row lock serializes concurrent transitions of the same job
	transitionQuery = `
        WITH prev AS (
            SELECT id, status, platform_fee_percent
            FROM jobs
            WHERE id = $1
            FOR UPDATE
        ), updated AS (
            UPDATE jobs SET status = $2, updated_at = now()
            FROM prev
            WHERE jobs.id = prev.id AND prev.status = ANY($3)
            RETURNING jobs.id
        )
        SELECT prev.status, prev.platform_fee_percent, EXISTS (SELECT 1 FROM updated)
        FROM prev
    `
	createQuery = `
        INSERT INTO jobs (id, client_id, provider_id, status, price_total, agency_fee, provider_payout, platform_fee_percent)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at
    `
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

func (r *Repository) FindByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.db.QueryRow(ctx, findByIDQuery, jobID)

	var job domain.Job
	err := row.Scan(
		&job.ID, &job.ClientID, &job.ProviderID, &job.Status,
		&job.PriceTotal, &job.AgencyFee, &job.ProviderPayout, &job.PlatformFeePercent,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find job", zap.String("jobID", jobID), zap.Error(err))
		return nil, err
	}
	return &job, nil
}

// TransitionStatus moves the job to status `to` when its current status is one
// of allowedFrom. It returns nil when the job does not exist.
func (r *Repository) TransitionStatus(ctx context.Context, jobID string, to domain.JobStatus, allowedFrom []domain.JobStatus) (*domain.JobTransition, error) {
	from := make([]string, len(allowedFrom))
	for i, s := range allowedFrom {
		from[i] = string(s)
	}

	row := r.db.QueryRow(ctx, transitionQuery, jobID, string(to), from)

	transition := domain.JobTransition{JobID: jobID, To: to}
	err := row.Scan(&transition.From, &transition.PlatformFeePercent, &transition.Applied)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't transition job", zap.String("jobID", jobID), zap.String("to", string(to)), zap.Error(err))
		return nil, err
	}
	return &transition, nil
}

// Create stores a job booked elsewhere. Used by fixtures and the development seed.
func (r *Repository) Create(ctx context.Context, job *domain.Job) error {
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, createQuery,
			job.ID, job.ClientID, job.ProviderID, job.Status,
			job.PriceTotal, job.AgencyFee, job.ProviderPayout, job.PlatformFeePercent,
		)
		if err := row.Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
			zap.L().Error("can't create job", zap.String("jobID", job.ID), zap.Error(err))
			return err
		}
		return nil
	})
	return err
}
