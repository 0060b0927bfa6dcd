package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuotaRepo struct {
	pool *pgxpool.Pool
}

func NewQuotaRepo(pool *pgxpool.Pool) *QuotaRepo {
	return &QuotaRepo{pool: pool}
}

// Used returns how many summarizations the user has consumed.
func (r *QuotaRepo) Used(ctx context.Context, userID uuid.UUID) (int, error) {
	var used int
	err := r.pool.QueryRow(ctx,
		"SELECT COALESCE((SELECT used FROM usage_quotas WHERE user_id = $1), 0)",
		userID,
	).Scan(&used)
	if err != nil {
		return 0, err
	}
	return used, nil
}

// Consume increments the user's usage count in a single statement and
// returns the new count. The upsert is the atomicity guarantee the
// summarize flow relies on; never split this into a read plus a write.
func (r *QuotaRepo) Consume(ctx context.Context, userID uuid.UUID) (int, error) {
	var used int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO usage_quotas (user_id, used, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET used = usage_quotas.used + 1, updated_at = NOW()
		RETURNING used`,
		userID,
	).Scan(&used)
	if err != nil {
		return 0, err
	}
	return used, nil
}
