package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"seoulmate-backend/internal/models"
)

type quotaStore interface {
	Used(ctx context.Context, userID uuid.UUID) (int, error)
	Consume(ctx context.Context, userID uuid.UUID) (int, error)
}

// QuotaService enforces the check-before / consume-after discipline around
// the paid model call. Errors here mean the quota system itself failed;
// "no quota left" is reported through the returned status, not an error.
type QuotaService struct {
	store     quotaStore
	freeLimit int
}

func NewQuotaService(store quotaStore, freeLimit int) *QuotaService {
	return &QuotaService{store: store, freeLimit: freeLimit}
}

func (s *QuotaService) Limit() int {
	return s.freeLimit
}

func (s *QuotaService) Check(ctx context.Context, userID uuid.UUID) (models.QuotaStatus, error) {
	used, err := s.store.Used(ctx, userID)
	if err != nil {
		return models.QuotaStatus{}, fmt.Errorf("quota status lookup failed: %w", err)
	}
	return s.status(used), nil
}

// Consume records one use after a successful summarization and returns
// how many uses remain. The store's single-statement increment provides
// the atomicity; this layer never does a read-then-write.
func (s *QuotaService) Consume(ctx context.Context, userID uuid.UUID) (int, error) {
	used, err := s.store.Consume(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("quota consume failed: %w", err)
	}
	return s.status(used).Remaining, nil
}

func (s *QuotaService) status(used int) models.QuotaStatus {
	remaining := s.freeLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return models.QuotaStatus{Remaining: remaining, Limit: s.freeLimit}
}
