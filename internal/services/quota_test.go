package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type fakeQuotaStore struct {
	used       int
	usedErr    error
	consumeErr error
}

func (f *fakeQuotaStore) Used(ctx context.Context, userID uuid.UUID) (int, error) {
	return f.used, f.usedErr
}

func (f *fakeQuotaStore) Consume(ctx context.Context, userID uuid.UUID) (int, error) {
	if f.consumeErr != nil {
		return 0, f.consumeErr
	}
	f.used++
	return f.used, nil
}

func TestQuotaCheck(t *testing.T) {
	tests := []struct {
		name          string
		used          int
		wantRemaining int
	}{
		{"unused", 0, 3},
		{"partially used", 2, 1},
		{"exhausted", 3, 0},
		{"over limit clamps", 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewQuotaService(&fakeQuotaStore{used: tt.used}, 3)
			status, err := svc.Check(context.Background(), uuid.New())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status.Remaining != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", status.Remaining, tt.wantRemaining)
			}
			if status.Limit != 3 {
				t.Errorf("limit = %d, want 3", status.Limit)
			}
		})
	}
}

func TestQuotaCheck_StoreError(t *testing.T) {
	svc := NewQuotaService(&fakeQuotaStore{usedErr: errors.New("connection refused")}, 3)
	if _, err := svc.Check(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected an error")
	}
}

func TestQuotaConsume(t *testing.T) {
	store := &fakeQuotaStore{used: 1}
	svc := NewQuotaService(store, 3)

	remaining, err := svc.Consume(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != 1 {
		t.Errorf("remaining = %d, want 1", remaining)
	}

	remaining, err = svc.Consume(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
}

func TestQuotaConsume_StoreError(t *testing.T) {
	svc := NewQuotaService(&fakeQuotaStore{consumeErr: errors.New("deadlock detected")}, 3)
	if _, err := svc.Consume(context.Background(), uuid.New()); err != nil {
		return
	}
	t.Fatal("expected an error")
}
