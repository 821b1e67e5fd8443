package threads

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
)

type memStore struct {
	threads []models.Thread
	findErr error
}

func (m *memStore) FindShared(_ context.Context, x, y uuid.UUID, eventID *uuid.UUID) (*models.Thread, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.threads {
		t := &m.threads[i]
		if models.SameEvent(t.EventID, eventID) && has(t.ParticipantIDs, x) && has(t.ParticipantIDs, y) {
			return t, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memStore) Create(_ context.Context, t *models.Thread) error {
	t.ID = uuid.New()
	m.threads = append(m.threads, *t)
	return nil
}

func has(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestOpen_LoadOrCreate(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, zaptest.NewLogger(t))
	ctx := context.Background()
	a, b, event := uuid.New(), uuid.New(), uuid.New()

	first, created, err := svc.Open(ctx, a, b, nil)
	if err != nil || !created {
		t.Fatalf("Open = %v, %v; want created", created, err)
	}
	again, created, err := svc.Open(ctx, b, a, nil)
	if err != nil || created {
		t.Fatalf("reverse Open = %v, %v; want existing", created, err)
	}
	if again.ID != first.ID {
		t.Errorf("reverse Open returned %s, want %s", again.ID, first.ID)
	}
	scoped, created, err := svc.Open(ctx, a, b, &event)
	if err != nil || !created || scoped.ID == first.ID {
		t.Errorf("event-scoped Open = %v, %v; want a new thread", created, err)
	}
	if len(store.threads) != 2 {
		t.Errorf("threads = %d, want 2", len(store.threads))
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	a := uuid.New()
	svc := NewService(&memStore{}, nil)

	var verr *apperr.ValidationError
	if _, _, err := svc.Open(ctx, a, a, nil); !errors.As(err, &verr) {
		t.Errorf("self err = %v, want ValidationError", err)
	}
	if _, _, err := svc.Open(ctx, a, uuid.Nil, nil); !errors.As(err, &verr) {
		t.Errorf("nil counterpart err = %v, want ValidationError", err)
	}

	boom := errors.New("db down")
	svc = NewService(&memStore{findErr: boom}, nil)
	if _, _, err := svc.Open(ctx, a, uuid.New(), nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
