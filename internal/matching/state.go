package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// GenerationState tracks whether match generation already ran for a session.
type GenerationState string

const (
	StateNotStarted GenerationState = "not_started"
	StateInProgress GenerationState = "in_progress"
	StateDone       GenerationState = "done"
)

// StateStore persists GenerationState per key.
type StateStore interface {
	Get(ctx context.Context, key string) (GenerationState, error)
	// Claim moves key from NotStarted to InProgress. It reports false when
	// another caller already claimed or finished the key.
	Claim(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, state GenerationState) error
}

// StateKey scopes the generation flag to one session, profile and event.
func StateKey(sessionID string, profileID uuid.UUID, eventID *uuid.UUID) string {
	event := "global"
	if eventID != nil {
		event = eventID.String()
	}
	return fmt.Sprintf("networking:matchgen:%s:%s:%s", sessionID, profileID, event)
}

// RedisStateStore keeps generation state in Redis so every API instance
// serving a session sees the same flag.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore creates a Redis-backed state store. Keys expire after ttl.
func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStateStore{client: client, ttl: ttl}
}

// Get returns the state for key, NotStarted when absent.
func (s *RedisStateStore) Get(ctx context.Context, key string) (GenerationState, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return StateNotStarted, nil
	}
	if err != nil {
		return "", fmt.Errorf("get generation state: %w", err)
	}
	return GenerationState(v), nil
}

// Claim atomically sets key to InProgress if it is unset.
func (s *RedisStateStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, string(StateInProgress), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim generation state: %w", err)
	}
	return ok, nil
}

// Set stores state for key. NotStarted deletes the key.
func (s *RedisStateStore) Set(ctx context.Context, key string, state GenerationState) error {
	var err error
	if state == StateNotStarted {
		err = s.client.Del(ctx, key).Err()
	} else {
		err = s.client.Set(ctx, key, string(state), s.ttl).Err()
	}
	if err != nil {
		return fmt.Errorf("set generation state: %w", err)
	}
	return nil
}

// MemoryStateStore is an in-process StateStore.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]GenerationState
}

// NewMemoryStateStore creates an empty in-process store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]GenerationState)}
}

func (s *MemoryStateStore) Get(_ context.Context, key string) (GenerationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[key]; ok {
		return st, nil
	}
	return StateNotStarted, nil
}

func (s *MemoryStateStore) Claim(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[key]; ok && st != StateNotStarted {
		return false, nil
	}
	s.states[key] = StateInProgress
	return true, nil
}

func (s *MemoryStateStore) Set(_ context.Context, key string, state GenerationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == StateNotStarted {
		delete(s.states, key)
		return nil
	}
	s.states[key] = state
	return nil
}
