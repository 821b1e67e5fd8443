package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
)

// MatchStore is the persistence the matching service needs.
type MatchStore interface {
	ListByProfile(ctx context.Context, profileID uuid.UUID, eventID *uuid.UUID) ([]models.Match, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	CreateMany(ctx context.Context, matches []models.Match) ([]models.Match, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score int, reason string, tags []string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.MatchStatus) error
	ListOwners(ctx context.Context) ([]Owner, error)
}

// ProfileSource loads profiles for scoring.
type ProfileSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	ListCandidates(ctx context.Context, excludeID uuid.UUID, limit int) ([]models.Profile, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error)
}

// Owner identifies one (profile, event key) match list.
type Owner struct {
	ProfileID uuid.UUID
	EventID   *uuid.UUID
}

// Options tunes generation.
type Options struct {
	PoolSize    int
	MinScore    int
	MaxPrimary  int
	MaxFallback int
}

// DefaultOptions returns the production thresholds.
func DefaultOptions() Options {
	return Options{PoolSize: 80, MinScore: 35, MaxPrimary: 12, MaxFallback: 8}
}

// Service generates, refreshes and lists matches.
type Service struct {
	matches  MatchStore
	profiles ProfileSource
	states   StateStore
	opts     Options
	logger   *zap.Logger
}

// NewService creates a matching service.
func NewService(matches MatchStore, profiles ProfileSource, states StateStore, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.PoolSize <= 0 {
		opts.PoolSize = def.PoolSize
	}
	if opts.MinScore <= 0 {
		opts.MinScore = def.MinScore
	}
	if opts.MaxPrimary <= 0 {
		opts.MaxPrimary = def.MaxPrimary
	}
	if opts.MaxFallback <= 0 {
		opts.MaxFallback = def.MaxFallback
	}
	return &Service{matches: matches, profiles: profiles, states: states, opts: opts, logger: logger}
}

// Load returns the stored matches for profileID. When none exist it generates
// them, at most once per session; when the stored scores look stale it
// refreshes them in place.
func (s *Service) Load(ctx context.Context, sessionID string, profileID uuid.UUID, eventID *uuid.UUID) ([]models.Match, error) {
	existing, err := s.matches.ListByProfile(ctx, profileID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	if len(existing) > 0 {
		if !NeedsRefresh(existing) {
			return existing, nil
		}
		return s.Refresh(ctx, profileID, existing)
	}

	key := StateKey(sessionID, profileID, eventID)
	st, err := s.states.Get(ctx, key)
	if err != nil {
		s.logger.Warn("read generation state failed", zap.String("key", key), zap.Error(err))
	} else if st != StateNotStarted {
		return existing, nil
	}
	claimed, err := s.states.Claim(ctx, key)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return existing, nil
	}
	created, err := s.Generate(ctx, profileID, eventID)
	if err != nil {
		if resetErr := s.states.Set(ctx, key, StateNotStarted); resetErr != nil {
			s.logger.Warn("reset generation state failed", zap.String("key", key), zap.Error(resetErr))
		}
		return nil, err
	}
	if err := s.states.Set(ctx, key, StateDone); err != nil {
		s.logger.Warn("mark generation done failed", zap.String("key", key), zap.Error(err))
	}
	return created, nil
}

// Visible filters out dismissed matches and orders the rest by score.
func Visible(list []models.Match) []models.Match {
	out := make([]models.Match, 0, len(list))
	for _, m := range list {
		if m.Status != models.MatchStatusDismissed {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// WithStatus keeps the matches in status st, ordered by score. Dismissed
// matches are only returned when asked for explicitly.
func WithStatus(list []models.Match, st models.MatchStatus) []models.Match {
	out := make([]models.Match, 0, len(list))
	for _, m := range list {
		if m.Status == st {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Dismiss hides a new match from its owner's suggestions.
func (s *Service) Dismiss(ctx context.Context, profileID, matchID uuid.UUID) (*models.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	if m.ProfileID != profileID {
		return nil, apperr.ErrForbidden
	}
	if !IsTransitionAllowed(m.Status, models.MatchStatusDismissed) {
		return nil, fmt.Errorf("match %s → dismissed: %w", m.Status, apperr.ErrInvalidTransition)
	}
	if err := s.matches.UpdateStatus(ctx, m.ID, models.MatchStatusDismissed); err != nil {
		return nil, fmt.Errorf("dismiss match: %w", err)
	}
	m.Status = models.MatchStatusDismissed
	return m, nil
}
