package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/models"
)

// FallbackTag marks fallback matches with no category tokens to show.
const FallbackTag = "Potential fit"

const maxFallbackTags = 3

type scored struct {
	candidate models.Profile
	result    Result
	tags      []string
}

// Generate scores profileID against a bounded candidate pool and persists the
// top matches with status new. It returns nil when the profile opted out of
// networking, when no enabled candidate exists or when nothing qualifies.
func (s *Service) Generate(ctx context.Context, profileID uuid.UUID, eventID *uuid.UUID) ([]models.Match, error) {
	self, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	selfSig := Extract(self)
	if !selfSig.Enabled {
		s.logger.Debug("networking disabled, skipping match generation", zap.String("profile_id", profileID.String()))
		return nil, nil
	}

	pool, err := s.profiles.ListCandidates(ctx, profileID, s.opts.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	sigs := make([]Signals, len(pool))
	for i := range pool {
		sigs[i] = Extract(&pool[i])
	}
	weights := EstimateWeights(sigs)

	var primary, fallback []scored
	for i, cand := range pool {
		if cand.ID == profileID || !sigs[i].Enabled {
			continue
		}
		r := Score(selfSig, sigs[i], weights, Seed(profileID.String(), cand.ID.String()))
		if r.Score >= s.opts.MinScore {
			primary = append(primary, scored{candidate: cand, result: r, tags: r.Tags})
			continue
		}
		if r.Score < minScore {
			r.Score = minScore
		}
		fallback = append(fallback, scored{candidate: cand, result: r, tags: fallbackTags(sigs[i])})
	}

	picked := topN(primary, s.opts.MaxPrimary)
	if len(picked) == 0 {
		picked = topN(fallback, s.opts.MaxFallback)
	}
	if len(picked) == 0 {
		return nil, nil
	}

	rows := make([]models.Match, 0, len(picked))
	for _, p := range picked {
		rows = append(rows, models.Match{
			ProfileID:        profileID,
			MatchedProfileID: p.candidate.ID,
			EventID:          eventID,
			Score:            p.result.Score,
			Reason:           p.result.Reason,
			Tags:             p.tags,
			Status:           models.MatchStatusNew,
		})
	}
	created, err := s.matches.CreateMany(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("persist matches: %w", err)
	}
	s.logger.Info("matches generated",
		zap.String("profile_id", profileID.String()),
		zap.Int("candidates", len(pool)),
		zap.Int("matches", len(created)),
	)
	return created, nil
}

// NeedsRefresh reports whether stored matches look stale: at most two
// distinct score values across a non-empty set.
func NeedsRefresh(existing []models.Match) bool {
	if len(existing) == 0 {
		return false
	}
	distinct := make(map[int]struct{})
	for _, m := range existing {
		distinct[m.Score] = struct{}{}
		if len(distinct) > 2 {
			return false
		}
	}
	return true
}

// Refresh re-scores existing matches against current profiles and token
// weights, persisting score, reason and tags per match id. Match identity and
// status are left untouched. Matches whose counterpart no longer exists are
// returned unchanged.
func (s *Service) Refresh(ctx context.Context, profileID uuid.UUID, existing []models.Match) ([]models.Match, error) {
	self, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	selfSig := Extract(self)

	pool, err := s.profiles.ListCandidates(ctx, profileID, s.opts.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	sigs := make([]Signals, len(pool))
	for i := range pool {
		sigs[i] = Extract(&pool[i])
	}
	weights := EstimateWeights(sigs)

	ids := make([]uuid.UUID, 0, len(existing))
	for _, m := range existing {
		ids = append(ids, m.MatchedProfileID)
	}
	others, err := s.profiles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load matched profiles: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Profile, len(others))
	for i := range others {
		byID[others[i].ID] = &others[i]
	}

	out := make([]models.Match, len(existing))
	copy(out, existing)
	for i := range out {
		other, ok := byID[out[i].MatchedProfileID]
		if !ok {
			continue
		}
		otherSig := Extract(other)
		r := Score(selfSig, otherSig, weights, Seed(profileID.String(), other.ID.String()))
		tags := r.Tags
		if len(tags) == 0 {
			tags = fallbackTags(otherSig)
		}
		if err := s.matches.UpdateScore(ctx, out[i].ID, r.Score, r.Reason, tags); err != nil {
			return nil, fmt.Errorf("update match %s: %w", out[i].ID, err)
		}
		out[i].Score, out[i].Reason, out[i].Tags = r.Score, r.Reason, tags
	}
	s.logger.Debug("matches refreshed", zap.String("profile_id", profileID.String()), zap.Int("matches", len(out)))
	return out, nil
}

// RefreshAll applies Refresh to every match owner whose matches look stale.
// Failures are logged per owner and do not stop the sweep.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	owners, err := s.matches.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list match owners: %w", err)
	}
	refreshed := 0
	for _, o := range owners {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		existing, err := s.matches.ListByProfile(ctx, o.ProfileID, o.EventID)
		if err != nil {
			s.logger.Warn("sweep list matches failed", zap.String("profile_id", o.ProfileID.String()), zap.Error(err))
			continue
		}
		if !NeedsRefresh(existing) {
			continue
		}
		if _, err := s.Refresh(ctx, o.ProfileID, existing); err != nil {
			s.logger.Warn("sweep refresh failed", zap.String("profile_id", o.ProfileID.String()), zap.Error(err))
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func topN(list []scored, n int) []scored {
	sort.SliceStable(list, func(i, j int) bool { return list[i].result.Score > list[j].result.Score })
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}

// fallbackTags takes the leading industry, interest and topic tokens of a candidate.
func fallbackTags(sig Signals) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, c := range []Category{CategoryIndustries, CategoryInterests, CategoryTopics} {
		for _, tok := range sig.Tokens(c) {
			if len(tags) == maxFallbackTags {
				return tags
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			tags = append(tags, tok)
		}
	}
	if len(tags) == 0 {
		return []string{FallbackTag}
	}
	return tags
}
