package matching_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/matching"
	"github.com/aura-events/networking/internal/models"
)

type fixture struct {
	svc      *matching.Service
	matches  *memMatches
	profiles *memProfiles
	states   *matching.MemoryStateStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{matches: &memMatches{}, profiles: &memProfiles{}, states: matching.NewMemoryStateStore()}
	f.svc = matching.NewService(f.matches, f.profiles, f.states, matching.DefaultOptions(), zaptest.NewLogger(t))
	return f
}

func TestLoad_GeneratesPrimaryMatches(t *testing.T) {
	f := newFixture(t)
	self := f.profiles.add(fintechProfile())
	var good []uuid.UUID
	for i := 0; i < 3; i++ {
		good = append(good, f.profiles.add(fintechProfile()).ID)
	}
	f.profiles.add(models.Profile{Industry: "Retail"})
	f.profiles.add(disabled(fintechProfile()))

	list, err := f.svc.Load(context.Background(), "s1", self.ID, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list) < 1 || len(list) > 12 {
		t.Fatalf("generated %d matches, want 1..12", len(list))
	}
	var got []uuid.UUID
	for i, m := range list {
		if m.Status != models.MatchStatusNew {
			t.Errorf("match %d status = %s, want new", i, m.Status)
		}
		if m.Score < 35 {
			t.Errorf("match %d score = %d, want >= 35", i, m.Score)
		}
		if i > 0 && list[i-1].Score < m.Score {
			t.Errorf("matches not sorted by score: %d before %d", list[i-1].Score, m.Score)
		}
		got = append(got, m.MatchedProfileID)
	}
	sortIDs(got)
	sortIDs(good)
	if diff := cmp.Diff(good, got); diff != "" {
		t.Errorf("matched profiles mismatch (-want +got):\n%s", diff)
	}
	if st, _ := f.states.Get(context.Background(), matching.StateKey("s1", self.ID, nil)); st != matching.StateDone {
		t.Errorf("generation state = %s, want done", st)
	}
}

func TestLoad_FallbackWhenNothingQualifies(t *testing.T) {
	f := newFixture(t)
	self := f.profiles.add(fintechProfile())
	retail := f.profiles.add(models.Profile{Industry: "Retail"})
	blank := f.profiles.add(models.Profile{})

	list, err := f.svc.Load(context.Background(), "s1", self.ID, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("generated %d fallback matches, want 2", len(list))
	}
	tags := map[uuid.UUID][]string{}
	for _, m := range list {
		if m.Score < 10 || m.Score >= 35 {
			t.Errorf("fallback score = %d, want within [10, 35)", m.Score)
		}
		tags[m.MatchedProfileID] = m.Tags
	}
	want := map[uuid.UUID][]string{
		retail.ID: {"retail"},
		blank.ID:  {matching.FallbackTag},
	}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Errorf("fallback tags mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CapsMatchCount(t *testing.T) {
	tests := []struct {
		name      string
		candidate func() models.Profile
		want      int
	}{
		{"primary capped", fintechProfile, 12},
		{"fallback capped", func() models.Profile { return models.Profile{Industry: "Retail"} }, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			self := f.profiles.add(fintechProfile())
			for i := 0; i < 20; i++ {
				f.profiles.add(tt.candidate())
			}

			list, err := f.svc.Load(context.Background(), "s1", self.ID, nil)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(list) != tt.want {
				t.Fatalf("generated %d matches, want %d", len(list), tt.want)
			}
			for i := 1; i < len(list); i++ {
				if list[i-1].Score < list[i].Score {
					t.Errorf("matches not sorted by score: %d before %d", list[i-1].Score, list[i].Score)
				}
			}
		})
	}
}

func TestLoad_DisabledProfileGetsNothing(t *testing.T) {
	f := newFixture(t)
	self := f.profiles.add(disabled(fintechProfile()))
	f.profiles.add(fintechProfile())

	list, err := f.svc.Load(context.Background(), "s1", self.ID, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list) != 0 || f.matches.creates != 0 {
		t.Errorf("disabled profile produced %d matches in %d writes", len(list), f.matches.creates)
	}
}

func TestLoad_NoCandidates(t *testing.T) {
	f := newFixture(t)
	self := f.profiles.add(fintechProfile())
	f.profiles.add(disabled(fintechProfile()))

	list, err := f.svc.Load(context.Background(), "s1", self.ID, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list) != 0 || f.matches.creates != 0 {
		t.Errorf("got %d matches in %d writes, want none", len(list), f.matches.creates)
	}
}

func TestLoad_GeneratesOncePerSession(t *testing.T) {
	f := newFixture(t)
	self := f.profiles.add(fintechProfile())
	f.profiles.add(disabled(fintechProfile()))
	ctx := context.Background()

	if _, err := f.svc.Load(ctx, "s1", self.ID, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	lookups := f.profiles.lookups
	if _, err := f.svc.Load(ctx, "s1", self.ID, nil); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if f.profiles.lookups != lookups {
		t.Errorf("second load in the same session ran generation again")
	}
	if _, err := f.svc.Load(ctx, "s2", self.ID, nil); err != nil {
		t.Fatalf("new session Load: %v", err)
	}
	if f.profiles.lookups == lookups {
		t.Errorf("new session did not run generation")
	}
}

func TestLoad_FailureResetsState(t *testing.T) {
	f := newFixture(t)
	self := f.profiles.add(fintechProfile())
	f.profiles.getErr = errBoom
	ctx := context.Background()

	if _, err := f.svc.Load(ctx, "s1", self.ID, nil); !errors.Is(err, errBoom) {
		t.Fatalf("Load error = %v, want boom", err)
	}
	key := matching.StateKey("s1", self.ID, nil)
	if st, _ := f.states.Get(ctx, key); st != matching.StateNotStarted {
		t.Fatalf("state after failure = %s, want not_started", st)
	}
	f.profiles.getErr = nil
	f.profiles.add(fintechProfile())
	list, err := f.svc.Load(ctx, "s1", self.ID, nil)
	if err != nil {
		t.Fatalf("retry Load: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("retry generated %d matches, want 1", len(list))
	}
}

func TestLoad_InProgressSkipsGeneration(t *testing.T) {
	f := newFixture(t)
	self := f.profiles.add(fintechProfile())
	f.profiles.add(fintechProfile())
	ctx := context.Background()
	if err := f.states.Set(ctx, matching.StateKey("s1", self.ID, nil), matching.StateInProgress); err != nil {
		t.Fatal(err)
	}
	list, err := f.svc.Load(ctx, "s1", self.ID, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list) != 0 || f.matches.creates != 0 {
		t.Errorf("Load generated while another caller held the claim")
	}
}

type countingStates struct {
	*matching.MemoryStateStore
	claims int
}

func (c *countingStates) Claim(ctx context.Context, key string) (bool, error) {
	c.claims++
	return c.MemoryStateStore.Claim(ctx, key)
}

func TestLoad_DoneStateSkipsClaim(t *testing.T) {
	states := &countingStates{MemoryStateStore: matching.NewMemoryStateStore()}
	matches, profiles := &memMatches{}, &memProfiles{}
	svc := matching.NewService(matches, profiles, states, matching.DefaultOptions(), zaptest.NewLogger(t))
	self := profiles.add(fintechProfile())
	profiles.add(fintechProfile())
	ctx := context.Background()

	if err := states.Set(ctx, matching.StateKey("s1", self.ID, nil), matching.StateDone); err != nil {
		t.Fatal(err)
	}
	list, err := svc.Load(ctx, "s1", self.ID, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list) != 0 || matches.creates != 0 || states.claims != 0 {
		t.Errorf("done session: %d matches, %d creates, %d claims, want none", len(list), matches.creates, states.claims)
	}

	if _, err := svc.Load(ctx, "s2", self.ID, nil); err != nil {
		t.Fatalf("Load s2: %v", err)
	}
	if states.claims != 1 || matches.creates != 1 {
		t.Errorf("fresh session: %d claims, %d creates, want 1 and 1", states.claims, matches.creates)
	}
}

func TestLoad_RefreshesStaleScores(t *testing.T) {
	f := newFixture(t)
	self := f.profiles.add(fintechProfile())
	peer := f.profiles.add(fintechProfile())
	gone := uuid.New()
	m1 := f.matches.add(self.ID, peer.ID, 0, models.MatchStatusPending)
	m2 := f.matches.add(self.ID, gone, 0, models.MatchStatusNew)

	list, err := f.svc.Load(context.Background(), "s1", self.ID, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	byID := map[uuid.UUID]models.Match{}
	for _, m := range list {
		byID[m.ID] = m
	}
	if got := byID[m1.ID]; got.Score < 35 || got.Status != models.MatchStatusPending || got.Reason == "" {
		t.Errorf("refreshed match = %+v, want rescored with status kept", got)
	}
	if got := byID[m2.ID]; got.Score != 0 {
		t.Errorf("match with missing counterpart rescored to %d", got.Score)
	}
	if f.matches.updates != 1 {
		t.Errorf("updates = %d, want 1", f.matches.updates)
	}
	if f.matches.creates != 0 {
		t.Errorf("refresh created new match rows")
	}
}

func TestLoad_FreshScoresUntouched(t *testing.T) {
	f := newFixture(t)
	self := f.profiles.add(fintechProfile())
	for _, score := range []int{40, 50, 60} {
		f.matches.add(self.ID, uuid.New(), score, models.MatchStatusNew)
	}
	if _, err := f.svc.Load(context.Background(), "s1", self.ID, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.matches.updates != 0 || f.profiles.lookups != 0 {
		t.Errorf("fresh matches triggered a refresh")
	}
}

func TestNeedsRefresh(t *testing.T) {
	tests := []struct {
		scores []int
		want   bool
	}{
		{nil, false},
		{[]int{50}, true},
		{[]int{50, 50, 60}, true},
		{[]int{50, 60, 70}, false},
	}
	for _, tt := range tests {
		var list []models.Match
		for _, s := range tt.scores {
			list = append(list, models.Match{Score: s})
		}
		if got := matching.NeedsRefresh(list); got != tt.want {
			t.Errorf("NeedsRefresh(%v) = %v, want %v", tt.scores, got, tt.want)
		}
	}
}

func TestRefreshAll(t *testing.T) {
	f := newFixture(t)
	stale := f.profiles.add(fintechProfile())
	fresh := f.profiles.add(fintechProfile())
	f.matches.add(stale.ID, fresh.ID, 0, models.MatchStatusNew)
	for _, score := range []int{40, 50, 60} {
		f.matches.add(fresh.ID, stale.ID, score, models.MatchStatusNew)
	}

	n, err := f.svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	if n != 1 || f.matches.updates != 1 {
		t.Errorf("refreshed %d owners with %d updates, want 1 and 1", n, f.matches.updates)
	}
}

func TestDismiss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	m := f.matches.add(owner, other, 50, models.MatchStatusNew)
	pending := f.matches.add(owner, uuid.New(), 60, models.MatchStatusPending)

	if _, err := f.svc.Dismiss(ctx, other, m.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("Dismiss by non-owner = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Dismiss(ctx, owner, pending.ID); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("Dismiss pending = %v, want ErrInvalidTransition", err)
	}
	got, err := f.svc.Dismiss(ctx, owner, m.ID)
	if err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if got.Status != models.MatchStatusDismissed {
		t.Errorf("status = %s, want dismissed", got.Status)
	}

	list, _ := f.matches.ListByProfile(ctx, owner, nil)
	visible := matching.Visible(list)
	if len(visible) != 1 || visible[0].ID != pending.ID {
		t.Errorf("Visible = %+v, want only the pending match", visible)
	}
	st, err := matching.ParseStatus("dismissed")
	if err != nil {
		t.Fatalf("ParseStatus: %v", err)
	}
	hidden := matching.WithStatus(list, st)
	if len(hidden) != 1 || hidden[0].ID != m.ID {
		t.Errorf("WithStatus(dismissed) = %+v, want only %s", hidden, m.ID)
	}
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
