package matching

import (
	"math"
	"strings"
)

// categoryWeights sum to 118.
var categoryWeights = map[Category]float64{
	CategoryIndustries: 30,
	CategoryInterests:  25,
	CategoryTopics:     20,
	CategoryGoals:      15,
	CategorySkills:     10,
	CategoryRole:       8,
	CategoryCompany:    6,
	CategoryLocation:   4,
}

var categoryLabels = map[Category]string{
	CategoryIndustries: "industry",
	CategoryInterests:  "interests",
	CategoryTopics:     "meeting topics",
	CategoryGoals:      "networking goals",
}

const (
	maxTags         = 4
	maxReasonTokens = 2
	minScore        = 10
	maxScore        = 100
	coveragePenalty = 25
	maxSignalBoost  = 12
	jitterRange     = 7

	// GenericReason is used when no category shares a token.
	GenericReason = "Suggested based on your profile details."
)

// Result is the outcome of scoring one pair.
type Result struct {
	Score        int
	Tags         []string
	Reason       string
	BestCategory Category
}

// Score computes the 0-100 compatibility of other from self's point of view.
// A non-empty seed adds a deterministic 0-6 jitter derived from the seed.
func Score(self, other Signals, weights Weights, seed string) Result {
	var (
		categorySum float64
		bestScore   float64
		best        Category
		bestShared  []string
		tags        []string
		tagSeen     = make(map[string]struct{})
	)

	for _, c := range Categories {
		a, b := self.Tokens(c), other.Tokens(c)
		if len(a) == 0 || len(b) == 0 {
			continue
		}
		overlap, shared := weightedOverlap(a, b, weights)
		contribution := categoryWeights[c] * overlap
		categorySum += contribution
		if contribution > bestScore {
			bestScore = contribution
			best = c
			bestShared = shared
		}
		for _, tok := range shared {
			if len(tags) >= maxTags {
				break
			}
			if _, ok := tagSeen[tok]; ok {
				continue
			}
			tagSeen[tok] = struct{}{}
			tags = append(tags, tok)
		}
	}

	bonus := proximityBonus(self, other)
	boost := math.Min(maxSignalBoost, float64(roundHalfUp(float64(self.TotalTokens()+other.TotalTokens())/6)))
	base := roundHalfUp(categorySum + bonus + boost)
	if base > maxScore {
		base = maxScore
	}

	penalty := 0
	if len(self.Industries)+len(self.Interests)+len(self.Topics) == 0 {
		penalty = coveragePenalty
	}
	score := base - penalty
	if score < minScore {
		score = minScore
	}
	if seed != "" {
		score += Jitter(seed)
	}
	if score > maxScore {
		score = maxScore
	}

	return Result{
		Score:        score,
		Tags:         tags,
		Reason:       reason(best, bestShared),
		BestCategory: best,
	}
}

// weightedOverlap returns sum(w(shared)) / sum(w(union)) and the shared tokens
// in the order they appear in a.
func weightedOverlap(a, b []string, weights Weights) (float64, []string) {
	inB := make(map[string]struct{}, len(b))
	for _, tok := range b {
		inB[tok] = struct{}{}
	}
	var (
		inter, union float64
		shared       []string
		seen         = make(map[string]struct{}, len(a)+len(b))
	)
	for _, tok := range a {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		w := weights.Of(tok)
		union += w
		if _, ok := inB[tok]; ok {
			inter += w
			shared = append(shared, tok)
		}
	}
	for _, tok := range b {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		union += weights.Of(tok)
	}
	if union == 0 {
		return 0, shared
	}
	return inter / union, shared
}

func proximityBonus(self, other Signals) float64 {
	var bonus float64
	if self.YearsExperience > 0 && other.YearsExperience > 0 {
		diff := math.Abs(self.YearsExperience - other.YearsExperience)
		switch {
		case diff <= 2:
			bonus += 6
		case diff <= 5:
			bonus += 3
		}
	}
	if len(self.CompanySize) > 0 && len(other.CompanySize) > 0 && anyEqualFold(self.CompanySize, other.CompanySize) {
		bonus += 4
	}
	return bonus
}

func anyEqualFold(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

func reason(best Category, shared []string) string {
	if best == "" || len(shared) == 0 {
		return GenericReason
	}
	label, ok := categoryLabels[best]
	if !ok {
		label = "skills"
	}
	if len(shared) > maxReasonTokens {
		shared = shared[:maxReasonTokens]
	}
	return "Shared " + label + " in " + strings.Join(shared, ", ") + "."
}

// Jitter is a deterministic 0-6 perturbation derived from a rolling hash of seed.
func Jitter(seed string) int {
	var h int32
	for _, r := range seed {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % jitterRange)
}

// Seed builds the jitter seed for a scored pair.
func Seed(selfID, otherID string) string {
	return selfID + ":" + otherID
}
