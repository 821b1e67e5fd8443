package matching

import "math"

// Weights maps a lower-cased token to its importance weight.
type Weights map[string]float64

// Of returns the weight for token, defaulting to 1 for unseen tokens.
func (w Weights) Of(token string) float64 {
	if v, ok := w[token]; ok {
		return v
	}
	return 1
}

// EstimateWeights computes a smoothed inverse document frequency over the
// categorical fields of a sampled population:
//
//	weight = ln((N+1)/(df+1)) + 1, rounded to 3 decimals
//
// where N is the sample size (at least 1) and df the number of sampled
// profiles containing the token in any category.
func EstimateWeights(sample []Signals) Weights {
	df := make(map[string]int)
	for _, s := range sample {
		seen := make(map[string]struct{})
		for _, c := range Categories {
			for _, tok := range s.Tokens(c) {
				if _, ok := seen[tok]; ok {
					continue
				}
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}
	n := len(sample)
	if n < 1 {
		n = 1
	}
	w := make(Weights, len(df))
	for tok, count := range df {
		w[tok] = round3(math.Log(float64(n+1)/float64(count+1)) + 1)
	}
	return w
}

func round3(v float64) float64 {
	return math.Floor(v*1000+0.5) / 1000
}

// roundHalfUp rounds x.5 towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
