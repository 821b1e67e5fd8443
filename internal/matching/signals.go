// Package matching implements B2B profile matchmaking: signal extraction,
// IDF-style token weighting, pairwise scoring and match generation/refresh.
package matching

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/aura-events/networking/internal/models"
)

// Category names a categorical signal field.
type Category string

const (
	CategoryIndustries Category = "industries"
	CategoryInterests  Category = "interests"
	CategoryTopics     Category = "topics"
	CategoryGoals      Category = "goals"
	CategorySkills     Category = "skills"
	CategoryRole       Category = "role"
	CategoryCompany    Category = "company"
	CategoryLocation   Category = "location"
)

// Categories lists the categorical fields in scoring order.
var Categories = []Category{
	CategoryIndustries,
	CategoryInterests,
	CategoryTopics,
	CategoryGoals,
	CategorySkills,
	CategoryRole,
	CategoryCompany,
	CategoryLocation,
}

// Signals is the normalized scoring input extracted from a profile.
type Signals struct {
	Industries      []string
	Interests       []string
	Topics          []string
	Goals           []string
	Skills          []string
	Role            []string
	Company         []string
	Location        []string
	YearsExperience float64
	CompanySize     []string
	Enabled         bool
}

// Tokens returns the token list for a category.
func (s Signals) Tokens(c Category) []string {
	switch c {
	case CategoryIndustries:
		return s.Industries
	case CategoryInterests:
		return s.Interests
	case CategoryTopics:
		return s.Topics
	case CategoryGoals:
		return s.Goals
	case CategorySkills:
		return s.Skills
	case CategoryRole:
		return s.Role
	case CategoryCompany:
		return s.Company
	case CategoryLocation:
		return s.Location
	}
	return nil
}

// TotalTokens is the sum of all categorical list lengths.
func (s Signals) TotalTokens() int {
	n := 0
	for _, c := range Categories {
		n += len(s.Tokens(c))
	}
	return n
}

// Normalize splits every value on commas, trims and lower-cases the parts and
// drops empty ones. Normalize(Normalize(x)...) equals Normalize(x...).
func Normalize(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Extract turns a profile into Signals. Missing or malformed fields degrade to
// empty lists and defaults; a nil profile yields an enabled, empty signal set.
func Extract(p *models.Profile) Signals {
	if p == nil {
		return Signals{Enabled: true}
	}
	b := p.B2B
	s := Signals{
		Industries:      Normalize(append([]string{p.Industry}, b.Industries...)...),
		Interests:       Normalize(b.Interests...),
		Topics:          Normalize(b.MeetingTopics...),
		Goals:           Normalize(b.MeetingGoals...),
		Skills:          Normalize(b.Skills...),
		Role:            append(Normalize(p.JobTitle), Normalize(p.Department)...),
		Company:         Normalize(p.Company),
		Location:        Normalize(p.Location),
		YearsExperience: parseYears(p.YearsExperience),
		CompanySize:     Normalize(p.CompanySize),
		Enabled:         true,
	}
	if b.Enabled.IsFalse() {
		s.Enabled = false
	}
	return s
}

// parseYears reads the leading number of values like "5", "7.5" or "10+".
func parseYears(raw string) float64 {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && (unicode.IsDigit(rune(raw[end])) || raw[end] == '.') {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(raw[:end], 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
