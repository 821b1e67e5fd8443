package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tokens is a loosely typed list field from a profile blob. It accepts a
// comma-separated string, an array of strings or numbers, or null.
type Tokens []string

// UnmarshalJSON decodes any of the accepted shapes. Unsupported shapes decode
// to an empty list instead of failing.
func (t *Tokens) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = nil
		return nil
	}
	*t = tokensFrom(raw)
	return nil
}

func tokensFrom(raw interface{}) Tokens {
	switch v := raw.(type) {
	case string:
		return Tokens{v}
	case float64:
		return Tokens{strconv.FormatFloat(v, 'f', -1, 64)}
	case []interface{}:
		out := make(Tokens, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case float64:
				out = append(out, strconv.FormatFloat(s, 'f', -1, 64))
			}
		}
		return out
	}
	return nil
}

// Flag is a loosely typed boolean from a profile blob, shaped like sql.NullBool.
// It accepts a bool or a "true"/"false" string. Null and any other shape
// decode as unset instead of failing.
type Flag struct {
	Bool  bool
	Valid bool
}

// FlagOf returns a set Flag.
func FlagOf(v bool) Flag { return Flag{Bool: v, Valid: true} }

// UnmarshalJSON decodes any of the accepted shapes.
func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = Flag{}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case bool:
		*f = FlagOf(v)
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			*f = FlagOf(true)
		case "false":
			*f = FlagOf(false)
		}
	}
	return nil
}

// MarshalJSON writes null when unset.
func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Bool)
}

// IsFalse reports whether the flag was explicitly set to false.
func (f Flag) IsFalse() bool { return f.Valid && !f.Bool }

// B2BProfile is the semi-structured networking blob stored on a profile.
type B2BProfile struct {
	Industries    Tokens `json:"industries"`
	Interests     Tokens `json:"interests"`
	MeetingTopics Tokens `json:"meeting_topics"`
	MeetingGoals  Tokens `json:"meeting_goals"`
	Skills        Tokens `json:"skills"`
	Enabled       Flag   `json:"enabled"`
}

// DecodeB2BProfile decodes a raw blob leniently. Malformed input yields the zero value.
func DecodeB2BProfile(raw []byte) B2BProfile {
	var b B2BProfile
	if len(raw) == 0 {
		return b
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return B2BProfile{}
	}
	return b
}

// Profile is a user/business profile. It is read-only to the networking core.
type Profile struct {
	ID              uuid.UUID  `json:"id"`
	FullName        string     `json:"full_name"`
	Industry        string     `json:"industry"`
	JobTitle        string     `json:"job_title"`
	Department      string     `json:"department"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	YearsExperience string     `json:"years_experience"`
	CompanySize     string     `json:"company_size"`
	B2B             B2BProfile `json:"b2b_profile"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DisplayName returns the profile name or a placeholder when it is missing.
func (p *Profile) DisplayName() string {
	if p == nil || p.FullName == "" {
		return "Unknown user"
	}
	return p.FullName
}

// DisplayTitle returns the job title or a generic placeholder.
func (p *Profile) DisplayTitle() string {
	if p == nil || p.JobTitle == "" {
		return "Professional"
	}
	return p.JobTitle
}
