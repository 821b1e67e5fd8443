package meetings

import (
	"sort"
	"strings"
	"time"

	"github.com/aura-events/networking/internal/models"
)

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

// Remaining returns the free places of a session, never below zero.
func Remaining(s models.EventSession) int {
	if r := s.Capacity - s.Attendees; r > 0 {
		return r
	}
	return 0
}

// Selectable reports whether a session can still be booked as a meeting slot.
func Selectable(s models.EventSession) bool {
	return Remaining(s) > 0
}

// Country derives the country of an event from the last comma segment of its location.
func Country(location string) string {
	parts := strings.Split(location, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// HostsInPerson reports whether an event's format allows on-site meetings.
func HostsInPerson(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case models.EventFormatInPerson, models.EventFormatHybrid:
		return true
	}
	return false
}

// CatalogFilter narrows the in-person booking catalog. Empty fields match everything.
type CatalogFilter struct {
	Country string
	Date    string // DateLayout, compared against the event start in loc
}

// FilterEvents keeps non-virtual events matching f.
func FilterEvents(events []models.Event, f CatalogFilter, loc *time.Location) []models.Event {
	if loc == nil {
		loc = time.Local
	}
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if !HostsInPerson(e.Format) {
			continue
		}
		if f.Country != "" && !strings.EqualFold(Country(e.Location), strings.TrimSpace(f.Country)) {
			continue
		}
		if f.Date != "" && e.StartsAt.In(loc).Format(DateLayout) != f.Date {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Countries lists the distinct non-empty countries of events, sorted.
func Countries(events []models.Event) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range events {
		c := Country(e.Location)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Slot is a session annotated with its availability.
type Slot struct {
	models.EventSession
	Remaining  int  `json:"remaining"`
	Selectable bool `json:"selectable"`
}

// Slots annotates sessions with availability.
func Slots(sessions []models.EventSession) []Slot {
	out := make([]Slot, len(sessions))
	for i, s := range sessions {
		out[i] = Slot{EventSession: s, Remaining: Remaining(s), Selectable: Selectable(s)}
	}
	return out
}
