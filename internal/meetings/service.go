// Package meetings schedules one-to-one meetings between profiles, either as
// video calls or bound to an in-person event session.
package meetings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-events/networking/internal/apperr"
	"github.com/aura-events/networking/internal/models"
	"github.com/aura-events/networking/internal/notifications"
)

const (
	// VideoLocation is the location label of virtual meetings.
	VideoLocation = "Video call"
	// OnSiteLocation is used when neither the session nor the event has a location.
	OnSiteLocation = "On-site"

	timeLayout = "15:04"
	actionURL  = "/networking?tab=meetings"
)

// Store persists meetings.
type Store interface {
	Create(ctx context.Context, m *models.Meeting) error
	Update(ctx context.Context, m *models.Meeting) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.MeetingStatus) error
	// ListByProfile returns the profile's meetings ordered by start time ascending.
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Meeting, error)
}

// Catalog reads events and sessions.
type Catalog interface {
	ListEvents(ctx context.Context, formats ...string) ([]models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListSessions(ctx context.Context, eventID uuid.UUID) ([]models.EventSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.EventSession, error)
}

// Rooms issues video rooms. A nil Rooms means meetings carry no call link.
type Rooms interface {
	AppID() uint32
	RoomURL(meetingID uuid.UUID) string
	JoinToken(meetingID, profileID uuid.UUID) (string, error)
}

// ProfileLookup resolves display names for notification copy.
type ProfileLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Options holds scheduler settings.
type Options struct {
	Location      *time.Location
	VideoDuration time.Duration
}

// Service runs the meeting scheduler.
type Service struct {
	store    Store
	catalog  Catalog
	rooms    Rooms
	profiles ProfileLookup
	notifier notifications.Notifier
	opts     Options
	logger   *zap.Logger
}

// NewService creates a meeting scheduler. rooms and profiles may be nil.
func NewService(store Store, catalog Catalog, rooms Rooms, profiles ProfileLookup, notifier notifications.Notifier, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.VideoDuration <= 0 {
		opts.VideoDuration = 30 * time.Minute
	}
	return &Service{
		store:    store,
		catalog:  catalog,
		rooms:    rooms,
		profiles: profiles,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// ScheduleInput is a booking or reschedule. A set MeetingID reschedules that
// meeting; Reschedule without MeetingID targets the current meeting with
// CounterpartID.
type ScheduleInput struct {
	MeetingID     *uuid.UUID
	CounterpartID uuid.UUID
	Reschedule    bool
	Format        models.MeetingFormat
	Date          string // DateLayout, video only
	Time          string // "15:04", video only
	EventID       *uuid.UUID
	SessionID     *uuid.UUID
	Message       string
}

// timing is what a validated booking resolves to.
type timing struct {
	start, end time.Time
	location   string
	eventID    *uuid.UUID
	sessionID  *uuid.UUID
}

// Schedule creates a pending meeting organized by actorID, or overwrites the
// meeting named by in.MeetingID and resets it to pending.
func (s *Service) Schedule(ctx context.Context, actorID uuid.UUID, in ScheduleInput) (*models.Meeting, error) {
	if err := s.validate(actorID, in); err != nil {
		return nil, err
	}

	if in.MeetingID == nil && in.Reschedule {
		list, err := s.store.ListByProfile(ctx, actorID)
		if err != nil {
			return nil, fmt.Errorf("list meetings: %w", err)
		}
		cur := CurrentWith(list, actorID, in.CounterpartID)
		if cur == nil {
			return nil, fmt.Errorf("no current meeting with %s: %w", in.CounterpartID, apperr.ErrNotFound)
		}
		in.MeetingID = &cur.ID
	}

	var existing *models.Meeting
	counterpart := in.CounterpartID
	if in.MeetingID != nil {
		m, err := s.store.GetByID(ctx, *in.MeetingID)
		if err != nil {
			return nil, fmt.Errorf("get meeting: %w", err)
		}
		if !m.HasProfile(actorID) {
			return nil, apperr.ErrNotFound
		}
		counterpart = m.Counterpart(actorID)
		if in.CounterpartID != uuid.Nil && in.CounterpartID != counterpart {
			return nil, apperr.Invalid("counterpart does not match the meeting")
		}
		existing = m
	}

	t, err := s.resolveTiming(ctx, in)
	if err != nil {
		return nil, err
	}

	m := existing
	if m == nil {
		a, b := models.CanonicalPair(actorID, counterpart)
		m = &models.Meeting{ID: uuid.New(), ProfileAID: a, ProfileBID: b}
	}
	m.OrganizerID = actorID
	m.EventID = t.eventID
	m.StartTime = t.start
	m.EndTime = t.end
	m.Location = t.location
	m.Status = models.MeetingStatusPending
	m.Meta = models.MeetingMeta{MeetingFormat: in.Format, SessionID: t.sessionID, Message: strings.TrimSpace(in.Message)}
	m.MeetingType = models.MeetingTypeInPerson
	m.MeetingURL = ""
	if in.Format == models.MeetingFormatVideo {
		m.MeetingType = models.MeetingTypeVideo
		if s.rooms != nil {
			m.MeetingURL = s.rooms.RoomURL(m.ID)
		}
	}

	title := "New meeting request"
	if existing != nil {
		if err := s.store.Update(ctx, m); err != nil {
			return nil, fmt.Errorf("update meeting: %w", err)
		}
		title = "Meeting rescheduled"
	} else if err := s.store.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	s.notifier.Notify(ctx, models.Notification{
		RecipientID: counterpart,
		ActorID:     actorID,
		Title:       title,
		Body:        fmt.Sprintf("%s proposed a meeting on %s.", s.displayName(ctx, actorID), s.when(m.StartTime)),
		Type:        models.NotificationMeetingRequested,
		ActionURL:   actionURL,
	})
	return m, nil
}

// validate checks the input without touching any store.
func (s *Service) validate(actorID uuid.UUID, in ScheduleInput) error {
	switch in.Format {
	case "":
		return apperr.Invalid("select a meeting type")
	case models.MeetingFormatVideo:
		if in.Date == "" || in.Time == "" {
			return apperr.Invalid("select a date and time")
		}
		if _, err := s.parseStart(in.Date, in.Time); err != nil {
			return apperr.Invalid("invalid date or time")
		}
	case models.MeetingFormatInPerson, models.MeetingFormatHybrid:
		if in.EventID == nil || in.SessionID == nil {
			return apperr.Invalid("select an event and a time slot")
		}
	default:
		return apperr.Invalid("unknown meeting type")
	}
	if in.MeetingID == nil && in.CounterpartID == uuid.Nil {
		return apperr.Invalid("counterpart_id is required")
	}
	if in.CounterpartID == actorID {
		return apperr.Invalid("cannot schedule a meeting with yourself")
	}
	return nil
}

func (s *Service) parseStart(date, clock string) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+timeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), s.opts.Location)
}

func (s *Service) resolveTiming(ctx context.Context, in ScheduleInput) (timing, error) {
	if in.Format == models.MeetingFormatVideo {
		start, _ := s.parseStart(in.Date, in.Time)
		return timing{start: start, end: start.Add(s.opts.VideoDuration), location: VideoLocation, eventID: in.EventID}, nil
	}

	session, err := s.catalog.GetSession(ctx, *in.SessionID)
	if errors.Is(err, apperr.ErrNotFound) || (err == nil && session.EventID != *in.EventID) {
		return timing{}, apperr.Invalid("selected slot is not available")
	}
	if err != nil {
		return timing{}, fmt.Errorf("get session: %w", err)
	}
	if session.StartTime == nil {
		return timing{}, apperr.Invalid("selected slot has no start time")
	}
	if !Selectable(*session) {
		return timing{}, apperr.ErrSessionFull
	}
	event, err := s.catalog.GetEvent(ctx, *in.EventID)
	if errors.Is(err, apperr.ErrNotFound) {
		return timing{}, apperr.Invalid("selected event is not available")
	}
	if err != nil {
		return timing{}, fmt.Errorf("get event: %w", err)
	}
	if !HostsInPerson(event.Format) {
		return timing{}, apperr.Invalid("event does not host in-person meetings")
	}

	t := timing{start: *session.StartTime, eventID: in.EventID, sessionID: in.SessionID}
	if session.EndTime != nil {
		t.end = *session.EndTime
	} else {
		t.end = t.start.Add(s.opts.VideoDuration)
	}
	switch {
	case strings.TrimSpace(session.Location) != "":
		t.location = session.Location
	case strings.TrimSpace(event.Location) != "":
		t.location = event.Location
	default:
		t.location = OnSiteLocation
	}
	return t, nil
}

// Confirm is taken by the counterpart on a pending meeting.
func (s *Service) Confirm(ctx context.Context, actorID, meetingID uuid.UUID) (*models.Meeting, error) {
	return s.act(ctx, actorID, meetingID, ActionConfirm)
}

// Decline is taken by the counterpart on a pending meeting.
func (s *Service) Decline(ctx context.Context, actorID, meetingID uuid.UUID) (*models.Meeting, error) {
	return s.act(ctx, actorID, meetingID, ActionDecline)
}

// Cancel is taken by the organizer on a pending meeting.
func (s *Service) Cancel(ctx context.Context, actorID, meetingID uuid.UUID) (*models.Meeting, error) {
	return s.act(ctx, actorID, meetingID, ActionCancel)
}

func (s *Service) act(ctx context.Context, actorID, meetingID uuid.UUID, a Action) (*models.Meeting, error) {
	m, err := s.store.GetByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	if !m.HasProfile(actorID) {
		return nil, apperr.ErrNotFound
	}
	if !mayAct(m, actorID, a) {
		return nil, apperr.ErrForbidden
	}
	to := a.target()
	if !IsTransitionAllowed(m.Status, to) {
		return nil, fmt.Errorf("meeting %s: %s -> %s: %w", m.ID, m.Status, to, apperr.ErrInvalidTransition)
	}
	if err := s.store.UpdateStatus(ctx, m.ID, to); err != nil {
		return nil, fmt.Errorf("update meeting: %w", err)
	}
	m.Status = to

	n := models.Notification{RecipientID: m.Counterpart(actorID), ActorID: actorID, ActionURL: actionURL}
	name, when := s.displayName(ctx, actorID), s.when(m.StartTime)
	switch a {
	case ActionConfirm:
		n.Type, n.Title = models.NotificationMeetingConfirmed, "Meeting confirmed"
		n.Body = fmt.Sprintf("%s confirmed your meeting on %s.", name, when)
	case ActionDecline:
		n.Type, n.Title = models.NotificationMeetingDeclined, "Meeting declined"
		n.Body = fmt.Sprintf("%s declined your meeting on %s.", name, when)
	case ActionCancel:
		n.Type, n.Title = models.NotificationMeetingCancelled, "Meeting cancelled"
		n.Body = fmt.Sprintf("%s cancelled the meeting on %s.", name, when)
	}
	s.notifier.Notify(ctx, n)
	return m, nil
}

// MeetingView is a meeting seen by one of its parties.
type MeetingView struct {
	models.Meeting
	CounterpartID uuid.UUID `json:"counterpart_id"`
	Current       bool      `json:"current"`
	Actions       []Action  `json:"actions"`
}

// List returns the profile's meetings by start time, flagging the current
// meeting per counterpart.
func (s *Service) List(ctx context.Context, profileID uuid.UUID) ([]MeetingView, error) {
	list, err := s.store.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return Views(list, profileID), nil
}

// Views annotates meetings ordered by start time for profileID.
func Views(list []models.Meeting, profileID uuid.UUID) []MeetingView {
	seen := map[uuid.UUID]bool{}
	out := make([]MeetingView, 0, len(list))
	for i := range list {
		m := &list[i]
		cp := m.Counterpart(profileID)
		v := MeetingView{Meeting: *m, CounterpartID: cp, Actions: AllowedActions(m, profileID)}
		if m.Status != models.MeetingStatusCancelled && !seen[cp] {
			seen[cp] = true
			v.Current = true
		}
		if v.Actions == nil {
			v.Actions = []Action{}
		}
		out = append(out, v)
	}
	return out
}

// CurrentWith returns the first non-cancelled meeting with counterpartID, or nil.
func CurrentWith(list []models.Meeting, profileID, counterpartID uuid.UUID) *models.Meeting {
	for i := range list {
		m := &list[i]
		if m.Status != models.MeetingStatusCancelled && m.HasProfile(profileID) && m.Counterpart(profileID) == counterpartID {
			return m
		}
	}
	return nil
}

// JoinInfo is what a client needs to enter a video meeting.
type JoinInfo struct {
	MeetingURL string `json:"meeting_url"`
	RoomID     string `json:"room_id"`
	AppID      uint32 `json:"app_id,omitempty"`
	Token      string `json:"token,omitempty"`
}

// Join returns the call link of a meeting the actor is part of.
func (s *Service) Join(ctx context.Context, actorID, meetingID uuid.UUID) (*JoinInfo, error) {
	m, err := s.store.GetByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	if !m.HasProfile(actorID) {
		return nil, apperr.ErrNotFound
	}
	if m.MeetingURL == "" {
		return nil, apperr.ErrNoMeetingLink
	}
	info := &JoinInfo{MeetingURL: m.MeetingURL, RoomID: m.ID.String()}
	if s.rooms != nil && m.MeetingType == models.MeetingTypeVideo {
		token, err := s.rooms.JoinToken(m.ID, actorID)
		if err != nil {
			return nil, fmt.Errorf("join token: %w", err)
		}
		info.AppID, info.Token = s.rooms.AppID(), token
	}
	return info, nil
}

// CatalogPage is the in-person booking catalog.
type CatalogPage struct {
	Events    []models.Event `json:"events"`
	Countries []string       `json:"countries"`
}

// CatalogEvents lists bookable events matching f, plus the countries available for filtering.
func (s *Service) CatalogEvents(ctx context.Context, f CatalogFilter) (*CatalogPage, error) {
	if f.Date != "" {
		if _, err := time.Parse(DateLayout, f.Date); err != nil {
			return nil, apperr.Invalid("date must be YYYY-MM-DD")
		}
	}
	all, err := s.catalog.ListEvents(ctx, models.EventFormatInPerson, models.EventFormatHybrid)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	inPerson := FilterEvents(all, CatalogFilter{}, s.opts.Location)
	return &CatalogPage{
		Events:    FilterEvents(inPerson, f, s.opts.Location),
		Countries: Countries(inPerson),
	}, nil
}

// CatalogSessions lists the slots of one bookable event.
func (s *Service) CatalogSessions(ctx context.Context, eventID uuid.UUID) ([]Slot, error) {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !HostsInPerson(event.Format) {
		return nil, apperr.ErrNotFound
	}
	sessions, err := s.catalog.ListSessions(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return Slots(sessions), nil
}

func (s *Service) when(t time.Time) string {
	return t.In(s.opts.Location).Format("Mon Jan 2, 15:04")
}

func (s *Service) displayName(ctx context.Context, id uuid.UUID) string {
	if s.profiles == nil {
		return (*models.Profile)(nil).DisplayName()
	}
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return (*models.Profile)(nil).DisplayName()
	}
	return p.DisplayName()
}
