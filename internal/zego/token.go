// Package zego issues ZEGOCLOUD rooms for video meetings.
package zego

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZEGOCLOUD/zego_server_assistant/token/go/src/token04"
	"github.com/google/uuid"

	"github.com/aura-events/networking/config"
)

// RtcRoomPayload is the token04 payload restricting a token to one room.
type RtcRoomPayload struct {
	RoomID       string      `json:"RoomId"`
	Privilege    map[int]int `json:"Privilege"`
	StreamIDList []string    `json:"StreamIdList,omitempty"`
}

// Rooms maps meetings to ZEGOCLOUD rooms. The room id is the meeting id.
type Rooms struct {
	appID   uint32
	secret  string
	baseURL string
	ttl     time.Duration
}

// NewRooms returns nil when rooms are not configured.
func NewRooms(cfg config.ZegoConfig) (*Rooms, error) {
	if cfg.AppID == 0 || cfg.RoomBaseURL == "" {
		return nil, nil
	}
	if len(cfg.ServerSecret) != 32 {
		return nil, fmt.Errorf("zego: server_secret must be 32 characters")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Rooms{appID: cfg.AppID, secret: cfg.ServerSecret, baseURL: cfg.RoomBaseURL, ttl: ttl}, nil
}

// AppID returns the ZEGOCLOUD application id clients connect with.
func (r *Rooms) AppID() uint32 { return r.appID }

// RoomURL returns the join link stored on a video meeting.
func (r *Rooms) RoomURL(meetingID uuid.UUID) string {
	return r.baseURL + "/" + meetingID.String()
}

// JoinToken issues a token letting profileID log in and publish in the meeting's room.
// Both parties of a meeting publish.
func (r *Rooms) JoinToken(meetingID, profileID uuid.UUID) (string, error) {
	return GenerateRoomToken(r.appID, r.secret, meetingID.String(), profileID.String(), true, int64(r.ttl/time.Second))
}

// GenerateRoomToken generates a token04 token for userID in roomID.
func GenerateRoomToken(appID uint32, serverSecret, roomID, userID string, publish bool, effectiveTimeSec int64) (string, error) {
	if appID == 0 || serverSecret == "" {
		return "", fmt.Errorf("zego: app_id and server_secret required")
	}
	privilege := map[int]int{
		token04.PrivilegeKeyLogin:   token04.PrivilegeEnable,
		token04.PrivilegeKeyPublish: token04.PrivilegeDisable,
	}
	if publish {
		privilege[token04.PrivilegeKeyPublish] = token04.PrivilegeEnable
	}
	payload, err := json.Marshal(RtcRoomPayload{RoomID: roomID, Privilege: privilege})
	if err != nil {
		return "", fmt.Errorf("zego: marshal payload: %w", err)
	}
	return token04.GenerateToken04(appID, userID, serverSecret, effectiveTimeSec, string(payload))
}
