package service

import (
	"strings"
	"time"

	"softwareprosweb/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultJoinTokenTTL = 2 * time.Hour

// MeetingService issues the short-lived signed join tokens the
// video-conferencing SDK embed expects on the meeting page. The SDK
// itself runs in the browser; the server's only job is the signature.
type MeetingService struct {
	SDKKey    string
	SDKSecret []byte
	TokenTTL  time.Duration

	Now   func() time.Time
	NewID func() string
}

type MeetingJoin struct {
	Room        string    `json:"room"`
	DisplayName string    `json:"display_name"`
	GuestID     string    `json:"guest_id"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *MeetingService) Enabled() bool {
	return s.SDKKey != "" && len(s.SDKSecret) > 0
}

// JoinToken validates the room and mints a join token for a guest.
// Defaults are read into locals so concurrent requests never write the
// shared service struct.
func (s *MeetingService) JoinToken(room, displayName string) (MeetingJoin, error) {
	nowFn := s.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = defaultJoinTokenTTL
	}

	room = strings.TrimSpace(strings.ToLower(room))
	if !validRoomName(room) {
		return MeetingJoin{}, domain.NewValidationError(map[string]string{"room": "must be 3-64 chars [a-z0-9-]"})
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "Guest"
	}

	now := nowFn()
	expiresAt := now.Add(ttl)
	guestID := newID()

	claims := jwt.MapClaims{
		"app_key": s.SDKKey,
		"room":    room,
		"sub":     guestID,
		"name":    displayName,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.SDKSecret)
	if err != nil {
		return MeetingJoin{}, err
	}

	return MeetingJoin{
		Room:        room,
		DisplayName: displayName,
		GuestID:     guestID,
		Token:       token,
		ExpiresAt:   expiresAt,
	}, nil
}

func validRoomName(s string) bool {
	if len(s) < 3 || len(s) > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
