// internal/models/voice_session.go
package models

import "time"

// VoiceSession represents a row in the voice_sessions table: exactly one row
// per currently-open ephemeral room, keyed by the room's channel id. The row
// is created the moment provisioning succeeds and deleted the moment the
// room empties; the owner field is rewritten on succession.
type VoiceSession struct {
	ID            int64     `json:"id"`
	LobbyID       int64     `json:"lobby_id"`
	ChannelID     string    `json:"channel_id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	UserLimit     int       `json:"user_limit"` // 0 => unlimited
	IsLocked      bool      `json:"is_locked"`
	IsHidden      bool      `json:"is_hidden"`
	TextChannelID string    `json:"text_channel_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
