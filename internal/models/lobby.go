// internal/models/lobby.go
package models

// Lobby represents a row in the lobbies table: a configured entry-point
// voice channel that spawns ephemeral rooms. One lobby per entry channel
// (unique constraint on channel_id).
type Lobby struct {
	ID               int64  `json:"id"`
	GuildID          string `json:"guild_id"`
	ChannelID        string `json:"channel_id"`
	CategoryID       string `json:"category_id,omitempty"`
	DefaultUserLimit int    `json:"default_user_limit"` // 0 => unlimited
}
