// internal/database/voice_session.go
package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vckeeper/vckeeper/internal/models"
)

const voiceSessionColumns = `
	id, lobby_id, channel_id, owner_id, name, user_limit,
	is_locked, is_hidden, text_channel_id, created_at
`

func scanVoiceSession(row pgx.Row) (*models.VoiceSession, error) {
	var s models.VoiceSession
	err := row.Scan(
		&s.ID,
		&s.LobbyID,
		&s.ChannelID,
		&s.OwnerID,
		&s.Name,
		&s.UserLimit,
		&s.IsLocked,
		&s.IsHidden,
		&s.TextChannelID,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateVoiceSession inserts the session row for a freshly provisioned
// room. The unique constraint on channel_id guarantees at most one live
// session per channel; a duplicate insert fails instead of silently
// doubling up.
func CreateVoiceSession(ctx context.Context, lobbyID int64, channelID, ownerID, name string, userLimit int) (*models.VoiceSession, error) {
	q := `
	INSERT INTO voice_sessions (lobby_id, channel_id, owner_id, name, user_limit)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + voiceSessionColumns
	return scanVoiceSession(DB.QueryRow(ctx, q, lobbyID, channelID, ownerID, name, userLimit))
}

// GetVoiceSessionByChannelID returns the live session for channelID, or
// (nil, nil) when the channel is not an ephemeral room.
func GetVoiceSessionByChannelID(ctx context.Context, channelID string) (*models.VoiceSession, error) {
	q := `SELECT ` + voiceSessionColumns + ` FROM voice_sessions WHERE channel_id = $1`
	s, err := scanVoiceSession(DB.QueryRow(ctx, q, channelID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetAllVoiceSessions lists every live session, newest first.
func GetAllVoiceSessions(ctx context.Context) ([]models.VoiceSession, error) {
	q := `SELECT ` + voiceSessionColumns + ` FROM voice_sessions ORDER BY created_at DESC`
	rows, err := DB.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.VoiceSession
	for rows.Next() {
		s, err := scanVoiceSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// UpdateVoiceSessionOwner rewrites the owner on succession.
func UpdateVoiceSessionOwner(ctx context.Context, sessionID int64, ownerID string) error {
	_, err := DB.Exec(ctx, `UPDATE voice_sessions SET owner_id = $2 WHERE id = $1`, sessionID, ownerID)
	return err
}

// UpdateVoiceSessionSettings applies owner-initiated control actions
// (rename, cap, lock, hide) to the row.
func UpdateVoiceSessionSettings(ctx context.Context, sessionID int64, name string, userLimit int, locked, hidden bool) error {
	q := `
	UPDATE voice_sessions
	SET name = $2, user_limit = $3, is_locked = $4, is_hidden = $5
	WHERE id = $1
	`
	_, err := DB.Exec(ctx, q, sessionID, name, userLimit, locked, hidden)
	return err
}

// DeleteVoiceSessionByChannelID removes the session row for channelID and
// reports whether a row existed. Deleting an absent row is not an error;
// the cleanup path runs at-least-once.
func DeleteVoiceSessionByChannelID(ctx context.Context, channelID string) (bool, error) {
	tag, err := DB.Exec(ctx, `DELETE FROM voice_sessions WHERE channel_id = $1`, channelID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
