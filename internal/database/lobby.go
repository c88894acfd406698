// internal/database/lobby.go
package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vckeeper/vckeeper/internal/models"
)

// GetLobbyByEntryChannel returns the lobby configured for channelID, or
// (nil, nil) when the channel is not a lobby. Called on every voice join,
// so most lookups miss.
func GetLobbyByEntryChannel(ctx context.Context, channelID string) (*models.Lobby, error) {
	var l models.Lobby
	q := `
	SELECT id, guild_id, channel_id, category_id, default_user_limit
	FROM lobbies
	WHERE channel_id = $1
	`
	err := DB.QueryRow(ctx, q, channelID).Scan(
		&l.ID,
		&l.GuildID,
		&l.ChannelID,
		&l.CategoryID,
		&l.DefaultUserLimit,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLobbiesByGuild returns every lobby configured for the guild.
func GetLobbiesByGuild(ctx context.Context, guildID string) ([]models.Lobby, error) {
	q := `
	SELECT id, guild_id, channel_id, category_id, default_user_limit
	FROM lobbies
	WHERE guild_id = $1
	ORDER BY id
	`
	rows, err := DB.Query(ctx, q, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lobbies []models.Lobby
	for rows.Next() {
		var l models.Lobby
		if err := rows.Scan(&l.ID, &l.GuildID, &l.ChannelID, &l.CategoryID, &l.DefaultUserLimit); err != nil {
			return nil, err
		}
		lobbies = append(lobbies, l)
	}
	return lobbies, rows.Err()
}

// CreateLobby inserts a lobby row and fills in its assigned id. The unique
// constraint on channel_id keeps one lobby per entry channel.
func CreateLobby(ctx context.Context, l *models.Lobby) error {
	q := `
	INSERT INTO lobbies (guild_id, channel_id, category_id, default_user_limit)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`
	return DB.QueryRow(ctx, q, l.GuildID, l.ChannelID, l.CategoryID, l.DefaultUserLimit).Scan(&l.ID)
}

// DeleteLobby removes a lobby row; live session rows cascade with it.
func DeleteLobby(ctx context.Context, lobbyID int64) (bool, error) {
	tag, err := DB.Exec(ctx, `DELETE FROM lobbies WHERE id = $1`, lobbyID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
