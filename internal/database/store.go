// internal/database/store.go
package database

import (
	"context"

	"github.com/vckeeper/vckeeper/internal/models"
)

// Store adapts the package-level queries to the lifecycle engine's store
// contract, so the engine can be tested against an in-memory fake.
type Store struct{}

func (Store) GetLobbyByEntryChannel(ctx context.Context, channelID string) (*models.Lobby, error) {
	return GetLobbyByEntryChannel(ctx, channelID)
}

func (Store) CreateVoiceSession(ctx context.Context, lobbyID int64, channelID, ownerID, name string, userLimit int) (*models.VoiceSession, error) {
	return CreateVoiceSession(ctx, lobbyID, channelID, ownerID, name, userLimit)
}

func (Store) GetVoiceSessionByChannelID(ctx context.Context, channelID string) (*models.VoiceSession, error) {
	return GetVoiceSessionByChannelID(ctx, channelID)
}

func (Store) UpdateVoiceSessionOwner(ctx context.Context, sessionID int64, ownerID string) error {
	return UpdateVoiceSessionOwner(ctx, sessionID, ownerID)
}

func (Store) DeleteVoiceSessionByChannelID(ctx context.Context, channelID string) (bool, error) {
	return DeleteVoiceSessionByChannelID(ctx, channelID)
}
