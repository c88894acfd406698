// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vckeeper/vckeeper/internal/database"
	"github.com/vckeeper/vckeeper/internal/models"
)

type createLobbyRequest struct {
	GuildID          string `json:"guild_id"`
	ChannelID        string `json:"channel_id"`
	CategoryID       string `json:"category_id"`
	DefaultUserLimit int    `json:"default_user_limit"`
}

// CreateLobbyHandler registers a voice channel as a lobby entry point.
// Joining the registered channel is what triggers room provisioning, so
// the channel id must be unique across all lobbies.
func CreateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req createLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.GuildID == "" || req.ChannelID == "" {
		http.Error(w, "guild_id and channel_id are required", http.StatusBadRequest)
		return
	}
	if req.DefaultUserLimit < 0 || req.DefaultUserLimit > 99 {
		http.Error(w, "default_user_limit must be between 0 and 99", http.StatusBadRequest)
		return
	}

	lobby := models.Lobby{
		GuildID:          req.GuildID,
		ChannelID:        req.ChannelID,
		CategoryID:       req.CategoryID,
		DefaultUserLimit: req.DefaultUserLimit,
	}

	if err := database.CreateLobby(r.Context(), &lobby); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "channel is already registered as a lobby", http.StatusConflict)
			return
		}
		http.Error(w, "error creating lobby", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(lobby)
}

// ListLobbiesHandler returns the lobbies registered for a guild.
func ListLobbiesHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	guildID := r.URL.Query().Get("guild_id")
	if guildID == "" {
		http.Error(w, "guild_id is required", http.StatusBadRequest)
		return
	}

	lobbies, err := database.GetLobbiesByGuild(r.Context(), guildID)
	if err != nil {
		http.Error(w, "error listing lobbies", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lobbies)
}

type deleteLobbyRequest struct {
	ID int64 `json:"id"`
}

// DeleteLobbyHandler unregisters a lobby. Rooms already provisioned from
// it keep running until they empty out.
func DeleteLobbyHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req deleteLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	deleted, err := database.DeleteLobby(r.Context(), req.ID)
	if err != nil {
		http.Error(w, "error deleting lobby", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "lobby not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
