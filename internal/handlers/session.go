// internal/handlers/session.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vckeeper/vckeeper/internal/database"
)

// ListSessionsHandler returns every live room session. The list is the
// database's view; rooms mid-teardown may linger for a moment.
func ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	sessions, err := database.GetAllVoiceSessions(r.Context())
	if err != nil {
		http.Error(w, "error listing sessions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

type updateSessionRequest struct {
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
	UserLimit int    `json:"user_limit"`
	Locked    bool   `json:"locked"`
	Hidden    bool   `json:"hidden"`
}

// UpdateSessionHandler applies console-initiated room settings (rename,
// cap, lock, hide) to the session row. Permission overwrites on the
// channel itself catch up on the room's next lock or unlock action.
func UpdateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.UserLimit < 0 || req.UserLimit > 99 {
		http.Error(w, "user_limit must be between 0 and 99", http.StatusBadRequest)
		return
	}

	sess, err := database.GetVoiceSessionByChannelID(r.Context(), req.ChannelID)
	if err != nil {
		http.Error(w, "error loading session", http.StatusInternalServerError)
		return
	}
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	name := req.Name
	if name == "" {
		name = sess.Name
	}
	if err := database.UpdateVoiceSessionSettings(r.Context(), sess.ID, name, req.UserLimit, req.Locked, req.Hidden); err != nil {
		http.Error(w, "error updating session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
