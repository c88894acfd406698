// internal/handlers/admin.go

// Package handlers implements the admin console's HTTP API: login plus
// read/write access to lobby registrations and the live session list.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/vckeeper/vckeeper/internal/auth"
	"github.com/vckeeper/vckeeper/internal/database"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler authenticates an admin by email and password and issues a
// session token, returned in the body and as the auth_token cookie.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	admin, err := database.GetAdminUserByEmail(r.Context(), req.Email)
	if err != nil || admin == nil {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	ok, err := auth.ComparePasswordAndHash(req.Password, admin.PasswordHash)
	if err != nil || !ok {
		if err != nil {
			log.Printf("failed to verify password for %s: %v", req.Email, err)
		}
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	token, err := auth.CreateJWT(admin.ID.String())
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(loginResponse{Token: token}); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
		return
	}
}

// requireAdmin checks the auth_token cookie and returns the admin id, or
// writes a 403 and returns false.
func requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := extractCookieToken(r.Header.Get("Cookie"), "auth_token")
	if token == "" {
		http.Error(w, "missing auth token", http.StatusForbidden)
		return "", false
	}
	adminID, err := auth.AuthenticateJWT(token)
	if err != nil {
		http.Error(w, "invalid auth token", http.StatusForbidden)
		return "", false
	}
	return adminID, true
}
