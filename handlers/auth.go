package handlers

import (
	"net/http"
)

// AuthHandler reports on the identity behind a bearer token. Tokens are
// issued outside the board engine.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// VerifyToken answers for a token the auth middleware already accepted.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"userId": userID,
		"status": "valid",
	})
}
