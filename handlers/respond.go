package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/services"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

// writeError maps service errors onto status codes. Anything unexpected is
// logged and reported as a server error without details.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrConflict):
		writeMessage(w, http.StatusConflict, "concurrent update, try again")
	default:
		logger.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "server error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request format")
		return false
	}
	return true
}

// caller fetches the authenticated user id or answers 401.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "user not found")
	}
	return userID, ok
}
