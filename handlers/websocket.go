package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/CrowderSoup/kanban/services"
)

// FeedHandler streams a board's committed changes over a websocket.
type FeedHandler struct {
	boards   *services.BoardService
	hub      *services.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewFeedHandler accepts upgrades from any origin when allowAll is set,
// otherwise only from the listed origins.
func NewFeedHandler(boards *services.BoardService, hub *services.Hub, origins []string, logger *slog.Logger) *FeedHandler {
	allowed := make(map[string]bool, len(origins))
	allowAll := false
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return &FeedHandler{
		boards: boards,
		hub:    hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
		logger: logger,
	}
}

// HandleWebSocket subscribes the caller to one board's events.
func (h *FeedHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	boardID := mux.Vars(r)["boardId"]
	if _, err := h.boards.GetBoard(r.Context(), boardID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "board_id", boardID, "error", err)
		return
	}

	client := services.NewClient(h.hub, conn, boardID, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
