package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CrowderSoup/kanban/services"
)

// RouterConfig is everything the HTTP surface needs.
type RouterConfig struct {
	Services    *services.Services
	AuthService *services.AuthService
	Hub         *services.Hub
	Origins     []string
	Logger      *slog.Logger
}

// NewRouter registers the API under /api. Everything but /healthz and
// /metrics requires a bearer token.
func NewRouter(cfg RouterConfig) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authMiddleware := NewAuthMiddleware(cfg.AuthService)
	authHandler := NewAuthHandler()
	boardHandler := NewBoardHandler(cfg.Services, logger)
	cardHandler := NewCardHandler(cfg.Services, logger)
	feedHandler := NewFeedHandler(cfg.Services.Boards, cfg.Hub, cfg.Origins, logger)

	r := mux.NewRouter()
	r.Use(RequestLogger(logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Auth)

	api.HandleFunc("/auth/verify", authHandler.VerifyToken).Methods("GET")

	// Boards
	api.HandleFunc("/boards", boardHandler.CreateBoard).Methods("POST")
	api.HandleFunc("/boards", boardHandler.ListBoards).Methods("GET")
	api.HandleFunc("/boards/{boardId}", boardHandler.GetBoard).Methods("GET")
	api.HandleFunc("/boards/{boardId}", boardHandler.UpdateBoard).Methods("PATCH")
	api.HandleFunc("/boards/{boardId}", boardHandler.DeleteBoard).Methods("DELETE")

	// Labels
	api.HandleFunc("/boards/{boardId}/labels", boardHandler.ListLabels).Methods("GET")
	api.HandleFunc("/boards/{boardId}/labels", boardHandler.AddLabel).Methods("POST")
	api.HandleFunc("/labels/{labelId}", boardHandler.DeleteLabel).Methods("DELETE")

	// Lists
	api.HandleFunc("/boards/{boardId}/lists", boardHandler.CreateList).Methods("POST")
	api.HandleFunc("/lists/{listId}", boardHandler.UpdateList).Methods("PATCH")
	api.HandleFunc("/lists/{listId}", boardHandler.DeleteList).Methods("DELETE")
	api.HandleFunc("/lists/{listId}/reorder", boardHandler.ReorderList).Methods("POST")

	// Cards
	api.HandleFunc("/lists/{listId}/cards", cardHandler.CreateCard).Methods("POST")
	api.HandleFunc("/cards/{cardId}", cardHandler.GetCard).Methods("GET")
	api.HandleFunc("/cards/{cardId}", cardHandler.UpdateCard).Methods("PATCH")
	api.HandleFunc("/cards/{cardId}", cardHandler.DeleteCard).Methods("DELETE")
	api.HandleFunc("/cards/{cardId}/move", cardHandler.MoveCard).Methods("POST")
	api.HandleFunc("/cards/{cardId}/activities", cardHandler.ListActivities).Methods("GET")

	// Checklists
	api.HandleFunc("/cards/{cardId}/checklists", cardHandler.ListChecklists).Methods("GET")
	api.HandleFunc("/cards/{cardId}/checklists", cardHandler.AddChecklist).Methods("POST")
	api.HandleFunc("/checklists/{checklistId}", cardHandler.DeleteChecklist).Methods("DELETE")
	api.HandleFunc("/checklists/{checklistId}/items", cardHandler.AddChecklistItem).Methods("POST")
	api.HandleFunc("/checklist-items/{itemId}", cardHandler.ToggleChecklistItem).Methods("PATCH")
	api.HandleFunc("/checklist-items/{itemId}", cardHandler.DeleteChecklistItem).Methods("DELETE")

	// WebSocket feed of committed board changes
	api.HandleFunc("/boards/{boardId}/ws", feedHandler.HandleWebSocket).Methods("GET")

	return r
}
