package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/services"
)

// CardHandler serves cards, their checklists and their activity log.
type CardHandler struct {
	cards      *services.CardService
	checklists *services.ChecklistService
	activities *services.ActivityService
	logger     *slog.Logger
}

func NewCardHandler(svc *services.Services, logger *slog.Logger) *CardHandler {
	return &CardHandler{cards: svc.Cards, checklists: svc.Checklists, activities: svc.Activities, logger: logger}
}

func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var input services.CreateCardInput
	if !decode(w, r, &input) {
		return
	}
	input.ListID = mux.Vars(r)["listId"]
	input.CreatedBy = userID

	id, err := h.cards.CreateCard(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.GetCard(r.Context(), mux.Vars(r)["cardId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var patch database.CardPatch
	if !decode(w, r, &patch) {
		return
	}
	if err := h.cards.UpdateCard(r.Context(), mux.Vars(r)["cardId"], patch, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.cards.DeleteCard(r.Context(), mux.Vars(r)["cardId"], userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) MoveCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var req struct {
		ListID string `json:"listId"`
		Index  int    `json:"index"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.cards.MoveCard(r.Context(), mux.Vars(r)["cardId"], req.ListID, req.Index, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.activities.ListActivities(r.Context(), mux.Vars(r)["cardId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *CardHandler) ListChecklists(w http.ResponseWriter, r *http.Request) {
	checklists, err := h.checklists.ListChecklists(r.Context(), mux.Vars(r)["cardId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, checklists)
}

func (h *CardHandler) AddChecklist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	id, err := h.checklists.AddChecklist(r.Context(), req.Name, mux.Vars(r)["cardId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *CardHandler) DeleteChecklist(w http.ResponseWriter, r *http.Request) {
	if err := h.checklists.DeleteChecklist(r.Context(), mux.Vars(r)["checklistId"]); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	id, err := h.checklists.AddChecklistItem(r.Context(), req.Content, mux.Vars(r)["checklistId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *CardHandler) ToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Completed bool `json:"completed"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.checklists.ToggleChecklistItem(r.Context(), mux.Vars(r)["itemId"], req.Completed); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) DeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	if err := h.checklists.DeleteChecklistItem(r.Context(), mux.Vars(r)["itemId"]); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
