package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CrowderSoup/kanban/services"
)

// BoardHandler serves boards, their labels and their lists.
type BoardHandler struct {
	boards *services.BoardService
	lists  *services.ListService
	labels *services.LabelService
	logger *slog.Logger
}

func NewBoardHandler(svc *services.Services, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{boards: svc.Boards, lists: svc.Lists, labels: svc.Labels, logger: logger}
}

func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var input services.CreateBoardInput
	if !decode(w, r, &input) {
		return
	}
	input.UserID = userID

	id, err := h.boards.CreateBoard(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	boards, err := h.boards.ListBoards(r.Context(), userID, r.URL.Query().Get("workspaceId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.boards.GetBoard(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var input services.UpdateBoardInput
	if !decode(w, r, &input) {
		return
	}
	if err := h.boards.UpdateBoard(r.Context(), mux.Vars(r)["boardId"], input, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := h.boards.DeleteBoard(r.Context(), mux.Vars(r)["boardId"]); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.labels.ListLabels(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

func (h *BoardHandler) AddLabel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		ColorCode string `json:"colorCode"`
	}
	if !decode(w, r, &req) {
		return
	}
	id, err := h.labels.AddLabel(r.Context(), req.Name, req.ColorCode, mux.Vars(r)["boardId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *BoardHandler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	if err := h.labels.DeleteLabel(r.Context(), mux.Vars(r)["labelId"]); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Index int    `json:"index"`
	}
	if !decode(w, r, &req) {
		return
	}
	id, err := h.lists.CreateList(r.Context(), req.Name, mux.Vars(r)["boardId"], req.Index)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *BoardHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.lists.UpdateList(r.Context(), mux.Vars(r)["listId"], req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) ReorderList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.lists.ReorderList(r.Context(), mux.Vars(r)["listId"], req.Index); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	if err := h.lists.DeleteList(r.Context(), mux.Vars(r)["listId"]); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
