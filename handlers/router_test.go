package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/services"
)

type testServer struct {
	router http.Handler
	token  string
	auth   *services.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.InitDB(filepath.Join(t.TempDir(), "kanban.db"))
	require.NoError(t, err)
	store := database.NewStore(db, database.WithLogger(logger))
	t.Cleanup(func() { _ = store.Close() })

	hub := services.NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	auth, err := services.NewAuthService("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := auth.CreateJWT("u1")
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Services:    services.New(store, logger, hub),
		AuthService: auth,
		Hub:         hub,
		Origins:     []string{"*"},
		Logger:      logger,
	})
	return &testServer{router: router, token: token, auth: auth}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createdID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out["id"])
	return out["id"]
}

func (s *testServer) board(t *testing.T, id string) services.Snapshot {
	t.Helper()
	rec := s.do(t, "GET", "/api/boards/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var snap services.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/boards", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/api/boards", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("GET", "/api/boards", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, "GET", "/api/auth/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"u1"`)
}

func TestBoardWorkflow(t *testing.T) {
	s := newTestServer(t)

	boardID := s.createdID(t, s.do(t, "POST", "/api/boards", map[string]any{"name": "Roadmap", "visibility": "private"}))
	snap := s.board(t, boardID)
	require.Len(t, snap.Lists, 3)
	assert.Equal(t, "u1", snap.CreatedBy)
	todo, done := snap.Lists[0].ID, snap.Lists[2].ID

	backlog := s.createdID(t, s.do(t, "POST", "/api/boards/"+boardID+"/lists", map[string]any{"name": "Backlog", "index": 3}))
	rec := s.do(t, "POST", "/api/lists/"+backlog+"/reorder", map[string]any{"index": 0})
	require.Equal(t, http.StatusNoContent, rec.Code)

	a := s.createdID(t, s.do(t, "POST", "/api/lists/"+todo+"/cards", map[string]any{"title": "A", "index": 0}))
	s.createdID(t, s.do(t, "POST", "/api/lists/"+todo+"/cards", map[string]any{"title": "B", "index": 1}))

	rec = s.do(t, "POST", "/api/cards/"+a+"/move", map[string]any{"listId": done, "index": 0})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	snap = s.board(t, boardID)
	names := []string{}
	for _, l := range snap.Lists {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"Backlog", "To do", "In progress", "Done"}, names)
	require.Len(t, snap.Lists[1].Cards, 1)
	assert.Equal(t, "B", snap.Lists[1].Cards[0].Title)
	assert.Equal(t, 0, snap.Lists[1].Cards[0].Index)
	require.Len(t, snap.Lists[3].Cards, 1)
	assert.Equal(t, "A", snap.Lists[3].Cards[0].Title)

	rec = s.do(t, "PATCH", "/api/cards/"+a, map[string]any{"title": "A2", "assigneeIds": []string{"u2"}})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, "GET", "/api/cards/"+a, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var card database.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "A2", card.Title)
	assert.Equal(t, []string{"u2"}, card.AssigneeIDs)

	rec = s.do(t, "GET", "/api/cards/"+a+"/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var activities []database.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &activities))
	require.Len(t, activities, 3)
	assert.Equal(t, services.ActionUpdated, activities[0].Action)
	assert.Equal(t, "u1", activities[0].UserID)

	checklist := s.createdID(t, s.do(t, "POST", "/api/cards/"+a+"/checklists", map[string]any{"name": "Release"}))
	item := s.createdID(t, s.do(t, "POST", "/api/checklists/"+checklist+"/items", map[string]any{"content": "tag"}))
	rec = s.do(t, "PATCH", "/api/checklist-items/"+item, map[string]any{"completed": true})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, "GET", "/api/cards/"+a+"/checklists", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completed":true`)

	label := s.createdID(t, s.do(t, "POST", "/api/boards/"+boardID+"/labels", map[string]any{"name": "bug", "colorCode": "#f00"}))
	rec = s.do(t, "DELETE", "/api/labels/"+label, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, "GET", "/api/boards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var boards []database.Board
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &boards))
	require.Len(t, boards, 1)

	rec = s.do(t, "DELETE", "/api/boards/"+boardID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, "GET", "/api/boards/"+boardID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)
	boardID := s.createdID(t, s.do(t, "POST", "/api/boards", map[string]any{"name": "Roadmap", "visibility": "public"}))
	todo := s.board(t, boardID).Lists[0].ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing board", "GET", "/api/boards/nope", nil, http.StatusNotFound},
		{"bad visibility", "POST", "/api/boards", map[string]any{"name": "x", "visibility": "secret"}, http.StatusBadRequest},
		{"empty card title", "POST", "/api/lists/" + todo + "/cards", map[string]any{"title": ""}, http.StatusBadRequest},
		{"move missing card", "POST", "/api/cards/nope/move", map[string]any{"listId": todo, "index": 0}, http.StatusNotFound},
		{"move without list", "POST", "/api/cards/nope/move", map[string]any{"listId": "", "index": 0}, http.StatusBadRequest},
		{"delete missing list", "DELETE", "/api/lists/nope", nil, http.StatusNotFound},
		{"toggle missing item", "PATCH", "/api/checklist-items/nope", map[string]any{"completed": true}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	req := httptest.NewRequest("POST", "/api/boards", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebSocketReceivesBoardEvents(t *testing.T) {
	s := newTestServer(t)
	boardID := s.createdID(t, s.do(t, "POST", "/api/boards", map[string]any{"name": "Roadmap", "visibility": "private"}))
	todo := s.board(t, boardID).Lists[0].ID

	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/boards/" + boardID + "/ws?token=" + s.token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	// The hub registers the client asynchronously, so retry until an event
	// arrives.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	received := make(chan services.Event, 1)
	go func() {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			close(received)
			return
		}
		var e services.Event
		if json.Unmarshal(bytes.SplitN(msg, []byte("\n"), 2)[0], &e) == nil {
			received <- e
		}
	}()

	deadline := time.After(5 * time.Second)
	for {
		s.createdID(t, s.do(t, "POST", "/api/lists/"+todo+"/cards", map[string]any{"title": "A"}))
		select {
		case e, ok := <-received:
			require.True(t, ok, "websocket closed before an event arrived")
			assert.Equal(t, services.EventCardCreated, e.Type)
			assert.Equal(t, boardID, e.BoardID)
			assert.Equal(t, "u1", e.UserID)
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no board event received")
		}
	}
}

func TestWebSocketMissingBoard(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, "GET", "/api/boards/nope/ws", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
