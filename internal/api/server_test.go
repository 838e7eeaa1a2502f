package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharelist/sharelist/internal/access"
	"github.com/sharelist/sharelist/internal/api"
	"github.com/sharelist/sharelist/internal/hub"
	"github.com/sharelist/sharelist/internal/models"
	"github.com/sharelist/sharelist/internal/repository/memory"
	"github.com/sharelist/sharelist/internal/service"
)

type testAPI struct {
	store *memory.Store
	hub   *hub.Hub
	srv   *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	l := logrus.New()
	l.SetOutput(io.Discard)

	store := memory.NewStore()
	resolver := access.NewResolver(store.Lists(), store.Shares(), store.Families())
	h := hub.New(l, resolver, hub.NewMetrics(nil))

	svc := service.New(service.Deps{
		Logger:      l,
		Resolver:    resolver,
		Broadcaster: h,
		Users:       store.Users(),
		Lists:       store.Lists(),
		Items:       store.Items(),
		Shares:      store.Shares(),
		Families:    store.Families(),
		Categories:  store.Categories(),
		ItemNames:   store.ItemNames(),
	})

	srv := httptest.NewServer(api.NewServer(svc, h, l).Handler())
	t.Cleanup(srv.Close)

	a := &testAPI{store: store, hub: h, srv: srv}
	for _, id := range []string{"alice", "bob", "mallory"} {
		store.AddUser(&models.User{ID: id, Email: id + "@example.com"})
	}
	return a
}

// do issues a request as the given user and decodes the JSON response into
// out when it is non-nil.
func (a *testAPI) do(t *testing.T, userID, method, path string, body, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (a *testAPI) createList(t *testing.T, userID, name string) *models.List {
	t.Helper()
	var list models.List
	resp := a.do(t, userID, http.MethodPost, "/api/lists", map[string]string{"name": name}, &list)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return &list
}

func (a *testAPI) dialWS(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(a.srv.URL, "http") + "/ws"
	header := http.Header{"X-User-Id": []string{userID}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func wsInvoke(t *testing.T, conn *websocket.Conn, target, listID string) {
	t.Helper()
	payload := fmt.Sprintf(`{"target":%q,"arguments":[%q]}`, target, listID)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

// waitForRoom blocks until the list's room has the expected member count.
// Joins are handled asynchronously by each connection's read pump.
func (a *testAPI) waitForRoom(t *testing.T, listID string, size int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return a.hub.RoomSize("list_"+listID) == size
	}, time.Second, 10*time.Millisecond)
}

func wsNextEvent(t *testing.T, conn *websocket.Conn) (string, []json.RawMessage) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var f struct {
		Target    string            `json:"target"`
		Arguments []json.RawMessage `json:"arguments"`
	}
	require.NoError(t, json.Unmarshal(data, &f))
	return f.Target, f.Arguments
}

func TestRequestsWithoutIdentityAreRejected(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "", http.MethodGet, "/api/lists", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListCRUD(t *testing.T) {
	a := newTestAPI(t)
	list := a.createList(t, "alice", "Groceries")
	assert.Equal(t, "Groceries", list.Name)
	assert.Equal(t, "alice", list.OwnerUserID)

	var got models.List
	resp := a.do(t, "alice", http.MethodGet, "/api/lists/"+list.ID.String(), nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, list.ID, got.ID)

	var renamed models.List
	resp = a.do(t, "alice", http.MethodPut, "/api/lists/"+list.ID.String(),
		map[string]string{"name": "Weekly shop"}, &renamed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Weekly shop", renamed.Name)

	resp = a.do(t, "alice", http.MethodDelete, "/api/lists/"+list.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(t, "alice", http.MethodGet, "/api/lists/"+list.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHiddenListLooksMissing(t *testing.T) {
	a := newTestAPI(t)
	list := a.createList(t, "alice", "Groceries")

	resp := a.do(t, "mallory", http.MethodGet, "/api/lists/"+list.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "unshared lists are indistinguishable from missing ones")

	resp = a.do(t, "alice", http.MethodGet, "/api/lists/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestShareEndpointStatusCodes(t *testing.T) {
	a := newTestAPI(t)
	list := a.createList(t, "alice", "Groceries")

	share := map[string]any{"listId": list.ID, "userIdToShareWith": "bob"}

	resp := a.do(t, "bob", http.MethodPost, "/api/shares", share, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "only the owner shares")

	var created models.ListShare
	resp = a.do(t, "alice", http.MethodPost, "/api/shares", share, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = a.do(t, "alice", http.MethodPost, "/api/shares", share, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(t, "alice", http.MethodPost, "/api/shares", map[string]any{"listId": list.ID}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "a target is required")

	// Shared list is now in bob's overview.
	var lists []*models.List
	resp = a.do(t, "bob", http.MethodGet, "/api/lists", nil, &lists)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, lists, 1)

	resp = a.do(t, "alice", http.MethodDelete, "/api/shares/"+created.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(t, "bob", http.MethodGet, "/api/lists", nil, &lists)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, lists)
}

func TestItemMutationFansOutToViewers(t *testing.T) {
	a := newTestAPI(t)
	list := a.createList(t, "alice", "Groceries")

	resp := a.do(t, "alice", http.MethodPost, "/api/shares",
		map[string]any{"listId": list.ID, "userIdToShareWith": "bob"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	aliceConn := a.dialWS(t, "alice")
	bobConn := a.dialWS(t, "bob")

	wsInvoke(t, aliceConn, "JoinListGroup", list.ID.String())
	wsInvoke(t, bobConn, "JoinListGroup", list.ID.String())
	a.waitForRoom(t, list.ID.String(), 2)

	var created models.Item
	resp = a.do(t, "alice", http.MethodPost, "/api/items",
		map[string]any{"shoppingListId": list.ID, "name": "Milk", "quantity": "2"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		target, args := wsNextEvent(t, conn)
		assert.Equal(t, "ReceiveItemAdded", target)
		require.Len(t, args, 1)

		var item models.Item
		require.NoError(t, json.Unmarshal(args[0], &item))
		assert.Equal(t, "Milk", item.Name)
		assert.Equal(t, list.ID, item.ListID)
	}
}

func TestJoinDeniedForOutsiders(t *testing.T) {
	a := newTestAPI(t)
	list := a.createList(t, "alice", "Groceries")

	aliceConn := a.dialWS(t, "alice")
	malloryConn := a.dialWS(t, "mallory")

	wsInvoke(t, aliceConn, "JoinListGroup", list.ID.String())
	wsInvoke(t, malloryConn, "JoinListGroup", list.ID.String())
	a.waitForRoom(t, list.ID.String(), 1)

	var item models.Item
	resp := a.do(t, "alice", http.MethodPost, "/api/items",
		map[string]any{"shoppingListId": list.ID, "name": "Milk"}, &item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	target, _ := wsNextEvent(t, aliceConn)
	assert.Equal(t, "ReceiveItemAdded", target)

	// Mallory's join was rejected; no event arrives.
	require.NoError(t, malloryConn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := malloryConn.ReadMessage()
	require.Error(t, err)
}

func TestWebsocketRequiresIdentity(t *testing.T) {
	a := newTestAPI(t)

	wsURL := "ws" + strings.TrimPrefix(a.srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeleteEventCarriesBareItemID(t *testing.T) {
	a := newTestAPI(t)
	list := a.createList(t, "alice", "Groceries")

	var item models.Item
	resp := a.do(t, "alice", http.MethodPost, "/api/items",
		map[string]any{"shoppingListId": list.ID, "name": "Milk"}, &item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	conn := a.dialWS(t, "alice")
	wsInvoke(t, conn, "JoinListGroup", list.ID.String())
	a.waitForRoom(t, list.ID.String(), 1)

	resp = a.do(t, "alice", http.MethodDelete, "/api/items/"+item.ID.String(), nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	target, args := wsNextEvent(t, conn)
	assert.Equal(t, "ReceiveItemDeleted", target)
	require.Len(t, args, 1)

	var id string
	require.NoError(t, json.Unmarshal(args[0], &id))
	assert.Equal(t, item.ID.String(), id)
}

func TestHealthz(t *testing.T) {
	a := newTestAPI(t)
	resp := a.do(t, "", http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
