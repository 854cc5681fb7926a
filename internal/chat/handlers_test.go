// internal/chat/handlers_test.go

package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harborlink/ops-backend/internal/identity"
)

func newHandlerFixture(service Service) (*Handler, *Hub) {
	hub := NewHub(NewMemoryPresence())
	typing := NewTypingCoordinator(DefaultTypingExpiry, nil)
	return NewHandler(service, hub, typing, 8, 64*1024), hub
}

func doRequest(handler http.HandlerFunc, method, path, pattern, body string, userID int64) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc(pattern, handler)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(identity.NewContext(req.Context(), &identity.Identity{ID: userID, DisplayName: "User"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListRoomsHandler(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	service.On("ListRooms", mock.Anything, int64(1)).Return([]*ChatRoom{{ID: 10, Name: "ops", UnreadCount: 3}}, nil)

	rec := doRequest(handler.ListRooms, http.MethodGet, "/rooms", "/rooms", "", 1)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unreadCount":3`)
}

func TestCreateRoomHandler_RejectsInvalidPayload(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	rec := doRequest(handler.CreateRoom, http.MethodPost, "/rooms", "/rooms", `{"name":"ops"}`, 1)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddRoomMemberHandler(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	service.On("AddMember", mock.Anything, int64(10), int64(1), int64(5)).Return(nil)

	rec := doRequest(handler.AddRoomMember, http.MethodPost, "/rooms/10/members", "/rooms/{id}/members", `{"userId":5}`, 1)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestAddRoomMemberHandler_NonMemberRequester(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	service.On("AddMember", mock.Anything, int64(10), int64(9), int64(5)).Return(ErrMembership)

	rec := doRequest(handler.AddRoomMember, http.MethodPost, "/rooms/10/members", "/rooms/{id}/members", `{"userId":5}`, 9)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeactivateRoomHandler(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	service.On("DeactivateRoom", mock.Anything, int64(10), int64(1)).Return(nil)

	rec := doRequest(handler.DeactivateRoom, http.MethodDelete, "/rooms/10", "/rooms/{id}", "", 1)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestGetMessageSeenHandler(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	service.On("IsSeenByOthers", mock.Anything, int64(42), int64(1)).Return(true, nil)

	rec := doRequest(handler.GetMessageSeen, http.MethodGet, "/messages/42/seen", "/messages/{id}/seen", "", 1)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seen":true`)
}

func TestGetRoomMessagesHandler_MembershipError(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	service.On("RoomMessages", mock.Anything, int64(10), int64(1), int64(0), 0).Return(nil, ErrMembership)

	rec := doRequest(handler.GetRoomMessages, http.MethodGet, "/rooms/10/messages", "/rooms/{id}/messages", "", 1)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetRoomMessagesHandler_SanitizesTombstones(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	service.On("RoomMessages", mock.Anything, int64(10), int64(1), int64(0), 0).Return([]*ChatMessage{
		{ID: 1, RoomID: 10, Body: "hello"},
		{ID: 2, RoomID: 10, Body: "secret", IsDeleted: true},
	}, nil)

	rec := doRequest(handler.GetRoomMessages, http.MethodGet, "/rooms/10/messages", "/rooms/{id}/messages", "", 1)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestEditMessageHandler_BroadcastsToRoom(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	watcher := newTestClient(2, 8)
	hub.Register(watcher)
	hub.Bind(10, watcher)
	time.Sleep(50 * time.Millisecond)
	drainTypes(t, watcher)

	service.On("Edit", mock.Anything, int64(42), int64(1), "updated").Return(&ChatMessage{
		ID: 42, RoomID: 10, SenderID: 1, Body: "updated", IsEdited: true,
	}, nil)

	rec := doRequest(handler.EditMessage, http.MethodPut, "/messages/42", "/messages/{id}", `{"body":"updated"}`, 1)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{EventMessageEdited}, drainTypes(t, watcher))
}

func TestDeleteMessageHandler_PermissionError(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	service.On("SoftDelete", mock.Anything, int64(42), int64(2)).Return(nil, ErrPermission)

	rec := doRequest(handler.DeleteMessage, http.MethodDelete, "/messages/42", "/messages/{id}", "", 2)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkReadHandler_BroadcastsOnlyOnFirstRead(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	watcher := newTestClient(1, 8)
	hub.Register(watcher)
	hub.Bind(10, watcher)
	time.Sleep(50 * time.Millisecond)
	drainTypes(t, watcher)

	message := &ChatMessage{ID: 42, RoomID: 10, SenderID: 1}

	service.On("MarkRead", mock.Anything, int64(42), int64(2)).Return(message, true, nil).Once()
	rec := doRequest(handler.MarkRead, http.MethodPost, "/messages/42/read", "/messages/{id}/read", "", 2)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{EventMessageRead}, drainTypes(t, watcher))

	service.On("MarkRead", mock.Anything, int64(42), int64(2)).Return(message, false, nil).Once()
	rec = doRequest(handler.MarkRead, http.MethodPost, "/messages/42/read", "/messages/{id}/read", "", 2)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, drainTypes(t, watcher))
}

func TestGetReceiptsHandler(t *testing.T) {
	service := new(MockService)
	handler, hub := newHandlerFixture(service)
	defer hub.Shutdown()

	service.On("ReceiptsForMessages", mock.Anything, int64(1), []int64{42, 43}).Return([]*ReadReceipt{
		{MessageID: 42, UserID: 2},
	}, nil)

	rec := doRequest(handler.GetReceipts, http.MethodPost, "/receipts", "/receipts", `{"messageIds":[42,43]}`, 1)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"messageId":42`)
}
