// internal/chat/handlers.go

package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/harborlink/ops-backend/internal/common/utils"
	"github.com/harborlink/ops-backend/internal/identity"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Configure CORS as needed
		return true
	},
}

type Handler struct {
	service Service
	hub     *Hub
	typing  *TypingCoordinator

	sendBufferSize int
	readLimitBytes int64
}

func NewHandler(service Service, hub *Hub, typing *TypingCoordinator, sendBufferSize int, readLimitBytes int64) *Handler {
	return &Handler{
		service:        service,
		hub:            hub,
		typing:         typing,
		sendBufferSize: sendBufferSize,
		readLimitBytes: readLimitBytes,
	}
}

// HandleWebSocket upgrades an authenticated request to a persistent
// connection and hands it to the hub
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(h.hub, conn, ident, h.service, h.typing, h.sendBufferSize, h.readLimitBytes)
	h.hub.Register(client)
	client.Start()
}

// ListRooms returns the caller's rooms, most recent activity first, with
// unread counts
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	rooms, err := h.service.ListRooms(r.Context(), ident.ID)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	utils.SuccessResponse(w, rooms, http.StatusOK)
}

// CreateRoom creates a room with the caller as first member
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	room, err := h.service.CreateRoom(r.Context(), ident.ID, &req)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	utils.SuccessResponse(w, room, http.StatusCreated)
}

// AddRoomMember adds an identity to a room; any existing member may invite
func (h *Handler) AddRoomMember(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	roomID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.AddMember(r.Context(), roomID, ident.ID, req.UserID); err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	utils.MessageResponse(w, "Member added", http.StatusOK)
}

// DeactivateRoom retires a room; creator only, idempotent
func (h *Handler) DeactivateRoom(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	roomID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeactivateRoom(r.Context(), roomID, ident.ID); err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	utils.MessageResponse(w, "Room deactivated", http.StatusOK)
}

// GetRoomMessages returns a room's messages in ascending id order.
// Tombstoned messages keep their slot but carry no content.
func (h *Handler) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	roomID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	afterID, _ := strconv.ParseInt(r.URL.Query().Get("afterId"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.service.RoomMessages(r.Context(), roomID, ident.ID, afterID, limit)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	sanitized := make([]*ChatMessage, len(messages))
	for i, m := range messages {
		sanitized[i] = m.Sanitized()
	}

	utils.SuccessResponse(w, sanitized, http.StatusOK)
}

// EditMessage updates a message body; sender only, tombstoned targets 404
func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	messageID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	message, err := h.service.Edit(r.Context(), messageID, ident.ID, req.Body)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	h.hub.PublishRoom(message.RoomID, NewEvent(EventMessageEdited, MessageEditedPayload{
		RoomID:     message.RoomID,
		MessageID:  message.ID,
		NewMessage: message.Body,
		EditedAt:   message.UpdatedAt,
	}))

	utils.SuccessResponse(w, message, http.StatusOK)
}

// DeleteMessage tombstones a message; sender only, idempotent
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	messageID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	message, err := h.service.SoftDelete(r.Context(), messageID, ident.ID)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	h.hub.PublishRoom(message.RoomID, NewEvent(EventMessageDeleted, MessageDeletedPayload{
		RoomID:    message.RoomID,
		MessageID: message.ID,
	}))

	utils.MessageResponse(w, "Message deleted", http.StatusOK)
}

// MarkRead records a read receipt. Re-reads are absorbed silently and do not
// re-broadcast.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	messageID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	message, created, err := h.service.MarkRead(r.Context(), messageID, ident.ID)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	if created {
		h.hub.PublishRoom(message.RoomID, NewEvent(EventMessageRead, MessageReadPayload{
			MessageID: message.ID,
			UserID:    ident.ID,
		}))
	}

	utils.MessageResponse(w, "Message marked as read", http.StatusOK)
}

// GetMessageSeen reports whether anyone besides the caller has read a message
func (h *Handler) GetMessageSeen(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	messageID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	seen, err := h.service.IsSeenByOthers(r.Context(), messageID, ident.ID)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	utils.SuccessResponse(w, map[string]bool{"seen": seen}, http.StatusOK)
}

// GetReceipts returns receipts for a batch of messages the caller may see
func (h *Handler) GetReceipts(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	var req ReceiptQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipts, err := h.service.ReceiptsForMessages(r.Context(), ident.ID, req.MessageIDs)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), HTTPStatus(err))
		return
	}

	utils.SuccessResponse(w, receipts, http.StatusOK)
}

// GetPresence returns the current status of one identity
func (h *Handler) GetPresence(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	state, err := h.hub.presence.Status(r.Context(), userID)
	if err != nil {
		utils.ErrorResponse(w, fmt.Sprintf("Failed to fetch presence: %v", err), http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, state, http.StatusOK)
}
