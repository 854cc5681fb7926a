// internal/chat/routes.go

package chat

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers the websocket gateway and the team chat REST API
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	// WebSocket endpoint - requires authentication
	router.Handle("/ws", authMiddleware(http.HandlerFunc(handler.HandleWebSocket))).Methods("GET")

	api := router.PathPrefix("/api/v1/team").Subrouter()
	api.Use(authMiddleware)

	// Room endpoints
	api.HandleFunc("/rooms", handler.ListRooms).Methods("GET")
	api.HandleFunc("/rooms", handler.CreateRoom).Methods("POST")
	api.HandleFunc("/rooms/{id:[0-9]+}", handler.DeactivateRoom).Methods("DELETE")
	api.HandleFunc("/rooms/{id:[0-9]+}/members", handler.AddRoomMember).Methods("POST")
	api.HandleFunc("/rooms/{id:[0-9]+}/messages", handler.GetRoomMessages).Methods("GET")

	// Message endpoints
	api.HandleFunc("/messages/{id:[0-9]+}", handler.EditMessage).Methods("PUT", "PATCH")
	api.HandleFunc("/messages/{id:[0-9]+}", handler.DeleteMessage).Methods("DELETE")
	api.HandleFunc("/messages/{id:[0-9]+}/read", handler.MarkRead).Methods("POST")
	api.HandleFunc("/messages/{id:[0-9]+}/seen", handler.GetMessageSeen).Methods("GET")

	// Receipt and presence endpoints
	api.HandleFunc("/receipts", handler.GetReceipts).Methods("POST")
	api.HandleFunc("/presence/{id:[0-9]+}", handler.GetPresence).Methods("GET")
}
