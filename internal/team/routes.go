// internal/team/routes.go

package team

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers announcement and survey routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1/team").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/announcements", handler.ListAnnouncements).Methods("GET")
	api.HandleFunc("/announcements", handler.CreateAnnouncement).Methods("POST")

	// Survey responses are ingested upstream; this surface only reads them
	api.HandleFunc("/surveys/{id:[0-9]+}/responses", handler.GetResponseSummary).Methods("GET")
}
