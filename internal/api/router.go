package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glebk/worklog-bot/internal/api/recovery"
)

// NewRouter creates the HTTP router for the webhook transport.
func NewRouter(h *EventHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(recovery.Middleware)

	router.HandleFunc("/v1/events", h.HandleEvent).Methods("POST")
	router.HandleFunc("/healthz", h.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
