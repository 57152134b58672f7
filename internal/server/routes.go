// Package server wires HTTP handlers into a chi router for the room chat
// application.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRoutes configures and returns the router with all application routes:
// the welcome/health check, the WebSocket endpoint and the stats endpoint.
func SetupRoutes(g *Gateway) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", HealthHandler)
	r.Get("/ws", g.WebSocketHandler)
	r.Get("/stats", g.StatsHandler)
	return r
}
