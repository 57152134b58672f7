// Package server exposes HTTP handlers, including WebSocket upgrades, the
// welcome/health endpoint and runtime stats.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// WelcomeMessage is served by the health endpoint.
const WelcomeMessage = "Welcome to the real-time chat application!"

// Stats is the body of the stats endpoint.
type Stats struct {
	Rooms       int `json:"rooms"`
	Members     int `json:"members"`
	Connections int `json:"connections"`
}

// WebSocketHandler handles WebSocket upgrade requests. It validates that the
// request uses the GET method, upgrades the HTTP connection, creates a new
// Client and hands it to the run loop, which starts the pumps.
func (g *Gateway) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("addr", r.RemoteAddr).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(conn, g, r.RemoteAddr)
	if !g.Register(client) {
		client.logger().Info("Rejecting client during shutdown")
		_ = conn.Close()
	}
}

// HealthHandler provides a simple health check endpoint that returns a
// static welcome string.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, WelcomeMessage)
}

// StatsHandler reports room, membership and connection counts as JSON.
func (g *Gateway) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	rooms, members := g.rooms.Stats()
	stats := Stats{
		Rooms:       rooms,
		Members:     members,
		Connections: g.clients.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.WithError(err).Warn("Error writing stats response")
	}
}
