// Package server coordinates client registration, pump goroutines and
// disconnect cleanup for the room chat WebSocket system via the Gateway type.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Gateway accepts WebSocket clients, runs their pumps and ties connection
// lifetime to room membership: when a client goes away the room hub is told
// to drop it from every room it joined.
type Gateway struct {
	config     Config
	clients    *Clients
	rooms      *chat.Hub
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
	register   chan *Client
	unregister chan *Client
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewGateway wires a gateway around an existing client registry and room hub.
// The hub is expected to deliver its events through clients.
func NewGateway(cfg *Config, clients *Clients, rooms *chat.Hub) *Gateway {
	if cfg == nil {
		cfg = NewConfig()
	}
	sanitized := cfg.Sanitize()
	policy := newOriginPolicy(sanitized.AllowedOrigins)

	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		config:     sanitized,
		clients:    clients,
		rooms:      rooms,
		dispatcher: NewDispatcher(rooms),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.checkOrigin,
		},
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// New builds the full stack for cfg: client registry, room hub and gateway.
func New(cfg *Config) *Gateway {
	clients := NewClients()
	return NewGateway(cfg, clients, chat.NewHub(clients))
}

// Rooms returns the room hub served by the gateway.
func (g *Gateway) Rooms() *chat.Hub {
	return g.rooms
}

// Clients returns the live client registry.
func (g *Gateway) Clients() *Clients {
	return g.clients
}

// Config returns the sanitized configuration in use.
func (g *Gateway) Config() Config {
	return g.config
}

// Run starts the gateway's main event loop, handling client registration and
// unregistration. It should be called in a separate goroutine and returns
// once Shutdown is called.
func (g *Gateway) Run() {
	defer close(g.done)

	for {
		select {
		case <-g.ctx.Done():
			g.shutdownClients()
			return

		case client := <-g.register:
			if client == nil {
				log.Warn("Received nil client registration; skipping")
				continue
			}

			count := g.clients.add(client)
			client.logger().WithField("clients", count).Info("Client registered")

			g.wg.Add(2)
			go func() {
				defer g.wg.Done()
				client.writePump()
			}()
			go func() {
				defer g.wg.Done()
				client.readPump()
			}()

		case client := <-g.unregister:
			g.release(client)
		}
	}
}

// Register hands a new client to the run loop. It reports false when the
// gateway is shutting down.
func (g *Gateway) Register(client *Client) bool {
	select {
	case g.register <- client:
		return true
	case <-g.ctx.Done():
		return false
	}
}

// unregisterClient is called by the read pump on exit. After shutdown the run
// loop is gone, so the client releases itself.
func (g *Gateway) unregisterClient(client *Client) {
	select {
	case g.unregister <- client:
	case <-g.ctx.Done():
		g.release(client)
	}
}

// release removes the client and leaves all of its rooms. Safe to call more
// than once for the same client.
func (g *Gateway) release(client *Client) {
	if !g.clients.remove(client) {
		return
	}
	left := g.rooms.HandleDisconnect(client.id)
	client.logger().WithFields(log.Fields{
		"clients":    g.clients.Len(),
		"rooms_left": left,
	}).Info("Client unregistered")
}

// shutdownClients closes all active client connections
func (g *Gateway) shutdownClients() {
	log.Info("Shutting down all client connections...")

	clients := g.clients.snapshot()
	for _, client := range clients {
		if client.conn == nil {
			continue
		}
		if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
			client.logger().WithError(err).Warn("Error closing client connection")
		}
	}

	log.WithField("clients", len(clients)).Info("Closed client connections")
}

// Shutdown initiates graceful shutdown of the gateway and waits for all pump
// goroutines to complete, or returns context.DeadlineExceeded once timeout
// elapses. Run must have been started.
func (g *Gateway) Shutdown(timeout time.Duration) error {
	log.Info("Initiating gateway shutdown...")

	g.cancel()
	<-g.done

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Gateway shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Warn("Gateway shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
