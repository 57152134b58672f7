// Package server keeps the registry of live clients and delivers encoded
// events to their send queues.
package server

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Clients maps connection ids to live clients. It implements chat.Sender:
// delivery never blocks, and a client whose send queue is full is
// disconnected rather than buffered without bound.
type Clients struct {
	mu   sync.RWMutex
	byID map[string]*Client
}

// NewClients creates an empty client registry.
func NewClients() *Clients {
	return &Clients{byID: make(map[string]*Client)}
}

// Len returns the number of registered clients.
func (cs *Clients) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.byID)
}

// Get returns the live client registered under id.
func (cs *Clients) Get(id string) (*Client, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	c, ok := cs.byID[id]
	return c, ok
}

// Deliver encodes ev once and queues it for every listed connection. Ids that
// are no longer registered are skipped.
func (cs *Clients) Deliver(connIDs []string, ev chat.Event) {
	payload, err := encodeEnvelope(ev.Name, "", ev.Payload)
	if err != nil {
		log.WithError(err).WithField("event", ev.Name).Error("Error encoding event")
		return
	}

	for _, id := range connIDs {
		cs.sendTo(id, payload)
	}
}

func (cs *Clients) add(c *Client) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	c.closed = false
	cs.byID[c.id] = c
	return len(cs.byID)
}

// remove unregisters c and closes its send queue. It reports false if c was
// already gone.
func (cs *Clients) remove(c *Client) bool {
	cs.mu.Lock()
	if existing, ok := cs.byID[c.id]; !ok || existing != c {
		cs.mu.Unlock()
		return false
	}
	delete(cs.byID, c.id)
	c.closed = true
	cs.mu.Unlock()

	// Close the channel after releasing the lock; closed is already set so no
	// sendTo can reach it.
	close(c.send)
	return true
}

// sendTo queues payload for one client. The read lock is held for the whole
// send so remove cannot close the channel underneath it.
func (cs *Clients) sendTo(id string, payload []byte) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	c, ok := cs.byID[id]
	if !ok || c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		c.kick("send buffer full")
		return false
	}
}

func (cs *Clients) snapshot() []*Client {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	clients := make([]*Client, 0, len(cs.byID))
	for _, c := range cs.byID {
		clients = append(clients, c)
	}
	return clients
}
