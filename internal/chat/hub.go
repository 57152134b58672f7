// Package chat implements the room hub: the in-memory registry of rooms,
// password-gated admission, membership lifecycle and the fan-out of presence
// and chat events to room members.
//
// The Hub knows nothing about sockets. Connections are opaque ids and every
// outbound event goes through a Sender supplied by the transport layer.
package chat

import (
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrRoomExists is returned by CreateRoom when the id is already registered.
	ErrRoomExists = errors.New("room already exists")
	// ErrRoomNotFound is returned by JoinRoom for an unknown room id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrPasswordMismatch is returned by JoinRoom when a protected room's
	// password does not match exactly.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrNotMember is returned by LeaveRoom when the connection is not in the room.
	ErrNotMember = errors.New("not a member of the room")
)

// Hub owns the room registry and the connection index. All methods are safe
// for concurrent use; a single mutex covers both maps so membership changes,
// empty-room deletion and index updates happen as one step.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	joined map[string]map[string]struct{}
	sender Sender
}

// NewHub creates an empty Hub that emits events through sender.
func NewHub(sender Sender) *Hub {
	if sender == nil {
		sender = SenderFunc(func([]string, Event) {})
	}
	return &Hub{
		rooms:  make(map[string]*Room),
		joined: make(map[string]map[string]struct{}),
		sender: sender,
	}
}

// CreateRoom registers an empty room. An empty password makes the room open.
func (h *Hub) CreateRoom(roomID, password string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; ok {
		return ErrRoomExists
	}
	h.rooms[roomID] = newRoom(roomID, password)

	log.WithFields(log.Fields{"room": roomID, "protected": password != ""}).Info("Room created")
	return nil
}

// JoinRoom adds connID to the room under username and notifies the other
// members. Joining a room the connection is already in succeeds without any
// change or event.
func (h *Hub) JoinRoom(roomID, connID, username, password string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if !room.admits(password) {
		return ErrPasswordMismatch
	}
	if room.has(connID) {
		return nil
	}

	room.members[connID] = username
	h.index(connID, roomID)

	log.WithFields(log.Fields{"room": room.id, "conn": connID, "username": username}).Info("User joined room")

	if others := room.recipients(connID); len(others) > 0 {
		h.sender.Deliver(others, joinedEvent(username))
	}
	return nil
}

// LeaveRoom removes connID from the room and returns the display name it had.
// The room is deleted once its last member leaves.
func (h *Hub) LeaveRoom(roomID, connID string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.leave(roomID, connID)
}

// SendMessage relays a chat line to every member of the room, the sender's
// own connection included. Unknown rooms are ignored.
func (h *Hub) SendMessage(roomID, sender, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok || len(room.members) == 0 {
		return
	}
	h.sender.Deliver(room.recipients(""), Event{
		Name:    EventNewMessage,
		Payload: Message{Sender: sender, Content: content},
	})
}

// HandleDisconnect leaves every room connID belongs to, with the same
// notifications as an explicit leave. It returns the number of rooms left.
func (h *Hub) HandleDisconnect(connID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms := h.joined[connID]
	ids := make([]string, 0, len(rooms))
	for id := range rooms {
		ids = append(ids, id)
	}

	left := 0
	for _, id := range ids {
		if _, err := h.leave(id, connID); err == nil {
			left++
		}
	}
	return left
}

// leave must be called with h.mu held.
func (h *Hub) leave(roomID, connID string) (string, error) {
	room, ok := h.rooms[roomID]
	if !ok || !room.has(connID) {
		return "", ErrNotMember
	}

	username := room.members[connID]
	delete(room.members, connID)
	h.unindex(connID, roomID)

	fields := log.Fields{"room": room.id, "conn": connID, "username": username}
	if len(room.members) == 0 {
		delete(h.rooms, roomID)
		log.WithFields(fields).Info("User left room; room removed")
		return username, nil
	}

	log.WithFields(fields).Info("User left room")
	h.sender.Deliver(room.recipients(""), leftEvent(username))
	return username, nil
}

func (h *Hub) index(connID, roomID string) {
	rooms, ok := h.joined[connID]
	if !ok {
		rooms = make(map[string]struct{})
		h.joined[connID] = rooms
	}
	rooms[roomID] = struct{}{}
}

func (h *Hub) unindex(connID, roomID string) {
	rooms, ok := h.joined[connID]
	if !ok {
		return
	}
	delete(rooms, roomID)
	if len(rooms) == 0 {
		delete(h.joined, connID)
	}
}
