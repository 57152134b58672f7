package chat

import "sort"

// Stats returns the number of registered rooms and the total number of
// memberships across them.
func (h *Hub) Stats() (rooms, members int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms = len(h.rooms)
	for _, r := range h.rooms {
		members += len(r.members)
	}
	return rooms, members
}

// Exists reports whether roomID is currently registered.
func (h *Hub) Exists(roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.rooms[roomID]
	return ok
}

// Members returns the room roster ordered by connection id, or nil when the
// room does not exist.
func (h *Hub) Members(roomID string) []Member {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	return room.snapshot()
}

// RoomsOf returns the sorted ids of the rooms connID is a member of.
func (h *Hub) RoomsOf(connID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.joined[connID]))
	for id := range h.joined[connID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
