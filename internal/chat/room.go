package chat

import "sort"

// Room is a named chat room with an optional password and a member roster
// keyed by connection id. Rooms are owned by a Hub and only touched under its
// lock.
type Room struct {
	id       string
	password string
	members  map[string]string
}

// Member is one connection in a room together with its display name.
type Member struct {
	ConnID   string
	Username string
}

func newRoom(id, password string) *Room {
	return &Room{
		id:       id,
		password: password,
		members:  make(map[string]string),
	}
}

// admits reports whether password opens the room. An empty room password
// means the room is open.
func (r *Room) admits(password string) bool {
	return r.password == "" || r.password == password
}

func (r *Room) has(connID string) bool {
	_, ok := r.members[connID]
	return ok
}

// recipients returns the connection ids of every member except skip.
func (r *Room) recipients(skip string) []string {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		if id == skip {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (r *Room) snapshot() []Member {
	members := make([]Member, 0, len(r.members))
	for id, name := range r.members {
		members = append(members, Member{ConnID: id, Username: name})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ConnID < members[j].ConnID })
	return members
}
