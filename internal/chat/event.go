package chat

import "fmt"

// Event names emitted by the Hub.
const (
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
	EventNewMessage = "new-message"
)

// Event is a named payload addressed to one or more connections.
type Event struct {
	Name    string
	Payload any
}

// Presence is the payload of user-joined and user-left events.
type Presence struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Message is a chat line relayed to every member of a room.
type Message struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// Sender delivers hub events to live connections. Deliver must not block and
// must not call back into the Hub; it is invoked with the hub lock held.
type Sender interface {
	Deliver(connIDs []string, ev Event)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(connIDs []string, ev Event)

// Deliver calls f(connIDs, ev).
func (f SenderFunc) Deliver(connIDs []string, ev Event) {
	f(connIDs, ev)
}

func joinedEvent(username string) Event {
	return Event{
		Name:    EventUserJoined,
		Payload: Presence{Username: username, Message: fmt.Sprintf("%s joined the room", username)},
	}
}

func leftEvent(username string) Event {
	return Event{
		Name:    EventUserLeft,
		Payload: Presence{Username: username, Message: fmt.Sprintf("%s left the room", username)},
	}
}
