// Package server defines the JSON envelope exchanged over each WebSocket and
// the request payloads of the room events.
package server

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Client to server event names.
const (
	EventCreateRoom  = "create-room"
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
)

// Server to client reply event names. Room events use the chat package names.
const (
	EventAck   = "ack"
	EventError = "error"
)

// Envelope is the frame format in both directions. ID correlates a request
// with its ack; requests without an ID get no reply.
type Envelope struct {
	Event string          `json:"event"`
	ID    string          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CreateRoomRequest is the payload of create-room. An empty password creates
// an open room.
type CreateRoomRequest struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password,omitempty"`
}

// JoinRoomRequest is the payload of join-room.
type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// LeaveRoomRequest is the payload of leave-room. Username is informational;
// the hub uses the name recorded at join time.
type LeaveRoomRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// SendMessageRequest is the payload of send-message.
type SendMessageRequest struct {
	RoomID  string      `json:"roomId"`
	Message ChatMessage `json:"message"`
}

// ChatMessage is the sender/content pair carried by send-message.
type ChatMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// AckPayload answers create-room and join-room.
type AckPayload struct {
	Success bool `json:"success"`
}

// ErrorPayload answers requests that could not be handled.
type ErrorPayload struct {
	Message string `json:"message"`
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == "" {
		return env, fmt.Errorf("decode envelope: missing event name")
	}
	return env, nil
}

func encodeEnvelope(event, id string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, ID: id, Data: data})
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
