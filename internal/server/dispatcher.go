package server

import (
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// errUnsupportedEvent is reported for event names with no handler.
var errUnsupportedEvent = errors.New("unsupported event")

// EventHandler handles one decoded request from connection connID. The
// returned value is sent back as the ack payload when the request carried an
// id; a nil value means the event has no ack.
type EventHandler func(connID string, data json.RawMessage) (any, error)

// Dispatcher routes decoded envelopes to the room hub by event name.
type Dispatcher struct {
	rooms    *chat.Hub
	handlers map[string]EventHandler
}

// NewDispatcher creates a dispatcher with the room events registered.
func NewDispatcher(rooms *chat.Hub) *Dispatcher {
	d := &Dispatcher{
		rooms:    rooms,
		handlers: make(map[string]EventHandler),
	}
	d.Add(EventCreateRoom, d.createRoom)
	d.Add(EventJoinRoom, d.joinRoom)
	d.Add(EventLeaveRoom, d.leaveRoom)
	d.Add(EventSendMessage, d.sendMessage)
	return d
}

// Add registers handler for event, replacing any previous one.
func (d *Dispatcher) Add(event string, handler EventHandler) {
	d.handlers[event] = handler
}

// Dispatch decodes one raw frame, runs its handler and returns the encoded
// reply, or nil when nothing should be sent back. It never panics.
func (d *Dispatcher) Dispatch(connID string, raw []byte) (reply []byte) {
	logger := log.WithField("conn", connID)

	env, err := decodeEnvelope(raw)
	if err != nil {
		logger.WithError(err).Warn("Invalid message")
		return d.errorReply(env.ID, err)
	}
	logger = logger.WithField("event", env.Event)

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Recovered in event handler")
			reply = d.errorReply(env.ID, errors.New("internal error"))
		}
	}()

	handler, ok := d.handlers[env.Event]
	if !ok {
		logger.Warn("Unsupported event")
		return d.errorReply(env.ID, fmt.Errorf("%w: %s", errUnsupportedEvent, env.Event))
	}

	ack, err := handler(connID, env.Data)
	if err != nil {
		logger.WithError(err).Warn("Event handling failed")
		return d.errorReply(env.ID, err)
	}
	if ack == nil || env.ID == "" {
		return nil
	}

	out, err := encodeEnvelope(EventAck, env.ID, ack)
	if err != nil {
		logger.WithError(err).Error("Error encoding ack")
		return nil
	}
	return out
}

func (d *Dispatcher) errorReply(id string, err error) []byte {
	if id == "" {
		return nil
	}
	out, encErr := encodeEnvelope(EventError, id, ErrorPayload{Message: err.Error()})
	if encErr != nil {
		log.WithError(encErr).Error("Error encoding error reply")
		return nil
	}
	return out
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing data")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (d *Dispatcher) createRoom(_ string, data json.RawMessage) (any, error) {
	var req CreateRoomRequest
	if err := decodeData(data, &req); err != nil {
		return nil, err
	}
	return AckPayload{Success: d.rooms.CreateRoom(req.RoomID, req.Password) == nil}, nil
}

func (d *Dispatcher) joinRoom(connID string, data json.RawMessage) (any, error) {
	var req JoinRoomRequest
	if err := decodeData(data, &req); err != nil {
		return nil, err
	}
	err := d.rooms.JoinRoom(req.RoomID, connID, req.Username, req.Password)
	if err != nil {
		log.WithFields(log.Fields{"conn": connID, "room": req.RoomID}).WithError(err).Info("Join rejected")
	}
	return AckPayload{Success: err == nil}, nil
}

func (d *Dispatcher) leaveRoom(connID string, data json.RawMessage) (any, error) {
	var req LeaveRoomRequest
	if err := decodeData(data, &req); err != nil {
		return nil, err
	}
	name, err := d.rooms.LeaveRoom(req.RoomID, connID)
	if err != nil && !errors.Is(err, chat.ErrNotMember) {
		return nil, err
	}
	if err == nil && req.Username != name {
		log.WithFields(log.Fields{
			"conn":     connID,
			"room":     req.RoomID,
			"claimed":  req.Username,
			"recorded": name,
		}).Debug("Leave username differs from join name; using join name")
	}
	return nil, nil
}

func (d *Dispatcher) sendMessage(_ string, data json.RawMessage) (any, error) {
	var req SendMessageRequest
	if err := decodeData(data, &req); err != nil {
		return nil, err
	}
	d.rooms.SendMessage(req.RoomID, req.Message.Sender, req.Message.Content)
	return nil, nil
}
