package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/chat"
)

func newRegisteredClient(t *testing.T, cs *Clients, gw *Gateway) *Client {
	t.Helper()
	c := NewClient(nil, gw, "127.0.0.1:0")
	cs.add(c)
	return c
}

func TestNewClient(t *testing.T) {
	a := NewClient(nil, nil, "127.0.0.1:12345")
	b := NewClient(nil, nil, "127.0.0.1:12346")

	require.NotNil(t, a)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID(), "connection ids are unique")
	assert.Equal(t, defaultSendBufferSize, cap(a.send))
	assert.Empty(t, a.GetSendChan())
}

func TestClientsDeliver(t *testing.T) {
	cs := NewClients()
	gw := NewGateway(nil, cs, chat.NewHub(cs))
	a := newRegisteredClient(t, cs, gw)
	b := newRegisteredClient(t, cs, gw)

	cs.Deliver([]string{a.ID(), "gone"}, chat.Event{
		Name:    chat.EventNewMessage,
		Payload: chat.Message{Sender: "x", Content: "y"},
	})

	require.Len(t, a.send, 1)
	assert.Empty(t, b.send)

	var env Envelope
	require.NoError(t, json.Unmarshal(<-a.send, &env))
	assert.Equal(t, chat.EventNewMessage, env.Event)
	assert.Empty(t, env.ID)
	assert.JSONEq(t, `{"sender":"x","content":"y"}`, string(env.Data))
}

func TestClientsSlowConsumerIsDropped(t *testing.T) {
	cs := NewClients()
	gw := NewGateway(&Config{SendBufferSize: 1}, cs, chat.NewHub(cs))
	c := newRegisteredClient(t, cs, gw)

	assert.True(t, cs.sendTo(c.ID(), []byte("first")))
	assert.False(t, cs.sendTo(c.ID(), []byte("second")), "full queue rejects and kicks")
	assert.Len(t, c.send, 1)
}

func TestClientsRemove(t *testing.T) {
	cs := NewClients()
	c := newRegisteredClient(t, cs, nil)
	assert.Equal(t, 1, cs.Len())

	assert.True(t, cs.remove(c))
	assert.False(t, cs.remove(c), "second remove is a no-op")
	assert.Zero(t, cs.Len())

	_, ok := cs.Get(c.ID())
	assert.False(t, ok)
	assert.False(t, cs.sendTo(c.ID(), []byte("late")), "removed clients are skipped")
}

func TestClientsHubIntegration(t *testing.T) {
	cs := NewClients()
	hub := chat.NewHub(cs)
	a := newRegisteredClient(t, cs, nil)
	b := newRegisteredClient(t, cs, nil)

	require.NoError(t, hub.CreateRoom("r", ""))
	require.NoError(t, hub.JoinRoom("r", a.ID(), "alice", ""))
	require.NoError(t, hub.JoinRoom("r", b.ID(), "bob", ""))

	var env Envelope
	require.Len(t, a.send, 1)
	require.NoError(t, json.Unmarshal(<-a.send, &env))
	assert.Equal(t, chat.EventUserJoined, env.Event)
	assert.JSONEq(t, `{"username":"bob","message":"bob joined the room"}`, string(env.Data))
	assert.Empty(t, b.send)
}
