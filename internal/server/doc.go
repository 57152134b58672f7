// Package server implements the HTTP and WebSocket transport for the room chat
// service.
//
// The implementation is organized into specialized files for configuration,
// the client registry, client pumps, the gateway run loop, the event
// dispatcher, routing, and HTTP handlers. Room state itself lives in the chat
// package; this package only moves events between sockets and the hub.
package server
