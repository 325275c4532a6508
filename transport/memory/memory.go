// Package memory is an in-process transport that connects DKG
// participants through buffered channels. It is meant for tests and
// simulations.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/f3rmion/fdkg/dkg"
	"github.com/f3rmion/fdkg/party"
)

// ErrUnknownPeer is returned when sending to an id with no endpoint.
var ErrUnknownPeer = errors.New("memory: unknown peer")

// Interceptor sees every message before delivery. It may rewrite the
// message, or return false to drop it.
type Interceptor func(to party.Index, msg dkg.IncomingMessage) (dkg.IncomingMessage, bool)

// Hub routes messages between its endpoints.
type Hub struct {
	mu        sync.RWMutex
	size      int
	inboxes   map[party.Index]chan dkg.IncomingMessage
	intercept Interceptor
}

// NewHub returns a hub whose endpoints buffer up to size messages each.
func NewHub(size int) *Hub {
	if size <= 0 {
		size = 128
	}
	return &Hub{size: size, inboxes: make(map[party.Index]chan dkg.IncomingMessage)}
}

// Intercept installs fn on every subsequent delivery.
func (h *Hub) Intercept(fn Interceptor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.intercept = fn
}

// Endpoint returns the endpoint of id, creating it on first use.
func (h *Hub) Endpoint(id party.Index) *Endpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	inbox, ok := h.inboxes[id]
	if !ok {
		inbox = make(chan dkg.IncomingMessage, h.size)
		h.inboxes[id] = inbox
	}
	return &Endpoint{hub: h, id: id, inbox: inbox}
}

// Endpoint is one participant's connection to a Hub.
type Endpoint struct {
	hub   *Hub
	id    party.Index
	inbox chan dkg.IncomingMessage
}

// ID returns the owner of the endpoint.
func (e *Endpoint) ID() party.Index { return e.id }

// Send delivers msg to the inbox of to, blocking while it is full.
func (e *Endpoint) Send(ctx context.Context, to party.Index, msg dkg.IncomingMessage) error {
	e.hub.mu.RLock()
	inbox, ok := e.hub.inboxes[to]
	intercept := e.hub.intercept
	e.hub.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, to)
	}
	if intercept != nil {
		var deliver bool
		if msg, deliver = intercept(to, msg); !deliver {
			return nil
		}
	}
	select {
	case inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the next message addressed to this endpoint.
func (e *Endpoint) Receive(ctx context.Context) (dkg.IncomingMessage, error) {
	select {
	case msg := <-e.inbox:
		return msg, nil
	case <-ctx.Done():
		return dkg.IncomingMessage{}, ctx.Err()
	}
}
