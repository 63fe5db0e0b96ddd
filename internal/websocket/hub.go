// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/occurlog/internal/events"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/metrics"
	"github.com/tomtom215/occurlog/internal/models"
	"github.com/tomtom215/occurlog/internal/notify"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types.
const (
	MessageTypeOccurrenceCreated = "occurrence_created"
	MessageTypeLocationMapped    = "location_mapped"
	MessageTypeNotification      = "notification"
	MessageTypePing              = "ping"
	MessageTypePong              = "pong"
)

// broadcastBuffer is the capacity of the hub's inbound queue.
const broadcastBuffer = 256

// Message is the JSON frame exchanged with browsers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// NotificationData is the payload of a notification message.
type NotificationData struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SettingsStore looks up per-user preferences.
type SettingsStore interface {
	GetUserSettings(ctx context.Context, userID int64) (models.UserSettings, error)
}

// delivery is a queued message. A nil recipients set means every client.
type delivery struct {
	msg        Message
	recipients map[int64]struct{}
}

// Hub maintains the set of active clients and fans messages out to them.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan delivery
	Register   chan *Client
	Unregister chan *Client
	settings   SettingsStore

	mu      sync.RWMutex
	stopped chan struct{}
}

// NewHub creates a hub. settings may be nil, in which case no
// notification messages are sent.
func NewHub(settings SettingsStore) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan delivery, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		settings:   settings,
		stopped:    make(chan struct{}),
	}
}

// RunWithContext serves registrations and broadcasts until ctx is done.
// Lifecycle events are drained before broadcasts so a client registered
// ahead of a message always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	stopped := h.beginRun()
	defer h.endRun(stopped)

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

func (h *Hub) beginRun() chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.stopped:
		h.stopped = make(chan struct{})
	default:
	}
	return h.stopped
}

func (h *Hub) endRun(stopped chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	close(stopped)
}

// done is closed once the current (or most recent) run has returned.
func (h *Hub) done() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stopped
}

// register hands c to the hub. It reports false when the hub is not running.
func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done():
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done():
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(count))
	logging.Debug().Str("username", c.username).Int("total_clients", count).Msg("websocket client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(count))
	logging.Debug().Str("username", c.username).Int("total_clients", count).Msg("websocket client disconnected")
}

func (h *Hub) shutdown(ctx context.Context) {
	reason := ShutdownReasonContextCanceled
	if ctx.Err() == context.DeadlineExceeded {
		reason = ShutdownReasonContextDeadline
	}

	closed := h.closeAllClients()
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

// sortedClients returns the clients in connection order. Caller holds mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// deliver sends d to its recipients in connection order. Clients whose
// buffer is full are dropped.
func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	var dropped []*Client
	for _, c := range h.sortedClients() {
		if d.recipients != nil {
			if _, ok := d.recipients[c.userID]; !ok {
				continue
			}
		}
		select {
		case c.send <- d.msg:
		default:
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		close(c.send)
		delete(h.clients, c)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if len(dropped) > 0 {
		metrics.WSErrors.WithLabelValues("slow_client").Add(float64(len(dropped)))
		metrics.WSConnections.Set(float64(count))
		logging.Warn().Int("dropped", len(dropped)).Str("type", d.msg.Type).Msg("dropped slow websocket clients")
	}
}

func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.sortedClients()
	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.WSConnections.Set(0)
	return len(clients)
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.broadcast <- d:
	default:
		logging.Warn().Str("type", d.msg.Type).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastJSON sends a message to every connected client.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	h.enqueue(delivery{msg: Message{Type: messageType, Data: data}})
}

// SendToUsers sends a message to the clients of the given users only.
func (h *Hub) SendToUsers(userIDs []int64, messageType string, data interface{}) {
	if len(userIDs) == 0 {
		return
	}
	recipients := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		recipients[id] = struct{}{}
	}
	h.enqueue(delivery{msg: Message{Type: messageType, Data: data}, recipients: recipients})
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// connectedUsers returns the distinct users with an open connection,
// excluding exclude.
func (h *Hub) connectedUsers(exclude string) []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[int64]struct{}, len(h.clients))
	var ids []int64
	for _, c := range h.sortedClients() {
		if c.username == exclude {
			continue
		}
		if _, ok := seen[c.userID]; ok {
			continue
		}
		seen[c.userID] = struct{}{}
		ids = append(ids, c.userID)
	}
	return ids
}

// OnOccurrenceCreated refreshes every dashboard and notifies the users who
// asked for it.
func (h *Hub) OnOccurrenceCreated(ctx context.Context, e events.OccurrenceCreated) error {
	// Settings are read before anything is sent, so a failed lookup retried
	// by the bus does not repeat the broadcast.
	var notifyIDs []int64
	if h.settings != nil {
		for _, id := range h.connectedUsers(e.Actor) {
			s, err := h.settings.GetUserSettings(ctx, id)
			if err != nil {
				return err
			}
			if s.NotifyNewOccurrence {
				notifyIDs = append(notifyIDs, id)
			}
		}
	}

	h.BroadcastJSON(MessageTypeOccurrenceCreated, e)
	if len(notifyIDs) > 0 {
		msg := notify.NewOccurrenceMessage(e.Occurrence, e.Actor)
		h.SendToUsers(notifyIDs, MessageTypeNotification, NotificationData{Title: msg.Title, Body: msg.Body})
	}
	return nil
}

// OnLocationMapped refreshes the heat-map of every dashboard.
func (h *Hub) OnLocationMapped(_ context.Context, e events.LocationMapped) error {
	h.BroadcastJSON(MessageTypeLocationMapped, e)
	return nil
}

// Subscribe forwards bus events to connected clients.
func (h *Hub) Subscribe(bus *events.Bus) {
	events.Subscribe(bus, "websocket-occurrence-created", events.TopicOccurrenceCreated, h.OnOccurrenceCreated)
	events.Subscribe(bus, "websocket-location-mapped", events.TopicLocationMapped, h.OnLocationMapped)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
