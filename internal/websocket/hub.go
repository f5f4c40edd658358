// Package websocket is the realtime gateway: connection pumps, rooms,
// presence and the chat event handlers, on github.com/coder/websocket.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"go.uber.org/zap"
)

// Hub tracks live connections and the rooms they joined.
//
// Room membership is additive: a client may sit in any number of rooms.
// Delivery never blocks; a client whose buffer is full misses the frame.
type Hub struct {
	clients map[*Client]struct{}

	// roomID -> members, and the reverse index used on disconnect
	rooms       map[string]map[*Client]struct{}
	clientRooms map[*Client]map[string]struct{}

	mu sync.RWMutex

	// global fan-out is queued and drained by Run
	broadcast chan *Message

	handlers   map[string]MessageHandler
	handlersMu sync.RWMutex

	rateLimit RateLimitConfig
	stats     *Stats

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Stats tracks gateway counters for /health
type Stats struct {
	TotalConnections  atomic.Int64
	ActiveConnections atomic.Int64
	MessagesReceived  atomic.Int64
	MessagesSent      atomic.Int64
	Errors            atomic.Int64
	FramesDropped     atomic.Int64
}

// RateLimitConfig bounds inbound frames per client
type RateLimitConfig struct {
	MessagesPerSecond float64
	Burst             int
}

// DefaultRateLimitConfig returns the limits used when none are configured
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{MessagesPerSecond: 10, Burst: 20}
}

// MessageHandler processes one inbound event. The returned value is sent
// back to the originating client as the ack data.
type MessageHandler func(ctx context.Context, client *Client, message *Message) (interface{}, error)

// NewHub creates a new Hub instance
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[*Client]struct{}),
		rooms:       make(map[string]map[*Client]struct{}),
		clientRooms: make(map[*Client]map[string]struct{}),
		broadcast:   make(chan *Message, 256),
		handlers:    make(map[string]MessageHandler),
		rateLimit:   DefaultRateLimitConfig(),
		stats:       &Stats{},
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// RegisterHandler registers a handler for a specific message type
func (h *Hub) RegisterHandler(msgType string, handler MessageHandler) {
	h.handlersMu.Lock()
	defer h.handlersMu.Unlock()
	h.handlers[msgType] = handler
	logger.Log.Debug("Registered realtime handler", zap.String("type", msgType))
}

// GetHandler returns the handler for a message type
func (h *Hub) GetHandler(msgType string) (MessageHandler, bool) {
	h.handlersMu.RLock()
	defer h.handlersMu.RUnlock()
	handler, ok := h.handlers[msgType]
	return handler, ok
}

// Run drains the global broadcast queue until Shutdown.
func (h *Hub) Run() {
	defer close(h.done)
	logger.Log.Info("WebSocket hub started")

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return
		case message := <-h.broadcast:
			h.deliverAll(message)
		}
	}
}

// Register adds a connected client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.stats.TotalConnections.Add(1)
	active := h.stats.ActiveConnections.Add(1)
	metrics.Get().WebSocketConnections.Set(float64(active))

	logger.Log.Info("Client connected",
		logger.WithClientID(client.ID),
		zap.Int64("active", active),
	)
}

// Unregister removes a client from the hub and from every room it joined.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	for roomID := range h.clientRooms[client] {
		h.removeFromRoomLocked(client, roomID)
	}
	delete(h.clientRooms, client)
	rooms := len(h.rooms)
	h.mu.Unlock()

	client.cancel()

	active := h.stats.ActiveConnections.Add(-1)
	m := metrics.Get()
	m.WebSocketConnections.Set(float64(active))
	m.RoomsActive.Set(float64(rooms))

	logger.Log.Info("Client disconnected",
		logger.WithClientID(client.ID),
		logger.WithIdentity(client.Identity()),
		zap.Int64("active", active),
	)
}

// Join adds client to roomID. Joining twice is a no-op.
func (h *Hub) Join(client *Client, roomID string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}
	if h.clientRooms[client] == nil {
		h.clientRooms[client] = make(map[string]struct{})
	}
	h.clientRooms[client][roomID] = struct{}{}
	rooms := len(h.rooms)
	h.mu.Unlock()

	metrics.Get().RoomsActive.Set(float64(rooms))
}

// Leave removes client from roomID.
func (h *Hub) Leave(client *Client, roomID string) {
	h.mu.Lock()
	h.removeFromRoomLocked(client, roomID)
	if rooms := h.clientRooms[client]; rooms != nil {
		delete(rooms, roomID)
	}
	rooms := len(h.rooms)
	h.mu.Unlock()

	metrics.Get().RoomsActive.Set(float64(rooms))
}

func (h *Hub) removeFromRoomLocked(client *Client, roomID string) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// InRoom reports whether client has joined roomID
func (h *Hub) InRoom(client *Client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][client]
	return ok
}

// RoomSize returns the number of connections in roomID
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// RoomsOf lists the rooms client has joined
func (h *Hub) RoomsOf(client *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms := make([]string, 0, len(h.clientRooms[client]))
	for roomID := range h.clientRooms[client] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// BroadcastToRoom delivers message to every member of roomID and returns
// how many members it was queued for.
func (h *Hub) BroadcastToRoom(roomID string, message *Message) int {
	data, err := json.Marshal(message)
	if err != nil {
		logger.ErrorWithFields("Failed to marshal room message", err, logger.WithRoomID(roomID))
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.rooms[roomID] {
		if h.enqueue(client, data) {
			delivered++
		}
	}
	return delivered
}

// Broadcast queues message for every connected client.
func (h *Hub) Broadcast(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.ctx.Done():
	}
}

func (h *Hub) deliverAll(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.ErrorWithFields("Failed to marshal broadcast message", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		h.enqueue(client, data)
	}
}

// enqueue hands data to the client's writer without blocking.
func (h *Hub) enqueue(client *Client, data []byte) bool {
	select {
	case <-client.ctx.Done():
		return false
	default:
	}

	select {
	case client.send <- data:
		h.stats.MessagesSent.Add(1)
		return true
	default:
		h.stats.FramesDropped.Add(1)
		metrics.Get().WebSocketDroppedTotal.Inc()
		logger.Log.Warn("Client send buffer full, dropping frame", logger.WithClientID(client.ID))
		return false
	}
}

// ConnectionCount returns the number of registered clients
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetStats returns a point-in-time copy of the counters
func (h *Hub) GetStats() StatsSnapshot {
	return StatsSnapshot{
		TotalConnections:  h.stats.TotalConnections.Load(),
		ActiveConnections: h.stats.ActiveConnections.Load(),
		MessagesReceived:  h.stats.MessagesReceived.Load(),
		MessagesSent:      h.stats.MessagesSent.Load(),
		Errors:            h.stats.Errors.Load(),
		FramesDropped:     h.stats.FramesDropped.Load(),
	}
}

// StatsSnapshot is a point-in-time snapshot of Stats
type StatsSnapshot struct {
	TotalConnections  int64 `json:"total_connections"`
	ActiveConnections int64 `json:"active_connections"`
	MessagesReceived  int64 `json:"messages_received"`
	MessagesSent      int64 `json:"messages_sent"`
	Errors            int64 `json:"errors"`
	FramesDropped     int64 `json:"frames_dropped"`
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"connections=%d/%d messages=rx:%d/tx:%d errors=%d dropped=%d",
		s.ActiveConnections, s.TotalConnections,
		s.MessagesReceived, s.MessagesSent,
		s.Errors, s.FramesDropped,
	)
}

// Shutdown stops Run and closes every client, waiting at most until ctx ends.
func (h *Hub) Shutdown(ctx context.Context) error {
	logger.Log.Info("Initiating WebSocket hub shutdown")
	h.cancel()

	select {
	case <-h.done:
		logger.Log.Info("WebSocket hub shutdown complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

func (h *Hub) closeAll() {
	notice, _ := json.Marshal(NewMessage(MessageTypeSystem, SystemPayload{Event: "server_shutdown"}))

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		select {
		case client.send <- notice:
		default:
		}
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]struct{})
	h.rooms = make(map[string]map[*Client]struct{})
	h.clientRooms = make(map[*Client]map[string]struct{})
	h.mu.Unlock()

	// Unregister finds nothing after the maps are reset, so account here.
	active := h.stats.ActiveConnections.Add(-int64(len(clients)))
	m := metrics.Get()
	m.WebSocketConnections.Set(float64(active))
	m.RoomsActive.Set(0)

	// give writers a moment to flush the notice
	time.Sleep(50 * time.Millisecond)
	for _, client := range clients {
		client.Close()
	}
	logger.Log.Info("Closed connections during shutdown", zap.Int("count", len(clients)))
}

// SetRateLimitConfig updates the limits applied to new clients
func (h *Hub) SetRateLimitConfig(config RateLimitConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rateLimit = config
}

// GetRateLimitConfig returns the limits applied to new clients
func (h *Hub) GetRateLimitConfig() RateLimitConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rateLimit
}
