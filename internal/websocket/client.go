package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024 // 512KB

	// Send buffer size
	sendBufferSize = 256

	// Upper bound for one event handler
	handlerTimeout = 15 * time.Second
)

var (
	// Time allowed for the peer to answer a ping
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

// ErrClientClosed is returned when sending to a closed client
var ErrClientClosed = errors.New("client closed")

// ErrSendBufferFull is returned when the client is not draining its queue
var ErrSendBufferFull = errors.New("send buffer full")

// Client represents a single WebSocket connection
type Client struct {
	ID string

	conn *websocket.Conn
	hub  *Hub

	// identity announced via user_online; empty until then
	identity   string
	identityMu sync.RWMutex

	// Buffered channel of outbound frames. Never closed; writers select on ctx.
	send chan []byte

	ConnectedAt time.Time
	RemoteAddr  string
	UserAgent   string

	limiter *rate.Limiter

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewClient creates a new Client. conn may be nil for in-process clients.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(hub.ctx)
	config := hub.GetRateLimitConfig()
	limit := rate.Limit(config.MessagesPerSecond)
	if config.MessagesPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Client{
		ID:          uuid.NewString(),
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		ConnectedAt: time.Now().UTC(),
		limiter:     rate.NewLimiter(limit, config.Burst),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Identity returns the identity bound by user_online
func (c *Client) Identity() string {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.identity
}

func (c *Client) setIdentity(identity string) (previous string) {
	c.identityMu.Lock()
	defer c.identityMu.Unlock()
	previous, c.identity = c.identity, identity
	return previous
}

// Context is cancelled when the connection ends
func (c *Client) Context() context.Context {
	return c.ctx
}

// ReadPump reads frames until the connection fails or the hub shuts down.
// Reads carry no deadline; dead peers are detected by the pings in WritePump.
func (c *Client) ReadPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.Read(c.ctx)

		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Log.Debug("Client closed connection", logger.WithClientID(c.ID))
			} else if c.ctx.Err() == nil {
				logger.WarnWithFields("Read error for client", err, logger.WithClientID(c.ID))
				c.hub.stats.Errors.Add(1)
			}
			return
		}

		c.HandleFrame(data)
	}
}

// HandleFrame decodes and dispatches one inbound frame.
func (c *Client) HandleFrame(data []byte) {
	if !c.limiter.Allow() {
		metrics.RecordRateLimitExceeded("websocket")
		c.hub.stats.Errors.Add(1)
		_ = c.SendError("rate_limited", "Too many messages, please slow down")
		return
	}

	c.hub.stats.MessagesReceived.Add(1)

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		logger.WarnWithFields("WebSocket JSON parse error", err, logger.WithClientID(c.ID))
		_ = c.SendError("invalid_json", "Failed to parse message")
		return
	}

	c.handleMessage(&message)
}

// WritePump writes queued frames and keepalive pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.drain()
			c.conn.Close(websocket.StatusGoingAway, "connection closed")
			return

		case data := <-c.send:
			ctx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, data)
			cancel()

			if err != nil {
				logger.WarnWithFields("Write error for client", err, logger.WithClientID(c.ID))
				c.hub.stats.Errors.Add(1)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, pongWait)
			err := c.conn.Ping(ctx)
			cancel()

			if err != nil {
				logger.WarnWithFields("Ping failed for client", err, logger.WithClientID(c.ID))
				return
			}
		}
	}
}

// drain flushes frames queued before shutdown, best effort.
func (c *Client) drain() {
	for {
		select {
		case data := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			err := c.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		default:
			return
		}
	}
}

// handleMessage routes one event to its handler and acks the result.
func (c *Client) handleMessage(message *Message) {
	if message.Timestamp.IsZero() {
		message.Timestamp = FlexibleTime{Time: time.Now().UTC()}
	}

	if message.Type == MessageTypePing || message.Type == "heartbeat" {
		c.handlePing(message)
		return
	}

	handler, ok := c.hub.GetHandler(message.Type)
	if !ok {
		logger.Log.Warn("Unknown message type",
			logger.WithClientID(c.ID),
			zap.String("type", message.Type))
		metrics.RecordRealtimeEvent("unknown", errors.New("unknown type"))
		_ = c.Send(NewReply(message, MessageTypeError, ErrorPayload{
			Code:    "unknown_type",
			Message: fmt.Sprintf("Unknown message type: %s", message.Type),
		}))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, handlerTimeout)
	ctx, span := telemetry.StartEventSpan(ctx, message.Type, c.ID)
	data, err := handler(ctx, c, message)
	telemetry.End(span, err)
	cancel()

	metrics.RecordRealtimeEvent(message.Type, err)
	if err != nil {
		c.hub.stats.Errors.Add(1)
		logger.Log.Warn("Handler error",
			logger.WithClientID(c.ID),
			logger.WithIdentity(c.Identity()),
			zap.String("type", message.Type),
			zap.Error(err))
	}

	if sendErr := c.Send(NewAck(message, data, err)); sendErr != nil {
		logger.WarnWithFields("Failed to deliver ack", sendErr,
			logger.WithClientID(c.ID),
			zap.String("type", message.Type))
	}
}

// handlePing responds to ping messages with pong
func (c *Client) handlePing(message *Message) {
	var ping PingPayload
	if err := message.ParsePayload(&ping); err != nil {
		ping.ClientTime = 0
	}

	serverTime := time.Now().UnixMilli()
	latency := int64(0)
	if ping.ClientTime > 0 {
		latency = serverTime - ping.ClientTime
	}

	// Best-effort pong response - connection may be closing
	_ = c.Send(NewReply(message, MessageTypePong, PongPayload{
		ClientTime: ping.ClientTime,
		ServerTime: serverTime,
		Latency:    latency,
	}))
}

// Send queues a message for this client without blocking.
func (c *Client) Send(message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return c.SendRaw(data)
}

// SendRaw queues an already encoded frame
func (c *Client) SendRaw(data []byte) error {
	select {
	case <-c.ctx.Done():
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.hub.stats.FramesDropped.Add(1)
		metrics.Get().WebSocketDroppedTotal.Inc()
		return ErrSendBufferFull
	}
}

// SendError sends an error frame to the client
func (c *Client) SendError(code, message string) error {
	return c.Send(NewErrorMessage(code, message))
}

// Close cancels the client's context. The write pump closes the socket.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
	})
}

// IsClosed reports whether the client has been closed
func (c *Client) IsClosed() bool {
	return c.ctx.Err() != nil
}
