package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
)

// Handler upgrades HTTP requests on /api/ws into gateway connections
type Handler struct {
	gateway        *Gateway
	originPatterns []string
}

// NewHandler creates a WebSocket handler. An empty or "*" origin list accepts any origin.
func NewHandler(gateway *Gateway, originPatterns []string) *Handler {
	return &Handler{gateway: gateway, originPatterns: originPatterns}
}

func (h *Handler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{CompressionMode: websocket.CompressionContextTakeover}
	if len(h.originPatterns) == 0 || (len(h.originPatterns) == 1 && h.originPatterns[0] == "*") {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.originPatterns
	}
	return opts
}

// ServeHTTP upgrades the request and serves the connection until it closes.
// Mount it on the server's http.ServeMux, not as a gin route: gin's writer
// refuses the hijack once the 101 header has been written.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		logger.WarnWithFields("WebSocket upgrade failed", err)
		return
	}

	hub := h.gateway.Hub()
	client := NewClient(hub, conn)
	client.RemoteAddr = r.RemoteAddr
	client.UserAgent = r.UserAgent()

	hub.Register(client)

	_ = client.Send(NewMessage(MessageTypeSystem, SystemPayload{
		Event:   "connected",
		Message: "connected",
		Data: map[string]interface{}{
			"client_id":   client.ID,
			"server_time": time.Now().UTC().UnixMilli(),
		},
	}))

	go client.WritePump()
	client.ReadPump() // blocks until the client disconnects

	h.disconnect(client)
}

func (h *Handler) disconnect(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	h.gateway.Presence().Remove(ctx, client)
	h.gateway.Hub().Unregister(client)
}

// Stats serves the hub counters and presence count as JSON
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"hub":    h.gateway.Hub().GetStats(),
		"online": h.gateway.Presence().Count(),
	})
}
