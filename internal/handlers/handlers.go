package handlers

import (
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/chat"
	"github.com/soumyacodes007/social-media-backend/internal/repository"
	"github.com/soumyacodes007/social-media-backend/internal/storage"
	"github.com/soumyacodes007/social-media-backend/internal/websocket"
)

// Options toggles optional endpoints
type Options struct {
	// EnableBulkDelete allows DELETE /api/chats/delete-all
	EnableBulkDelete bool
}

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	repos   *repository.Repositories
	router  *chat.Router
	gateway *websocket.Gateway
	blobs   storage.BlobStore
	health  HealthChecker
	opts    Options
	now     func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(repos *repository.Repositories, router *chat.Router, blobs storage.BlobStore, opts Options) *Handlers {
	return &Handlers{
		repos:  repos,
		router: router,
		blobs:  blobs,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetGateway sets the real-time gateway so HTTP-sent chat messages reach open sockets
func (h *Handlers) SetGateway(gateway *websocket.Gateway) {
	h.gateway = gateway
}

// SetHealthChecker sets the database probe used by /health
func (h *Handlers) SetHealthChecker(checker HealthChecker) {
	h.health = checker
}
