package websocket

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
	"github.com/soumyacodes007/social-media-backend/internal/models"
)

const (
	// persistTimeout bounds the best-effort presence writes
	persistTimeout = 5 * time.Second
	// announceStripes is the number of locks serializing announcements per identity
	announceStripes = 32
)

// PresenceStore persists presence transitions. Satisfied by repository.UserRepository.
type PresenceStore interface {
	SetPresence(ctx context.Context, phone string, online bool, at time.Time) (*models.User, error)
}

// OnlineMirror publishes the online set outside this process. Satisfied by *cache.RedisClient.
type OnlineMirror interface {
	MarkOnline(ctx context.Context, identity string) error
	MarkOffline(ctx context.Context, identity string, at time.Time) error
}

// Presence maps identities to their live connection.
//
// At most one client is held per identity; a newer user_online for the same
// identity replaces the older handle.
//
// Every transition takes a generation number under mu. Announcements for one
// identity run one at a time, and one whose generation has been superseded is
// dropped, so the stored and broadcast state always ends on the latest
// transition.
type Presence struct {
	hub    *Hub
	store  PresenceStore
	mirror OnlineMirror

	mu         sync.Mutex
	byIdentity map[string]*Client
	gen        map[string]uint64
	seq        uint64

	stripes [announceStripes]sync.Mutex

	now func() time.Time
}

// NewPresence creates a presence directory. store and mirror may be nil.
func NewPresence(hub *Hub, store PresenceStore, mirror OnlineMirror) *Presence {
	return &Presence{
		hub:        hub,
		store:      store,
		mirror:     mirror,
		byIdentity: make(map[string]*Client),
		gen:        make(map[string]uint64),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetOnline binds identity to client and announces it to every connection.
func (p *Presence) SetOnline(ctx context.Context, identity string, client *Client) {
	p.mu.Lock()
	if previous := client.setIdentity(identity); previous != "" && previous != identity {
		// the connection switched identities; the old one no longer points here
		if p.byIdentity[previous] == client {
			delete(p.byIdentity, previous)
		}
	}
	p.byIdentity[identity] = client
	gen := p.nextGen(identity)
	count := len(p.byIdentity)
	p.mu.Unlock()

	metrics.Get().PresenceOnline.Set(float64(count))
	logger.Log.Info("User online", logger.WithIdentity(identity), logger.WithClientID(client.ID))

	p.announce(ctx, identity, gen, PresenceUpdatePayload{Identity: identity, IsOnline: true}, p.now())
}

// Remove drops the identity held by client, if any, and announces it offline.
// Clients that never identified, or were replaced by a newer connection, are ignored.
func (p *Presence) Remove(ctx context.Context, client *Client) {
	p.mu.Lock()
	identity := ""
	for id, c := range p.byIdentity {
		if c == client {
			identity = id
			break
		}
	}
	if identity == "" {
		p.mu.Unlock()
		return
	}
	delete(p.byIdentity, identity)
	gen := p.nextGen(identity)
	count := len(p.byIdentity)
	p.mu.Unlock()

	metrics.Get().PresenceOnline.Set(float64(count))

	lastSeen := p.now()
	logger.Log.Info("User offline", logger.WithIdentity(identity), logger.WithClientID(client.ID))

	p.announce(ctx, identity, gen, PresenceUpdatePayload{Identity: identity, IsOnline: false, LastSeen: &lastSeen}, lastSeen)
}

// nextGen stamps a new transition for identity. Callers hold mu.
func (p *Presence) nextGen(identity string) uint64 {
	p.seq++
	p.gen[identity] = p.seq
	return p.seq
}

func (p *Presence) current(identity string, gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen[identity] == gen
}

func (p *Presence) stripe(identity string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return &p.stripes[h.Sum32()%announceStripes]
}

// announce persists and broadcasts one transition unless a newer one for the
// same identity has already been stamped.
func (p *Presence) announce(ctx context.Context, identity string, gen uint64, update PresenceUpdatePayload, at time.Time) {
	lock := p.stripe(identity)
	lock.Lock()
	defer lock.Unlock()

	if !p.current(identity, gen) {
		logger.Log.Debug("Skipping superseded presence transition", logger.WithIdentity(identity))
		return
	}
	p.persist(ctx, identity, update.IsOnline, at)
	p.broadcastPresence(update)

	if !update.IsOnline {
		p.mu.Lock()
		if p.gen[identity] == gen {
			delete(p.gen, identity)
		}
		p.mu.Unlock()
	}
}

// persist writes the transition to the store and the mirror. Failures are logged only.
func (p *Presence) persist(ctx context.Context, identity string, online bool, at time.Time) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if p.store != nil {
		if _, err := p.store.SetPresence(ctx, identity, online, at); err != nil {
			logger.WarnWithFields("Failed to persist presence", err, logger.WithIdentity(identity))
		}
	}

	if p.mirror == nil {
		return
	}
	var err error
	if online {
		err = p.mirror.MarkOnline(ctx, identity)
	} else {
		err = p.mirror.MarkOffline(ctx, identity, at)
	}
	if err != nil {
		logger.WarnWithFields("Failed to mirror presence", err, logger.WithIdentity(identity))
	}
}

// broadcastPresence fans an update out to all connections.
// This is O(connections) per transition; a watcher set would scope it.
func (p *Presence) broadcastPresence(update PresenceUpdatePayload) {
	p.hub.Broadcast(NewMessage(MessageTypePresenceUpdate, update))
}

// IsOnline reports whether identity has a live connection
func (p *Presence) IsOnline(identity string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.byIdentity[identity]
	return ok
}

// ClientFor returns the connection bound to identity
func (p *Presence) ClientFor(identity string) (*Client, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.byIdentity[identity]
	return c, ok
}

// OnlineIdentities returns the online identities in sorted order
func (p *Presence) OnlineIdentities() []string {
	p.mu.Lock()
	identities := make([]string, 0, len(p.byIdentity))
	for id := range p.byIdentity {
		identities = append(identities, id)
	}
	p.mu.Unlock()

	sort.Strings(identities)
	return identities
}

// Count returns the number of online identities
func (p *Presence) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byIdentity)
}
