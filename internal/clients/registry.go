// Package clients keeps the live state of each browser talking to the shell.
// Durable state lives in storage under the browser's id; everything here can
// be swept and rebuilt from it.
package clients

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/auth"
	"junkmart/web/internal/cart"
	"junkmart/web/internal/checkout"
	"junkmart/web/internal/resources"
	"junkmart/web/internal/storage"
)

var ErrEmptyID = errors.New("clients: empty client id")

type Client struct {
	ID        string
	Store     storage.Store
	Auth      *auth.Store
	Session   *auth.Session
	Cart      *cart.Cart
	Checkout  *checkout.Service
	Resources *resources.Set

	lastSeen    atomic.Int64
	unsubscribe func()
}

func (c *Client) touch(now time.Time) {
	c.lastSeen.Store(now.UnixNano())
}

func (c *Client) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

type Registry struct {
	base   storage.Store
	api    *apiclient.Client
	dedupe time.Duration
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
}

func NewRegistry(base storage.Store, api *apiclient.Client, dedupe time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		base:    base,
		api:     api,
		dedupe:  dedupe,
		log:     log,
		now:     time.Now,
		clients: make(map[string]*Client),
	}
}

// Get returns the live client for id, building it from storage on first use.
// A newly built client starts resolving its session in the background.
func (r *Registry) Get(ctx context.Context, id string) (*Client, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	r.mu.Lock()
	if c, ok := r.clients[id]; ok {
		c.touch(r.now())
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	built := r.build(ctx, id)

	r.mu.Lock()
	if c, ok := r.clients[id]; ok {
		// lost a race with a concurrent first request
		c.touch(r.now())
		r.mu.Unlock()
		return c, nil
	}
	built.touch(r.now())
	r.clients[id] = built
	r.mu.Unlock()

	built.Session.Start(ctx)
	r.log.Debug().Str("client_id", id).Msg("client attached")
	return built, nil
}

func (r *Registry) build(ctx context.Context, id string) *Client {
	log := r.log.With().Str("client_id", id).Logger()
	store := storage.Namespaced(r.base, id)
	authStore := auth.NewStore(store, r.api, log)
	session := auth.NewSession(authStore, log)
	c := cart.Load(ctx, store, log)
	cache := resources.NewCache(r.dedupe)

	client := &Client{
		ID:        id,
		Store:     store,
		Auth:      authStore,
		Session:   session,
		Cart:      c,
		Checkout:  checkout.New(c, authStore, log),
		Resources: resources.NewSet(cache, authStore),
	}
	client.unsubscribe = session.Subscribe(func(auth.State) {
		cache.Reset()
	})
	return client
}

// Each calls fn for a snapshot of the live clients.
func (r *Registry) Each(fn func(*Client)) {
	r.mu.Lock()
	list := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		list = append(list, c)
	}
	r.mu.Unlock()

	for _, c := range list {
		fn(c)
	}
}

// Sweep drops clients not seen for longer than idle and returns how many
// were dropped. Their stored state is kept.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var dropped []*Client
	for id, c := range r.clients {
		if c.LastSeen().Before(cutoff) {
			dropped = append(dropped, c)
			delete(r.clients, id)
		}
	}
	r.mu.Unlock()

	for _, c := range dropped {
		c.unsubscribe()
	}
	return len(dropped)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
