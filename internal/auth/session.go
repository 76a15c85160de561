package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/models"
)

// State is the snapshot consumers decide on. Nothing should be routed while
// Loading is true.
type State struct {
	User    *models.UserRecord
	Loading bool
}

func (s State) IsAuthenticated() bool {
	return s.User != nil
}

func (s State) Role() models.UserRole {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Session is the process-wide identity of one browser. It starts loading,
// resolves the stored token once, and from then on changes only through
// Login and Logout.
type Session struct {
	store *Store
	log   zerolog.Logger

	mu    sync.RWMutex
	state State
	// generation counts Login and Logout calls. The initial resolution only
	// adopts its result when no such call happened while it ran.
	generation uint64

	once sync.Once
	done chan struct{}

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func NewSession(store *Store, log zerolog.Logger) *Session {
	return &Session{
		store: store,
		log:   log,
		state: State{Loading: true},
		done:  make(chan struct{}),
		subs:  make(map[int]func(State)),
	}
}

// Init runs the initial resolution. Only the first call does any work; later
// calls return once that first resolution has finished.
func (s *Session) Init(ctx context.Context) {
	s.once.Do(func() {
		s.mu.RLock()
		gen := s.generation
		s.mu.RUnlock()

		user, drop := s.resolve(ctx)
		if drop && s.unchanged(gen) {
			s.logoutQuietly(ctx)
		}

		s.mu.Lock()
		if s.generation == gen {
			s.state.User = user
		}
		s.state.Loading = false
		snapshot := s.state
		s.mu.Unlock()

		close(s.done)
		s.notify(snapshot)
	})
}

// Start runs Init in the background, detached from ctx cancellation.
func (s *Session) Start(ctx context.Context) {
	go s.Init(context.WithoutCancel(ctx))
}

// Wait blocks until the initial resolution finished or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Login adopts a user returned by a successful login or registration call
// without another round trip.
func (s *Session) Login(user *models.UserRecord) {
	s.setUser(user)
}

func (s *Session) Logout(ctx context.Context) error {
	s.bump()
	err := s.store.Logout(ctx)
	s.setUser(nil)
	return err
}

// Subscribe registers fn for every state change and returns a func that
// removes it.
func (s *Session) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// resolve returns the user to adopt and whether the stored session should
// be cleared.
func (s *Session) resolve(ctx context.Context) (*models.UserRecord, bool) {
	token, err := s.store.Token(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("read token failed")
	}
	if token == "" {
		return nil, false
	}

	user, err := s.store.GetCurrentUser(ctx)
	if err == nil {
		return user, false
	}

	if errors.Is(err, ErrSessionChanged) {
		return nil, false
	}

	if apiclient.IsPendingApproval(err) {
		s.log.Info().Msg("account pending approval, clearing session")
		return nil, true
	}

	if stored := s.store.StoredUser(ctx); stored != nil {
		s.log.Warn().Err(err).Str("user_id", stored.ID).Msg("refresh user failed, using stored snapshot")
		return stored, false
	}

	s.log.Warn().Err(err).Msg("refresh user failed and no snapshot stored, clearing session")
	return nil, true
}

func (s *Session) unchanged(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation == gen
}

func (s *Session) bump() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

func (s *Session) logoutQuietly(ctx context.Context) {
	if err := s.store.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("clear session failed")
	}
}

func (s *Session) setUser(user *models.UserRecord) {
	s.mu.Lock()
	s.generation++
	s.state.User = user
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Session) notify(state State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
