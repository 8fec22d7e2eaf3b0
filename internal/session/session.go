package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront_gateway/internal/cart"
	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
	"storefront_gateway/internal/listing"
)

// Deps are the shared collaborators every session state is built from.
type Deps struct {
	Auth      clients.AuthClient
	Cart      clients.CartClient
	Screens   listing.APIs
	Snapshots cart.SnapshotStore
	CartTTL   time.Duration
	Debounce  time.Duration
	Logger    *logrus.Logger
}

// State is the application state of one browser session. Auth state is
// owned here, the cart by its synchronizer and each list screen by its
// controller, created on first use.
type State struct {
	ID            string
	Cart          *cart.Synchronizer
	Confirmations *listing.Confirmations

	deps *Deps
	log  *logrus.Entry

	mu       sync.Mutex
	owner    string
	bound    bool
	user     *domain.User
	screens  map[string]listing.Screen
	lastSeen time.Time
}

func newState(ctx context.Context, id string, deps *Deps) *State {
	s := &State{
		ID:            id,
		Cart:          cart.NewSynchronizer(deps.Cart, deps.Snapshots, id, deps.CartTTL, deps.Logger),
		Confirmations: listing.NewConfirmations(),
		deps:          deps,
		log:           deps.Logger.WithFields(logrus.Fields{"component": "session", "session": id}),
		screens:       make(map[string]listing.Screen),
		lastSeen:      time.Now(),
	}
	if s.Cart.Restore(ctx) {
		s.log.Debug("Cart restored from snapshot")
	}
	return s
}

func (s *State) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *State) SetUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

// Screen returns the controller for a list screen, creating it on first use.
func (s *State) Screen(name string) (listing.Screen, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.screens[name]; ok {
		return sc, true
	}
	sc, ok := listing.NewScreen(name, s.deps.Screens, s.Confirmations, listing.Options{
		Debounce: s.deps.Debounce,
		Logger:   s.deps.Logger,
	})
	if !ok {
		return nil, false
	}
	s.screens[name] = sc
	return sc, true
}

// Bootstrap fetches the signed-in user and the cart concurrently. Only the
// user lookup can fail it; a cart failure leaves the cart as it was.
func (s *State) Bootstrap(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	var user *domain.User
	g.Go(func() error {
		u, err := s.deps.Auth.Me(gctx)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	g.Go(func() error {
		if err := s.Cart.Load(gctx); err != nil {
			s.log.Warnf("Cart bootstrap failed: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Warnf("Session bootstrap failed: %v", err)
		return err
	}
	s.SetUser(user)
	s.log.WithField("user_id", user.ID).Info("Session bootstrapped")
	return nil
}

// BindToken ties the state to the auth token of the current request. When a
// different token (or none) shows up on a bound state, everything belonging
// to the previous user is reset first. It reports whether a reset happened.
func (s *State) BindToken(ctx context.Context, token string) bool {
	owner := ""
	if token != "" {
		sum := sha256.Sum256([]byte(token))
		owner = hex.EncodeToString(sum[:])
	}

	s.mu.Lock()
	if !s.bound {
		s.owner, s.bound = owner, true
		s.mu.Unlock()
		return false
	}
	if s.owner == owner {
		s.mu.Unlock()
		return false
	}
	s.owner = owner
	s.mu.Unlock()

	s.log.Debug("Auth token changed, resetting session state")
	s.Reset(ctx)
	return true
}

// Reset forgets everything tied to the signed-in user.
func (s *State) Reset(ctx context.Context) {
	s.Cart.Clear(ctx)
	s.mu.Lock()
	s.user = nil
	s.screens = make(map[string]listing.Screen)
	s.mu.Unlock()
	s.Confirmations.Clear()
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
