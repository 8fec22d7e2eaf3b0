package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
)

var ErrInvalidItem = errors.New("product id and quantity must be positive")

// SnapshotStore keeps the last mirrored cart across gateway restarts.
type SnapshotStore interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// SnapshotKey is the cache key of the cart snapshot of a session.
func SnapshotKey(sessionID string) string {
	return "cart:" + sessionID
}

// HasSnapshot reports whether store holds a cart snapshot for the session.
func HasSnapshot(ctx context.Context, store SnapshotStore, sessionID string) bool {
	return store != nil && len(store.Get(ctx, SnapshotKey(sessionID))) > 0
}

// State is a read-only copy of the synchronizer state.
type State struct {
	Cart    *domain.Cart    `json:"cart"`
	Raw     json.RawMessage `json:"-"`
	Loading bool            `json:"loading"`
	// Restored is true while the cart comes from the snapshot cache and has
	// not been confirmed by the API yet.
	Restored bool `json:"restored"`
}

// Synchronizer mirrors the server-side cart of one session. Local state is
// either nil or exactly the last successful API response; totals are never
// computed here. Operations run one at a time.
type Synchronizer struct {
	api   clients.CartClient
	store SnapshotStore
	key   string
	ttl   time.Duration
	log   *logrus.Entry

	opMu sync.Mutex

	mu       sync.RWMutex
	raw      json.RawMessage
	cart     *domain.Cart
	loading  bool
	restored bool
}

func NewSynchronizer(api clients.CartClient, store SnapshotStore, sessionID string, ttl time.Duration, logger *logrus.Logger) *Synchronizer {
	return &Synchronizer{
		api:   api,
		store: store,
		key:   SnapshotKey(sessionID),
		ttl:   ttl,
		log:   logger.WithFields(logrus.Fields{"component": "cart", "session": sessionID}),
	}
}

// Restore fills an empty synchronizer from the snapshot cache. It reports
// whether a snapshot was found.
func (s *Synchronizer) Restore(ctx context.Context) bool {
	if s.store == nil {
		return false
	}
	raw := s.store.Get(ctx, s.key)
	if len(raw) == 0 {
		return false
	}
	var c domain.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		s.log.Warnf("Discarding unreadable cart snapshot: %v", err)
		s.store.Delete(ctx, s.key)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw != nil {
		return false
	}
	s.raw = raw
	s.cart = &c
	s.restored = true
	return true
}

func (s *Synchronizer) Load(ctx context.Context) error {
	return s.run(ctx, "load", s.api.GetCart)
}

func (s *Synchronizer) Add(ctx context.Context, productID int64, quantity int) error {
	if productID <= 0 || quantity <= 0 {
		return ErrInvalidItem
	}
	req := domain.CartItemRequest{ProductID: productID, Quantity: quantity}
	return s.run(ctx, "add", func(ctx context.Context) (*clients.CartPayload, error) {
		return s.api.AddItem(ctx, req)
	})
}

func (s *Synchronizer) Update(ctx context.Context, productID int64, quantity int) error {
	if productID <= 0 || quantity <= 0 {
		return ErrInvalidItem
	}
	req := domain.CartItemRequest{ProductID: productID, Quantity: quantity}
	return s.run(ctx, "update", func(ctx context.Context) (*clients.CartPayload, error) {
		return s.api.UpdateItem(ctx, req)
	})
}

func (s *Synchronizer) Remove(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return ErrInvalidItem
	}
	return s.run(ctx, "remove", func(ctx context.Context) (*clients.CartPayload, error) {
		return s.api.RemoveItem(ctx, productID)
	})
}

// Clear drops the local mirror and its snapshot. The server cart is untouched.
func (s *Synchronizer) Clear(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.raw, s.cart, s.restored = nil, nil, false
	s.mu.Unlock()
	if s.store != nil {
		s.store.Delete(ctx, s.key)
	}
}

// run performs one API call and, only when it succeeds, replaces the local
// state with the returned cart.
func (s *Synchronizer) run(ctx context.Context, op string, call func(context.Context) (*clients.CartPayload, error)) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	payload, err := call(ctx)
	if err != nil {
		s.log.Warnf("Cart %s failed: %v", op, err)
		return err
	}

	s.mu.Lock()
	s.raw = payload.Raw
	s.cart = payload.Cart
	s.restored = false
	s.mu.Unlock()
	s.log.Debugf("Cart %s applied", op)

	if s.store != nil {
		if payload.Raw == nil {
			s.store.Delete(ctx, s.key)
		} else {
			s.store.Set(ctx, s.key, payload.Raw, s.ttl)
		}
	}
	return nil
}

func (s *Synchronizer) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{Loading: s.loading, Restored: s.restored}
	if s.cart != nil {
		c := *s.cart
		c.Items = append([]domain.CartItem(nil), s.cart.Items...)
		st.Cart = &c
		st.Raw = append(json.RawMessage(nil), s.raw...)
	}
	return st
}

// Raw returns the mirrored bytes exactly as the API sent them, or nil.
func (s *Synchronizer) Raw() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), s.raw...)
}

func (s *Synchronizer) ItemsCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cart == nil {
		return 0
	}
	return s.cart.ItemsCount
}
