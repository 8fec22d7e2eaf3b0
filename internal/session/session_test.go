package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_gateway/internal/cart"
	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/listing"
)

func newTestStore(t *testing.T, h http.HandlerFunc, ttl time.Duration) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	api := clients.NewAPI(srv.URL, time.Second, logger)
	return NewStore(Deps{
		Auth:    clients.NewAuthHTTPClient(api),
		Cart:    clients.NewCartHTTPClient(api),
		Screens: listing.APIs{Catalog: clients.NewCatalogHTTPClient(api)},
		CartTTL: time.Hour,
		Logger:  logger,
	}, ttl)
}

func upstream(meStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			w.WriteHeader(meStatus)
			if meStatus == http.StatusOK {
				w.Write([]byte(`{"id":4,"name":"Ann","email":"ann@x.io","role":"admin","has_verified_email":true}`))
			} else {
				w.Write([]byte(`{"message":"Unauthenticated."}`))
			}
		case "/carts":
			w.Write([]byte(`{"data":{"id":1,"items":[],"items_count":0,"total":"0"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestGetOrCreate(t *testing.T) {
	store := newTestStore(t, upstream(http.StatusOK), time.Hour)
	ctx := context.Background()

	st, created := store.GetOrCreate(ctx, "")
	require.True(t, created)
	_, err := uuid.Parse(st.ID)
	require.NoError(t, err)

	again, created := store.GetOrCreate(ctx, st.ID)
	assert.False(t, created)
	assert.Same(t, st, again)

	fresh, created := store.GetOrCreate(ctx, "not-a-uuid")
	assert.True(t, created)
	assert.NotEqual(t, "not-a-uuid", fresh.ID)
	assert.Equal(t, 2, store.Len())

	chosen := uuid.NewString()
	other, created := store.GetOrCreate(ctx, chosen)
	assert.True(t, created)
	assert.NotEqual(t, chosen, other.ID)
}

type memSnapshots struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (m *memSnapshots) Get(_ context.Context, key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[key]
}

func (m *memSnapshots) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

func (m *memSnapshots) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

func TestGetOrCreateAdoptsIDWithCartSnapshot(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	known := uuid.NewString()
	snapshots := &memSnapshots{items: map[string][]byte{
		cart.SnapshotKey(known): []byte(`{"id":1,"items":[],"items_count":2,"total":"9.00"}`),
	}}
	store := NewStore(Deps{Snapshots: snapshots, CartTTL: time.Hour, Logger: logger}, time.Hour)
	ctx := context.Background()

	st, created := store.GetOrCreate(ctx, known)
	require.True(t, created)
	assert.Equal(t, known, st.ID)
	assert.True(t, st.Cart.State().Restored)
	assert.Equal(t, 2, st.Cart.ItemsCount())

	stranger := uuid.NewString()
	st, _ = store.GetOrCreate(ctx, stranger)
	assert.NotEqual(t, stranger, st.ID)
}

func TestIdleSessionsExpire(t *testing.T) {
	store := newTestStore(t, upstream(http.StatusOK), time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	st, _ := store.GetOrCreate(context.Background(), "")
	now = now.Add(30 * time.Second)
	_, ok := store.Get(st.ID)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.sweep())
	_, ok = store.Get(st.ID)
	assert.False(t, ok)
}

func TestBootstrap(t *testing.T) {
	store := newTestStore(t, upstream(http.StatusOK), time.Hour)
	st, _ := store.GetOrCreate(context.Background(), "")

	require.NoError(t, st.Bootstrap(clients.WithToken(context.Background(), "tok")))
	require.NotNil(t, st.User())
	assert.True(t, st.User().IsAdmin())
	require.NotNil(t, st.Cart.State().Cart)
}

func TestBootstrapUnauthorized(t *testing.T) {
	store := newTestStore(t, upstream(http.StatusUnauthorized), time.Hour)
	st, _ := store.GetOrCreate(context.Background(), "")

	err := st.Bootstrap(context.Background())
	require.Error(t, err)
	assert.True(t, clients.IsUnauthorized(err))
	assert.Nil(t, st.User())
}

func TestScreensAreCreatedOnce(t *testing.T) {
	store := newTestStore(t, upstream(http.StatusOK), time.Hour)
	st, _ := store.GetOrCreate(context.Background(), "")

	a, ok := st.Screen(listing.ScreenCatalog)
	require.True(t, ok)
	b, _ := st.Screen(listing.ScreenCatalog)
	assert.Same(t, a, b)

	_, ok = st.Screen("reports")
	assert.False(t, ok)
}

func TestBindTokenResetsOnChange(t *testing.T) {
	var carts int32
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&carts, 1)
		w.Write([]byte(`{"data":{"id":1,"items":[],"items_count":3,"total":"9"}}`))
	}, time.Hour)
	ctx := context.Background()
	st, _ := store.GetOrCreate(ctx, "")

	assert.False(t, st.BindToken(ctx, "tok-a"))
	require.NoError(t, st.Cart.Load(ctx))
	a, _ := st.Screen(listing.ScreenCatalog)

	assert.False(t, st.BindToken(ctx, "tok-a"))
	assert.True(t, st.BindToken(ctx, "tok-b"))
	assert.Nil(t, st.Cart.State().Cart)
	b, _ := st.Screen(listing.ScreenCatalog)
	assert.NotSame(t, a, b)
}

func TestResetDropsPendingConfirmations(t *testing.T) {
	store := newTestStore(t, upstream(http.StatusOK), time.Hour)
	ctx := context.Background()
	st, _ := store.GetOrCreate(ctx, "")

	ran := false
	for i := 0; i < 3; i++ {
		st.Confirmations.Register(listing.Confirmation{Screen: listing.ScreenProducts}, func(context.Context) (listing.Notification, error) {
			ran = true
			return listing.Notification{}, nil
		})
	}
	require.Len(t, st.Confirmations.Pending(), 3)

	st.Reset(ctx)
	assert.Empty(t, st.Confirmations.Pending())
	assert.False(t, ran)
}
