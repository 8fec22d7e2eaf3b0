package listing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
)

func TestOrderStatusChangeFlow(t *testing.T) {
	var puts, lists int32
	var gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/orders":
			atomic.AddInt32(&lists, 1)
			w.Write([]byte(`{"data":[{"id":12,"user_id":3,"total":"40.00","status":"paid"}],"meta":{"current_page":1,"last_page":1,"per_page":15,"total":1}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/admin/orders/12":
			atomic.AddInt32(&puts, 1)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			gotStatus = body["status"]
			w.Write([]byte(`{"message":"Order updated","data":{"id":12,"status":"shipped"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	api := clients.NewAPI(srv.URL, time.Second, logger)
	screen, ok := NewScreen(ScreenOrders, APIs{Orders: clients.NewOrderHTTPClient(api)}, NewConfirmations(), Options{Logger: logger})
	require.True(t, ok)
	orders := screen.(*OrdersScreen)

	ctx := context.Background()
	require.NoError(t, orders.Load(ctx, 1))

	_, err := orders.RequestStatusChange(12, "lost")
	assert.ErrorIs(t, err, ErrInvalidFilter)

	conf, err := orders.RequestStatusChange(12, domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, "Update Order Status", conf.Title)
	assert.Equal(t, `Are you sure you want to change the order status to "shipped"?`, conf.Prompt)
	assert.Equal(t, int32(0), atomic.LoadInt32(&puts))

	n, err := orders.confirms.Confirm(ctx, conf.ID)
	require.NoError(t, err)
	assert.Equal(t, "Order #12 status has been updated to shipped.", n.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&puts))
	assert.Equal(t, "shipped", gotStatus)
	assert.Equal(t, int32(2), atomic.LoadInt32(&lists))
}

func TestNewScreenUnknown(t *testing.T) {
	_, ok := NewScreen("invoices", APIs{}, NewConfirmations(), Options{})
	assert.False(t, ok)
	for _, name := range append([]string{ScreenCatalog}, AdminScreens...) {
		s, ok := NewScreen(name, APIs{}, NewConfirmations(), Options{})
		require.True(t, ok, name)
		assert.Equal(t, name, s.Name())
	}
}
