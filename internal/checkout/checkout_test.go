package checkout

import (
	"context"
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
)

type fakeCart struct {
	loads int
}

func (f *fakeCart) Load(context.Context) error {
	f.loads++
	return nil
}

func newService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(clients.NewCheckoutHTTPClient(clients.NewAPI(srv.URL, time.Second, logger)), logger)
}

func TestVerifyWithoutSessionIssuesNoRequest(t *testing.T) {
	var calls int32
	s := newService(t, func(w http.ResponseWriter, r *http.Request) { atomic.AddInt32(&calls, 1) })
	_, err := s.Verify(context.Background(), &fakeCart{}, "  ")
	assert.ErrorIs(t, err, ErrNoSessionID)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestVerifySuccessReloadsCart(t *testing.T) {
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"Payment verified","data":{"order":{"id":55}}}`))
	})
	cart := &fakeCart{}
	v, err := s.Verify(context.Background(), cart, "cs_123")
	require.NoError(t, err)
	assert.True(t, v.Success)
	assert.Equal(t, int64(55), *v.OrderID)
	assert.Equal(t, 1, cart.loads)
}

func TestVerifyFailureKeepsCart(t *testing.T) {
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	})
	cart := &fakeCart{}
	v, err := s.Verify(context.Background(), cart, "cs_123")
	require.NoError(t, err)
	assert.False(t, v.Success)
	assert.Equal(t, VerifyFailure, v.Message)
	assert.Equal(t, 0, cart.loads)
}

func TestProcess(t *testing.T) {
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"ok","data":{"order_id":8,"payment_url":"https://pay.example/cs_8","total":"59.85"}}`))
	})
	session, err := s.Process(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), session.OrderID)
	assert.Equal(t, "https://pay.example/cs_8", session.PaymentURL)
	assert.Equal(t, "59.85", session.Total.StringFixed(2))
}

func TestProcessWithoutMirroredCartStillAsksAPI(t *testing.T) {
	var calls int32
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"Cart is empty"}`))
	})
	_, err := s.Process(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "Cart is empty", clients.UserMessage(err, ProcessFailure))
}

func TestProcessStructuredError(t *testing.T) {
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false,"message":"Product Cap is out of stock"}`))
	})
	_, err := s.Process(context.Background(), "ring the bell")
	require.Error(t, err)
	assert.Equal(t, clients.KindValidation, clients.KindOf(err))
	assert.Equal(t, "Product Cap is out of stock", clients.UserMessage(err, ProcessFailure))
}
