package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
)

var ErrNoSessionID = errors.New("no payment session id provided")

const (
	ProcessFailure = "Failed to process checkout. Please try again."
	VerifyFailure  = "Payment verification failed"
)

// CartReloader is the part of the cart synchronizer checkout needs.
type CartReloader interface {
	Load(ctx context.Context) error
}

// Service hands the user off to the hosted payment page and verifies the
// result when they come back. Card data never reaches the gateway.
type Service struct {
	api clients.CheckoutClient
	log *logrus.Entry
}

func NewService(api clients.CheckoutClient, logger *logrus.Logger) *Service {
	return &Service{api: api, log: logger.WithField("component", "checkout")}
}

func (s *Service) Summary(ctx context.Context) (*domain.CheckoutSummary, error) {
	sum, err := s.api.Summary(ctx)
	if err != nil {
		s.log.Warnf("Summary failed: %v", err)
		return nil, err
	}
	return sum, nil
}

// Process creates the order from the server-side cart and returns where to
// send the browser for payment. Blank notes are not sent. An empty cart is
// reported by the API, not decided from the local mirror.
func (s *Service) Process(ctx context.Context, notes string) (*domain.CheckoutSession, error) {
	req := domain.CheckoutRequest{}
	if n := strings.TrimSpace(notes); n != "" {
		req.Notes = &n
	}
	session, err := s.api.Process(ctx, req)
	if err != nil {
		s.log.Warnf("Process failed: %v", err)
		return nil, err
	}
	s.log.Infof("Order %d created, handing off to payment page", session.OrderID)
	return session, nil
}

// Verify confirms a payment session. On success the cart is reloaded, since
// the API empties it when the order is paid.
func (s *Service) Verify(ctx context.Context, cart CartReloader, sessionID string) (*domain.PaymentVerification, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrNoSessionID
	}
	v, err := s.api.VerifyPayment(ctx, sessionID)
	if err != nil {
		s.log.Warnf("Verify %s failed: %v", sessionID, err)
		return nil, err
	}
	if !v.Success {
		if v.Message == "" {
			v.Message = VerifyFailure
		}
		return v, nil
	}
	if cart != nil {
		if err := cart.Load(ctx); err != nil {
			s.log.Warnf("Cart reload after payment %s failed: %v", sessionID, err)
		}
	}
	return v, nil
}
