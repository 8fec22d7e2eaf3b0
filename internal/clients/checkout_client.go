package clients

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/domain"
)

type CheckoutClient interface {
	Summary(ctx context.Context) (*domain.CheckoutSummary, error)
	Process(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error)
	VerifyPayment(ctx context.Context, sessionID string) (*domain.PaymentVerification, error)
}

type checkoutHTTPClient struct {
	api *API
	log *logrus.Logger
}

func NewCheckoutHTTPClient(api *API) CheckoutClient {
	return &checkoutHTTPClient{api: api, log: api.log}
}

type successEnvelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

func (c *checkoutHTTPClient) Summary(ctx context.Context) (*domain.CheckoutSummary, error) {
	c.log.Debugf("CheckoutClient: Calling Summary")
	var resp successEnvelope[domain.CheckoutSummary]
	if err := c.api.getJSON(ctx, "/checkout/summary", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, &APIError{StatusCode: http.StatusUnprocessableEntity, Message: resp.Message}
	}
	return resp.Data, nil
}

// Process asks the API to create the order and the hosted payment session.
// A 2xx answer with success=false is still a failure.
func (c *checkoutHTTPClient) Process(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	c.log.Debugf("CheckoutClient: Calling Process")
	var resp successEnvelope[domain.CheckoutSession]
	if err := c.api.sendJSON(ctx, http.MethodPost, "/checkout/process", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		c.log.Warnf("CheckoutClient: Process rejected: %s", resp.Message)
		return nil, &APIError{StatusCode: http.StatusUnprocessableEntity, Message: resp.Message}
	}
	return resp.Data, nil
}

type verifyPaymentData struct {
	Order *struct {
		ID int64 `json:"id"`
	} `json:"order"`
}

func (c *checkoutHTTPClient) VerifyPayment(ctx context.Context, sessionID string) (*domain.PaymentVerification, error) {
	c.log.Debugf("CheckoutClient: Calling VerifyPayment for session %s", sessionID)
	payload := map[string]string{"session_id": sessionID}
	var resp successEnvelope[json.RawMessage]
	if err := c.api.sendJSON(ctx, http.MethodPost, "/checkout/verify-payment", payload, &resp); err != nil {
		return nil, err
	}
	out := &domain.PaymentVerification{Success: resp.Success, Message: resp.Message}
	if resp.Data != nil {
		var data verifyPaymentData
		if err := json.Unmarshal(*resp.Data, &data); err == nil && data.Order != nil {
			id := data.Order.ID
			out.OrderID = &id
		}
	}
	return out, nil
}
