package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/domain"
)

// CartPayload is a cart exactly as the API sent it. Raw holds the bytes of
// the `data` member; Cart is nil when the user has no cart yet.
type CartPayload struct {
	Message string
	Raw     json.RawMessage
	Cart    *domain.Cart
}

type CartClient interface {
	GetCart(ctx context.Context) (*CartPayload, error)
	AddItem(ctx context.Context, req domain.CartItemRequest) (*CartPayload, error)
	UpdateItem(ctx context.Context, req domain.CartItemRequest) (*CartPayload, error)
	RemoveItem(ctx context.Context, productID int64) (*CartPayload, error)
}

type cartHTTPClient struct {
	api *API
	log *logrus.Logger
}

func NewCartHTTPClient(api *API) CartClient {
	return &cartHTTPClient{api: api, log: api.log}
}

// GetCart returns the current cart. The API answers `{message}` without data
// when none exists, which yields a payload with a nil Cart.
func (c *cartHTTPClient) GetCart(ctx context.Context) (*CartPayload, error) {
	c.log.Debugf("CartClient: Calling GetCart")
	raw, err := c.api.doRaw(ctx, request{method: http.MethodGet, path: "/carts"})
	if err != nil {
		return nil, err
	}
	return decodeCartPayload(raw)
}

func (c *cartHTTPClient) AddItem(ctx context.Context, req domain.CartItemRequest) (*CartPayload, error) {
	c.log.Debugf("CartClient: Calling AddItem for product %d x%d", req.ProductID, req.Quantity)
	return c.mutate(ctx, http.MethodPost, req)
}

func (c *cartHTTPClient) UpdateItem(ctx context.Context, req domain.CartItemRequest) (*CartPayload, error) {
	c.log.Debugf("CartClient: Calling UpdateItem for product %d x%d", req.ProductID, req.Quantity)
	return c.mutate(ctx, http.MethodPut, req)
}

func (c *cartHTTPClient) RemoveItem(ctx context.Context, productID int64) (*CartPayload, error) {
	c.log.Debugf("CartClient: Calling RemoveItem for product %d", productID)
	q := domain.NewListParams()
	q.Set("product_id", strconv.FormatInt(productID, 10))
	raw, err := c.api.doRaw(ctx, request{method: http.MethodDelete, path: "/carts", query: q})
	if err != nil {
		return nil, err
	}
	return decodeCartPayload(raw)
}

func (c *cartHTTPClient) mutate(ctx context.Context, method string, req domain.CartItemRequest) (*CartPayload, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	raw, err := c.api.doRaw(ctx, request{method: method, path: "/carts", body: body, contentType: "application/json"})
	if err != nil {
		return nil, err
	}
	return decodeCartPayload(raw)
}

type cartEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeCartPayload(raw []byte) (*CartPayload, error) {
	var env cartEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "Unexpected cart response from server", Err: err}
	}
	payload := &CartPayload{Message: env.Message}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return payload, nil
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "Unexpected cart response from server", Err: err}
	}
	payload.Raw = append(json.RawMessage(nil), env.Data...)
	payload.Cart = &cart
	return payload, nil
}
