package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/domain"
)

// OrderClient covers orders and payments: the signed-in user's own history
// and the admin back-office lists.
type OrderClient interface {
	ListMyOrders(ctx context.Context) ([]domain.Order, error)
	GetMyOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListMyPayments(ctx context.Context) ([]domain.Payment, error)
	GetMyPayment(ctx context.Context, id int64) (*domain.Payment, error)

	ListOrders(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.Order], error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.MessageResponse[domain.Order], error)
	DeleteOrder(ctx context.Context, id int64) (string, error)

	ListPayments(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.Payment], error)
}

type orderHTTPClient struct {
	api *API
	log *logrus.Logger
}

func NewOrderHTTPClient(api *API) OrderClient {
	return &orderHTTPClient{api: api, log: api.log}
}

func (c *orderHTTPClient) ListMyOrders(ctx context.Context) ([]domain.Order, error) {
	c.log.Debugf("OrderClient: Calling ListMyOrders")
	var resp domain.DataResponse[[]domain.Order]
	if err := c.api.getJSON(ctx, "/orders", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []domain.Order{}, nil
	}
	return resp.Data, nil
}

func (c *orderHTTPClient) GetMyOrder(ctx context.Context, id int64) (*domain.Order, error) {
	c.log.Debugf("OrderClient: Calling GetMyOrder for ID %d", id)
	var resp domain.DataResponse[domain.Order]
	if err := c.api.getJSON(ctx, fmt.Sprintf("/orders/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *orderHTTPClient) ListMyPayments(ctx context.Context) ([]domain.Payment, error) {
	c.log.Debugf("OrderClient: Calling ListMyPayments")
	var resp domain.DataResponse[[]domain.Payment]
	if err := c.api.getJSON(ctx, "/payments", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []domain.Payment{}, nil
	}
	return resp.Data, nil
}

func (c *orderHTTPClient) GetMyPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	c.log.Debugf("OrderClient: Calling GetMyPayment for ID %d", id)
	var resp domain.DataResponse[domain.Payment]
	if err := c.api.getJSON(ctx, fmt.Sprintf("/payments/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *orderHTTPClient) ListOrders(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.Order], error) {
	c.log.Debugf("OrderClient: Calling ListOrders with %q", params.Encode())
	var resp domain.PaginatedResponse[domain.Order]
	if err := c.api.getJSON(ctx, "/admin/orders", params, &resp); err != nil {
		return nil, err
	}
	resp.Normalize()
	return &resp, nil
}

func (c *orderHTTPClient) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	c.log.Debugf("OrderClient: Calling GetOrder for ID %d", id)
	var resp domain.DataResponse[domain.Order]
	if err := c.api.getJSON(ctx, fmt.Sprintf("/admin/orders/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *orderHTTPClient) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.MessageResponse[domain.Order], error) {
	c.log.Debugf("OrderClient: Calling UpdateOrderStatus for ID %d to %s", id, status)
	var resp domain.MessageResponse[domain.Order]
	payload := domain.UpdateOrderRequest{Status: status}
	if err := c.api.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/admin/orders/%d", id), payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *orderHTTPClient) DeleteOrder(ctx context.Context, id int64) (string, error) {
	c.log.Debugf("OrderClient: Calling DeleteOrder for ID %d", id)
	return c.api.deleteWithMessage(ctx, fmt.Sprintf("/admin/orders/%d", id), nil)
}

func (c *orderHTTPClient) ListPayments(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.Payment], error) {
	c.log.Debugf("OrderClient: Calling ListPayments with %q", params.Encode())
	var resp domain.PaginatedResponse[domain.Payment]
	if err := c.api.getJSON(ctx, "/admin/payments", params, &resp); err != nil {
		return nil, err
	}
	resp.Normalize()
	return &resp, nil
}
