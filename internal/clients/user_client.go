package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/domain"
)

// UserClient is the admin user management and dashboard API.
type UserClient interface {
	ListUsers(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.User], error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, in domain.UserInput) (*domain.MessageResponse[domain.User], error)
	UpdateUser(ctx context.Context, id int64, in domain.UserInput) (*domain.MessageResponse[domain.User], error)
	DeleteUser(ctx context.Context, id int64) (string, error)
	DashboardStatistics(ctx context.Context) (*domain.DashboardStatistics, error)
}

type userHTTPClient struct {
	api *API
	log *logrus.Logger
}

func NewUserHTTPClient(api *API) UserClient {
	return &userHTTPClient{api: api, log: api.log}
}

func (c *userHTTPClient) ListUsers(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.User], error) {
	c.log.Debugf("UserClient: Calling ListUsers with %q", params.Encode())
	var resp domain.PaginatedResponse[domain.User]
	if err := c.api.getJSON(ctx, "/admin/users", params, &resp); err != nil {
		return nil, err
	}
	resp.Normalize()
	return &resp, nil
}

func (c *userHTTPClient) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	c.log.Debugf("UserClient: Calling GetUser for ID %d", id)
	var resp domain.DataResponse[domain.User]
	if err := c.api.getJSON(ctx, fmt.Sprintf("/admin/users/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *userHTTPClient) CreateUser(ctx context.Context, in domain.UserInput) (*domain.MessageResponse[domain.User], error) {
	c.log.Debugf("UserClient: Calling CreateUser for %s", in.Email)
	var resp domain.MessageResponse[domain.User]
	if err := c.api.sendJSON(ctx, http.MethodPost, "/admin/users", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *userHTTPClient) UpdateUser(ctx context.Context, id int64, in domain.UserInput) (*domain.MessageResponse[domain.User], error) {
	c.log.Debugf("UserClient: Calling UpdateUser for ID %d", id)
	var resp domain.MessageResponse[domain.User]
	if err := c.api.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/admin/users/%d", id), in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *userHTTPClient) DeleteUser(ctx context.Context, id int64) (string, error) {
	c.log.Debugf("UserClient: Calling DeleteUser for ID %d", id)
	return c.api.deleteWithMessage(ctx, fmt.Sprintf("/admin/users/%d", id), nil)
}

func (c *userHTTPClient) DashboardStatistics(ctx context.Context) (*domain.DashboardStatistics, error) {
	c.log.Debugf("UserClient: Calling DashboardStatistics")
	var resp domain.DataResponse[domain.DashboardStatistics]
	if err := c.api.getJSON(ctx, "/admin/dashboard/statistics", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
