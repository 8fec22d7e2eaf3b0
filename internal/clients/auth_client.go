package clients

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/domain"
)

// ErrNoToken is returned when the API accepts credentials but sends no token.
var ErrNoToken = errors.New("authentication response carried no token")

type AuthClient interface {
	Me(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context) error
	VerifyEmail(ctx context.Context, code string) (*VerifyEmailResponse, error)
	SendVerificationCode(ctx context.Context) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) (string, error)
	UpdateProfile(ctx context.Context, req domain.ProfileRequest) (*domain.User, error)
}

type VerifyEmailResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type authHTTPClient struct {
	api *API
	log *logrus.Logger
}

func NewAuthHTTPClient(api *API) AuthClient {
	return &authHTTPClient{api: api, log: api.log}
}

func (c *authHTTPClient) Me(ctx context.Context) (*domain.User, error) {
	c.log.Debugf("AuthClient: Calling Me")
	var user domain.User
	if err := c.api.getJSON(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *authHTTPClient) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	c.log.Debugf("AuthClient: Calling Login for %s", req.Email)
	return c.authenticate(ctx, "/auth/login", req)
}

func (c *authHTTPClient) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	c.log.Debugf("AuthClient: Calling Register for %s", req.Email)
	return c.authenticate(ctx, "/auth/register", req)
}

func (c *authHTTPClient) authenticate(ctx context.Context, path string, payload any) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.api.sendJSON(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		c.log.Errorf("AuthClient: %s returned no token", path)
		return nil, ErrNoToken
	}
	return &resp, nil
}

func (c *authHTTPClient) Logout(ctx context.Context) error {
	c.log.Debugf("AuthClient: Calling Logout")
	return c.api.sendJSON(ctx, http.MethodPost, "/auth/logout", struct{}{}, nil)
}

func (c *authHTTPClient) VerifyEmail(ctx context.Context, code string) (*VerifyEmailResponse, error) {
	c.log.Debugf("AuthClient: Calling VerifyEmail")
	var resp VerifyEmailResponse
	if err := c.api.sendJSON(ctx, http.MethodPost, "/auth/verify-email", map[string]string{"code": code}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *authHTTPClient) SendVerificationCode(ctx context.Context) (string, error) {
	c.log.Debugf("AuthClient: Calling SendVerificationCode")
	var ack ackResponse
	if err := c.api.sendJSON(ctx, http.MethodPost, "/auth/send-verification-code", struct{}{}, &ack); err != nil {
		return "", err
	}
	return ack.Message, nil
}

func (c *authHTTPClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	c.log.Debugf("AuthClient: Calling ForgotPassword for %s", email)
	var ack ackResponse
	if err := c.api.sendJSON(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, &ack); err != nil {
		return "", err
	}
	return ack.Message, nil
}

func (c *authHTTPClient) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) (string, error) {
	c.log.Debugf("AuthClient: Calling ResetPassword for %s", req.Email)
	var ack ackResponse
	if err := c.api.sendJSON(ctx, http.MethodPost, "/auth/reset-password", req, &ack); err != nil {
		return "", err
	}
	return ack.Message, nil
}

func (c *authHTTPClient) UpdateProfile(ctx context.Context, req domain.ProfileRequest) (*domain.User, error) {
	c.log.Debugf("AuthClient: Calling UpdateProfile")
	var user domain.User
	if err := c.api.sendJSON(ctx, http.MethodPut, "/auth/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
