package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/domain"
)

type ctxKey int

const (
	tokenKey ctxKey = iota
	requestIDKey
)

// WithToken stores the bearer token the outgoing-request hook attaches.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestHook mutates every outgoing request before it is sent.
type RequestHook func(req *http.Request)

// BearerHook attaches the token found in the request context, if any.
func BearerHook(req *http.Request) {
	if token := TokenFromContext(req.Context()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// NoCacheHook forces the API to bypass intermediate caches.
func NoCacheHook(req *http.Request) {
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "Sat, 01 Jan 2000 00:00:00 GMT")
}

func RequestIDHook(req *http.Request) {
	if id := RequestIDFromContext(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
}

// API is the shared transport of every area client: base URL, timeout,
// outgoing hooks and the error decoding of the REST API.
type API struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	hooks   []RequestHook
	log     *logrus.Logger
}

func NewAPI(baseURL string, timeout time.Duration, logger *logrus.Logger, hooks ...RequestHook) *API {
	if len(hooks) == 0 {
		hooks = []RequestHook{BearerHook, NoCacheHook, RequestIDHook}
	}
	logger.Infof("API: Using REST API at %s (timeout %s)", baseURL, timeout)
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: timeout,
		hooks:   hooks,
		log:     logger,
	}
}

func (a *API) BaseURL() string {
	return a.baseURL
}

type request struct {
	method      string
	path        string
	query       *domain.ListParams
	body        []byte
	contentType string
}

func (a *API) getJSON(ctx context.Context, path string, query *domain.ListParams, out any) error {
	return a.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (a *API) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s payload: %w", method, path, err)
		}
	}
	return a.do(ctx, request{method: method, path: path, body: body, contentType: "application/json"}, out)
}

type ackResponse struct {
	Message string `json:"message"`
}

// deleteWithMessage issues a DELETE and returns the API's acknowledgement.
func (a *API) deleteWithMessage(ctx context.Context, path string, query *domain.ListParams) (string, error) {
	var ack ackResponse
	if err := a.do(ctx, request{method: http.MethodDelete, path: path, query: query}, &ack); err != nil {
		return "", err
	}
	return ack.Message, nil
}

func (a *API) do(ctx context.Context, r request, out any) error {
	raw, err := a.doRaw(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		a.log.Errorf("API: Failed to decode %s %s response: %v", r.method, r.path, err)
		return &APIError{StatusCode: http.StatusBadGateway, Message: "Unexpected response from server", Err: err}
	}
	return nil
}

// doRaw issues the request and returns the raw body of a 2xx response.
// Any other outcome is returned as *APIError.
func (a *API) doRaw(ctx context.Context, r request) ([]byte, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	url := a.baseURL + r.path
	if r.query != nil && r.query.Len() > 0 {
		url += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, url, body)
	if err != nil {
		a.log.Errorf("API: Failed to create %s %s request: %v", r.method, r.path, err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	for _, hook := range a.hooks {
		hook(req)
	}

	a.log.Debugf("API: %s %s", r.method, url)
	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Errorf("API: %s %s failed: %v", r.method, r.path, err)
		return nil, &APIError{Message: "Unable to reach the server", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		a.log.Errorf("API: Failed to read %s %s response: %v", r.method, r.path, err)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "Unable to read server response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp.StatusCode, raw)
		if resp.StatusCode >= 500 {
			a.log.Errorf("API: %s %s returned status %d: %s", r.method, r.path, resp.StatusCode, apiErr.Message)
		} else {
			a.log.Warnf("API: %s %s returned status %d: %s", r.method, r.path, resp.StatusCode, apiErr.Message)
		}
		return nil, apiErr
	}
	return raw, nil
}
