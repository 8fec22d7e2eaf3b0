package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/listing"
	"storefront_gateway/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "4", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newStore(t *testing.T, h http.HandlerFunc) *session.Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := quietLogger()
	api := clients.NewAPI(srv.URL, time.Second, logger)
	return session.NewStore(session.Deps{
		Auth:    clients.NewAuthHTTPClient(api),
		Cart:    clients.NewCartHTTPClient(api),
		Screens: listing.APIs{Catalog: clients.NewCatalogHTTPClient(api)},
		Logger:  logger,
	}, time.Hour)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, TokenExpired(signed(t, now.Add(-time.Minute)), now))
	assert.False(t, TokenExpired(signed(t, now.Add(time.Hour)), now))
	assert.False(t, TokenExpired("opaque-api-token", now))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "4"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.False(t, TokenExpired(noExp, now))
}

func TestLoginRedirect(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "/login?returnUrl=%2F"},
		{"/checkout", "/login?returnUrl=%2Fcheckout"},
		{"/orders?page=2", "/login?returnUrl=%2Forders%3Fpage%3D2"},
		{"https://evil.test", "/login?returnUrl=%2F"},
		{"//evil.test", "/login?returnUrl=%2F"},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		if tt.header != "" {
			c.Request.Header.Set(ReturnURLHeader, tt.header)
		}
		assert.Equal(t, tt.want, LoginRedirect(c), tt.header)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = clients.RequestIDFromContext(c.Request.Context())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, w.Header().Get(RequestIDHeader), seen)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}

func TestSessionAssignsCookieAndToken(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r := gin.New()
	r.Use(Session(store, Cookies{}, quietLogger()))
	var token, ctxToken string
	r.GET("/", func(c *gin.Context) {
		token = Token(c)
		ctxToken = clients.TokenFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookie, Value: "tok-1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "tok-1", ctxToken)
	var sid *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookie {
			sid = ck
		}
	}
	require.NotNil(t, sid)
	assert.True(t, sid.HttpOnly)
	assert.Equal(t, 1, store.Len())

	// the same sid is reused without a new cookie
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid.Value})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, 1, store.Len())
}

func TestExpiredTokenIsCleared(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r := gin.New()
	r.Use(Session(store, Cookies{}, quietLogger()))
	r.GET("/private", RequireAuth(quietLogger()), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(ReturnURLHeader, "/cart")
	req.AddCookie(&http.Cookie{Name: AuthCookie, Value: signed(t, time.Now().Add(-time.Hour))})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/login?returnUrl=%2Fcart"`)
	cleared := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == AuthCookie {
			cleared = ck.MaxAge < 0
		}
	}
	assert.True(t, cleared)
}

func TestAuthCookieAttributes(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	Cookies{Secure: true}.SetAuth(c, "tok")

	header := w.Header().Get("Set-Cookie")
	assert.Contains(t, header, "auth_token=tok")
	assert.Contains(t, header, "Max-Age=604800")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "SameSite=Strict")
}

func TestGuardsUseSessionUser(t *testing.T) {
	h := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/me" && strings.HasSuffix(r.Header.Get("Authorization"), "admin"):
			w.Write([]byte(`{"id":1,"name":"Ann","email":"ann@x.io","role":"admin","has_verified_email":true}`))
		case r.URL.Path == "/auth/me" && strings.HasSuffix(r.Header.Get("Authorization"), "fresh"):
			w.Write([]byte(`{"id":2,"name":"Bob","email":"bob@x.io","role":"user","has_verified_email":false}`))
		case r.URL.Path == "/auth/me":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Unauthenticated."}`))
		case r.URL.Path == "/carts":
			w.Write([]byte(`{"data":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
	store := newStore(t, h)
	logger := quietLogger()
	r := gin.New()
	r.Use(Session(store, Cookies{}, logger))
	user := r.Group("", RequireAuth(logger), LoadUser(logger))
	user.GET("/admin", RequireAdmin(logger), func(c *gin.Context) { c.Status(http.StatusOK) })
	user.GET("/checkout", RequireVerified(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/login", GuestOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: AuthCookie, Value: token})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/admin", "tok-admin").Code)
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/checkout", "tok-admin").Code)

	w := call(http.MethodGet, "/admin", "tok-fresh")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(http.MethodGet, "/checkout", "tok-fresh")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "/auth/verify-email")

	w = call(http.MethodGet, "/admin", "tok-revoked")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "/login?returnUrl=")

	assert.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/admin", "").Code)
	assert.Equal(t, http.StatusConflict, call(http.MethodPost, "/login", "tok-admin").Code)
	assert.Equal(t, http.StatusOK, call(http.MethodPost, "/login", "").Code)
}

func TestUnauthorizedResetsSession(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	st, _ := store.GetOrCreate(context.Background(), "")
	st.BindToken(context.Background(), "tok")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(sessionKey, st)
	c.Set(cookiesKey, Cookies{})
	Unauthorized(c, "expired")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
	assert.Nil(t, st.User())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "auth_token=;")
}
