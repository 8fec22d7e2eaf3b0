package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
)

const (
	AuthCookie       = "auth_token"
	AuthCookieMaxAge = 7 * 24 * 60 * 60
	// ReturnURLHeader carries the browser route to come back to after login.
	ReturnURLHeader = "X-Return-URL"
)

var nowFunc = time.Now

// Cookies writes the gateway's cookies.
type Cookies struct {
	Secure bool
}

// CookiesFrom returns the cookie settings installed by Session.
func CookiesFrom(c *gin.Context) Cookies {
	if v, ok := c.Get(cookiesKey); ok {
		if k, ok := v.(Cookies); ok {
			return k
		}
	}
	return Cookies{}
}

func (k Cookies) SetAuth(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookie, token, AuthCookieMaxAge, "/", "", k.Secure, true)
}

func (k Cookies) ClearAuth(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookie, "", -1, "/", "", k.Secure, true)
}

func (k Cookies) setSession(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, 0, "/", "", k.Secure, true)
}

// TokenExpired reports whether a JWT token's exp claim is in the past. The
// signature is not checked; the API does that. Tokens that are not JWTs
// never expire here.
func TokenExpired(raw string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// UnauthorizedResponse tells the browser to go to the login page.
type UnauthorizedResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// LoginRedirect builds /login?returnUrl=... for the browser's current route.
func LoginRedirect(c *gin.Context) string {
	ret := c.GetHeader(ReturnURLHeader)
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		ret = "/"
	}
	return "/login?returnUrl=" + url.QueryEscape(ret)
}

// Unauthorized clears the token, forgets the session's user and answers 401
// with the login redirect.
func Unauthorized(c *gin.Context, message string) {
	CookiesFrom(c).ClearAuth(c)
	if st := CurrentSession(c); st != nil {
		st.Reset(c.Request.Context())
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, UnauthorizedResponse{Error: message, Redirect: LoginRedirect(c)})
}

// RequireAuth admits requests that carry an unexpired auth token.
func RequireAuth(logger *logrus.Logger) gin.HandlerFunc {
	log := logger.WithField("middleware", "require_auth")
	return func(c *gin.Context) {
		if Token(c) == "" {
			log.Debugf("No auth token for %s", c.Request.URL.Path)
			Unauthorized(c, "Authentication required")
			return
		}
		c.Next()
	}
}

// LoadUser makes sure the session knows the signed-in user, bootstrapping
// user and cart from the API when it does not. Must run after RequireAuth.
func LoadUser(logger *logrus.Logger) gin.HandlerFunc {
	log := logger.WithField("middleware", "load_user")
	return func(c *gin.Context) {
		st, ok := MustSession(c)
		if !ok {
			return
		}
		if st.User() != nil {
			c.Next()
			return
		}
		if err := st.Bootstrap(c.Request.Context()); err != nil {
			if clients.IsUnauthorized(err) {
				Unauthorized(c, "Session expired, please log in again")
				return
			}
			log.Errorf("Failed to load user for session %s: %v", st.ID, err)
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": clients.UserMessage(err, "Unable to load your account. Please try again.")})
			return
		}
		c.Next()
	}
}

// RequireAdmin admits administrators only. Must run after LoadUser.
func RequireAdmin(logger *logrus.Logger) gin.HandlerFunc {
	log := logger.WithField("middleware", "require_admin")
	return func(c *gin.Context) {
		st, ok := MustSession(c)
		if !ok {
			return
		}
		if u := st.User(); !u.IsAdmin() {
			log.Warnf("Non-admin session %s tried %s", st.ID, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administrator access required", "redirect": "/"})
			return
		}
		c.Next()
	}
}

// RequireVerified admits users whose email is verified. Must run after LoadUser.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := MustSession(c)
		if !ok {
			return
		}
		if u := st.User(); u == nil || !u.HasVerifiedEmail {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Please verify your email address first", "redirect": "/auth/verify-email"})
			return
		}
		c.Next()
	}
}

// GuestOnly turns away requests that already carry an auth token.
func GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Token(c) != "" {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Already signed in", "redirect": "/"})
			return
		}
		c.Next()
	}
}
