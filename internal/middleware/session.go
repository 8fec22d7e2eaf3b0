package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/session"
)

const (
	SessionCookie = "sid"
	sessionKey    = "session"
	sessionIDKey  = "sessionID"
	tokenKey      = "authToken"
	cookiesKey    = "cookies"
)

// Session attaches the browser's session state and its auth token to the
// request. The token is read from the auth cookie; an expired token is
// cleared here so every later stage sees a guest.
func Session(store *session.Store, cookies Cookies, logger *logrus.Logger) gin.HandlerFunc {
	log := logger.WithField("middleware", "session")
	return func(c *gin.Context) {
		c.Set(cookiesKey, cookies)
		sid, _ := c.Cookie(SessionCookie)
		st, created := store.GetOrCreate(c.Request.Context(), sid)
		if created {
			cookies.setSession(c, st.ID)
		}

		token, _ := c.Cookie(AuthCookie)
		if token != "" && TokenExpired(token, nowFunc()) {
			log.WithField("session", st.ID).Info("Auth token expired, clearing cookie")
			cookies.ClearAuth(c)
			token = ""
		}
		st.BindToken(c.Request.Context(), token)

		c.Set(sessionKey, st)
		c.Set(sessionIDKey, st.ID)
		c.Set(tokenKey, token)
		c.Request = c.Request.WithContext(clients.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

// CurrentSession returns the state attached by Session.
func CurrentSession(c *gin.Context) *session.State {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	st, _ := v.(*session.State)
	return st
}

func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// MustSession aborts with 500 when the Session middleware is missing.
func MustSession(c *gin.Context) (*session.State, bool) {
	st := CurrentSession(c)
	if st == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Session unavailable"})
		return nil, false
	}
	return st, true
}
