package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
	"storefront_gateway/internal/middleware"
)

type AuthHandler struct {
	authClient clients.AuthClient
	log        *logrus.Logger
}

func NewAuthHandler(ac clients.AuthClient, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authClient: ac,
		log:        logger,
	}
}

// AuthResponse is what the browser gets after signing in. The token itself
// only travels in the HttpOnly cookie.
type AuthResponse struct {
	Message string       `json:"message"`
	User    domain.User  `json:"user"`
	Cart    *domain.Cart `json:"cart"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Login")
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Please enter a valid email address and password.", err)
		return
	}
	handlerLogger.Infof("Processing login request for email: %s", req.Email)

	resp, err := h.authClient.Login(c.Request.Context(), req)
	if err != nil {
		if clients.IsUnauthorized(err) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: clients.UserMessage(err, "Invalid email or password")})
			return
		}
		respondError(c, handlerLogger, err, "Login failed. Please try again.")
		return
	}
	h.signIn(c, handlerLogger, resp, http.StatusOK, "Login successful")
}

func (h *AuthHandler) Register(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Register")
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.Password != "" && req.Password != req.PasswordConfirmation {
			badRequest(c, handlerLogger, "Passwords do not match.", err)
			return
		}
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	handlerLogger.Infof("Processing registration for email: %s", req.Email)

	resp, err := h.authClient.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, handlerLogger, err, "Registration failed. Please try again.")
		return
	}
	h.signIn(c, handlerLogger, resp, http.StatusCreated, "Registration successful")
}

// signIn stores the token, binds the session to it and loads the user's cart.
func (h *AuthHandler) signIn(c *gin.Context, logger logrus.FieldLogger, resp *domain.AuthResponse, status int, message string) {
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	middleware.CookiesFrom(c).SetAuth(c, resp.Token)

	ctx := clients.WithToken(c.Request.Context(), resp.Token)
	st.BindToken(ctx, resp.Token)
	st.SetUser(&resp.User)
	if err := st.Cart.Load(ctx); err != nil {
		logger.Warnf("Cart load after sign-in failed: %v", err)
	}

	logger.Infof("User %d signed in on session %s", resp.User.ID, st.ID)
	c.JSON(status, AuthResponse{Message: message, User: resp.User, Cart: st.Cart.State().Cart})
}

// Logout always signs the session out locally, even when the API call fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Logout")
	if middleware.Token(c) != "" {
		if err := h.authClient.Logout(c.Request.Context()); err != nil {
			handlerLogger.Warnf("Logout error: %v", err)
		}
	}
	middleware.CookiesFrom(c).ClearAuth(c)
	if st := middleware.CurrentSession(c); st != nil {
		ctx := context.WithoutCancel(c.Request.Context())
		if !st.BindToken(ctx, "") {
			st.Reset(ctx)
		}
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st.User())
}

// Session reports the auth and cart state of the browser session without
// requiring a token.
func (h *AuthHandler) Session(c *gin.Context) {
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": middleware.Token(c) != "",
		"user":          st.User(),
		"items_count":   st.Cart.ItemsCount(),
	})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "VerifyEmail")
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Verification code is required", err)
		return
	}
	resp, err := h.authClient.VerifyEmail(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, handlerLogger, err, "Invalid or expired verification code")
		return
	}
	st := middleware.CurrentSession(c)
	if st != nil && resp.User != nil {
		st.SetUser(resp.User)
	} else if st != nil {
		if u := st.User(); u != nil {
			u.HasVerifiedEmail = true
			st.SetUser(u)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "SendVerificationCode")
	msg, err := h.authClient.SendVerificationCode(c.Request.Context())
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to send verification email. Please try again.")
		return
	}
	if msg == "" {
		msg = "Verification email sent"
	}
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ForgotPassword")
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Please enter a valid email address.", err)
		return
	}
	msg, err := h.authClient.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to send reset code. Please try again.")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ResetPassword")
	var req domain.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.Password != "" && req.Password != req.PasswordConfirmation {
			badRequest(c, handlerLogger, "Passwords do not match.", err)
			return
		}
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	msg, err := h.authClient.ResetPassword(c.Request.Context(), req)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to reset password. Please try again.")
		return
	}
	if msg == "" {
		msg = "Password changed successfully"
	}
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateProfile")
	var req domain.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	user, err := h.authClient.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to update profile. Please try again.")
		return
	}
	if st := middleware.CurrentSession(c); st != nil {
		st.SetUser(user)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}
