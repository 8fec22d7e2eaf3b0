package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
)

type UserHandler struct {
	userClient clients.UserClient
	log        *logrus.Logger
}

func NewUserHandler(uc clients.UserClient, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		userClient: uc,
		log:        logger,
	}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetUser")
	id, ok := paramID(c, handlerLogger, "id", "user")
	if !ok {
		return
	}
	user, err := h.userClient.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load user data. Please try again.")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateUser")
	var req domain.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	if req.Password == nil || *req.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "Password is required",
			Fields: map[string][]string{"password": {"The password field is required."}},
		})
		return
	}
	handlerLogger.Infof("Creating user %s with role %s", req.Email, req.Role)
	resp, err := h.userClient.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to create user. Please try again.")
		return
	}
	c.JSON(http.StatusCreated, domain.MessageResponse[domain.User]{Message: "User has been created successfully.", Data: resp.Data})
}

// UpdateUser leaves the password unchanged when none is sent.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateUser")
	id, ok := paramID(c, handlerLogger, "id", "user")
	if !ok {
		return
	}
	var req domain.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	if req.Password != nil && *req.Password == "" {
		req.Password = nil
	}
	resp, err := h.userClient.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to update user. Please try again.")
		return
	}
	c.JSON(http.StatusOK, domain.MessageResponse[domain.User]{Message: "User has been updated successfully.", Data: resp.Data})
}

func (h *UserHandler) DashboardStatistics(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "DashboardStatistics")
	stats, err := h.userClient.DashboardStatistics(c.Request.Context())
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load dashboard statistics. Please try again.")
		return
	}
	c.JSON(http.StatusOK, domain.DataResponse[*domain.DashboardStatistics]{Data: stats})
}
