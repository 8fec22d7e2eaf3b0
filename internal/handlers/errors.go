package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/cart"
	"storefront_gateway/internal/checkout"
	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/listing"
	"storefront_gateway/internal/middleware"
)

type ErrorResponse struct {
	Error    string              `json:"error"`
	Fields   map[string][]string `json:"fields,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
}

// statusFor maps an error to the status the browser gets and the message it
// may show. Upstream 5xx and transport failures become 502 with fallback.
func statusFor(err error, fallback string) (int, ErrorResponse) {
	if apiErr, ok := clients.AsAPIError(err); ok {
		msg := clients.UserMessage(err, fallback)
		switch apiErr.Kind() {
		case clients.KindValidation:
			return http.StatusUnprocessableEntity, ErrorResponse{Error: msg, Fields: apiErr.Fields}
		case clients.KindUnauthorized:
			return http.StatusUnauthorized, ErrorResponse{Error: msg}
		case clients.KindForbidden:
			return http.StatusForbidden, ErrorResponse{Error: msg}
		case clients.KindNotFound:
			return http.StatusNotFound, ErrorResponse{Error: msg}
		case clients.KindConflict:
			return http.StatusConflict, ErrorResponse{Error: msg}
		}
		if errors.Is(apiErr.Err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, ErrorResponse{Error: fallback}
		}
		if apiErr.StatusCode == 0 || apiErr.StatusCode >= 500 {
			return http.StatusBadGateway, ErrorResponse{Error: fallback}
		}
		return apiErr.StatusCode, ErrorResponse{Error: msg}
	}

	var filterErr *listing.FilterError
	switch {
	case errors.As(err, &filterErr):
		return http.StatusBadRequest, ErrorResponse{Error: filterErr.Error(), Fields: map[string][]string{filterErr.Field: {filterErr.Reason}}}
	case errors.Is(err, listing.ErrConfirmationNotFound), errors.Is(err, listing.ErrItemNotFound):
		return http.StatusNotFound, ErrorResponse{Error: capitalize(err.Error())}
	case errors.Is(err, listing.ErrReadOnly):
		return http.StatusMethodNotAllowed, ErrorResponse{Error: capitalize(err.Error())}
	case errors.Is(err, cart.ErrInvalidItem), errors.Is(err, checkout.ErrNoSessionID):
		return http.StatusBadRequest, ErrorResponse{Error: capitalize(err.Error())}
	case errors.Is(err, clients.ErrNoToken):
		return http.StatusBadGateway, ErrorResponse{Error: fallback}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: fallback}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: fallback}
}

// respondError writes err to the browser. A 401 from the API signs the
// session out and sends the login redirect.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error, fallback string) {
	status, body := statusFor(err, fallback)
	if status == http.StatusUnauthorized {
		logger.Infof("Handler Error: API rejected the token: %v", err)
		middleware.Unauthorized(c, "Your session has expired. Please log in again.")
		return
	}
	if status >= 500 {
		logger.Errorf("Handler Error: %v", err)
	} else {
		logger.Warnf("Handler Error: Mapped '%v' to HTTP Status %d", err, status)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, logger logrus.FieldLogger, message string, err error) {
	if err != nil {
		logger.Warnf("Failed to bind request: %v", err)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// paramID reads a positive integer path parameter.
func paramID(c *gin.Context, logger logrus.FieldLogger, name, what string) (int64, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		logger.Warnf("Invalid %s ID parameter: %s", what, idStr)
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + what + " ID format"})
		return 0, false
	}
	return id, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
