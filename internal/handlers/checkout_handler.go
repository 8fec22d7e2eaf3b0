package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/checkout"
	"storefront_gateway/internal/middleware"
)

type CheckoutHandler struct {
	service *checkout.Service
	log     *logrus.Logger
}

func NewCheckoutHandler(s *checkout.Service, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: s,
		log:     logger,
	}
}

type ProcessCheckoutRequest struct {
	Notes string `json:"notes"`
}

type VerifyPaymentRequest struct {
	SessionID string `json:"session_id" form:"session_id"`
}

func (h *CheckoutHandler) Summary(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CheckoutSummary")
	sum, err := h.service.Summary(c.Request.Context())
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load checkout summary. Please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sum, "purchasable": sum.Purchasable()})
}

// Process creates the order and returns the hosted payment page URL the
// browser should go to.
func (h *CheckoutHandler) Process(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ProcessCheckout")
	var req ProcessCheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
			return
		}
	}
	session, err := h.service.Process(c.Request.Context(), req.Notes)
	if err != nil {
		respondError(c, handlerLogger, err, checkout.ProcessFailure)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Verify is called when the browser returns from the payment page. The
// session id may come as a query parameter or in the JSON body.
func (h *CheckoutHandler) Verify(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "VerifyPayment")
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	var req VerifyPaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		handlerLogger.Debugf("Verify body not bound: %v", err)
	}
	if req.SessionID == "" {
		req.SessionID = c.Query("session_id")
	}

	v, err := h.service.Verify(c.Request.Context(), st.Cart, req.SessionID)
	if err != nil {
		respondError(c, handlerLogger, err, "An error occurred while verifying payment")
		return
	}
	if !v.Success {
		c.JSON(http.StatusPaymentRequired, v)
		return
	}
	if v.Message == "" {
		v.Message = "Payment verified successfully"
	}
	c.JSON(http.StatusOK, v)
}
