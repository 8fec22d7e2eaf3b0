package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
)

type OrderHandler struct {
	orderClient clients.OrderClient
	log         *logrus.Logger
}

func NewOrderHandler(oc clients.OrderClient, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderClient: oc,
		log:         logger,
	}
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListMyOrders")
	orders, err := h.orderClient.ListMyOrders(c.Request.Context())
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load orders. Please try again.")
		return
	}
	c.JSON(http.StatusOK, domain.DataResponse[[]domain.Order]{Data: orders})
}

func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetMyOrder")
	id, ok := paramID(c, handlerLogger, "id", "order")
	if !ok {
		return
	}
	order, err := h.orderClient.GetMyOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load order. Please try again.")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListMyPayments(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListMyPayments")
	payments, err := h.orderClient.ListMyPayments(c.Request.Context())
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load payments. Please try again.")
		return
	}
	c.JSON(http.StatusOK, domain.DataResponse[[]domain.Payment]{Data: payments})
}

func (h *OrderHandler) GetMyPayment(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetMyPayment")
	id, ok := paramID(c, handlerLogger, "id", "payment")
	if !ok {
		return
	}
	payment, err := h.orderClient.GetMyPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load payment. Please try again.")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// GetOrder is the admin order detail.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetOrder")
	id, ok := paramID(c, handlerLogger, "id", "order")
	if !ok {
		return
	}
	order, err := h.orderClient.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load order. Please try again.")
		return
	}
	c.JSON(http.StatusOK, order)
}
