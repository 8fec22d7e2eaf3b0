package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/domain"
	"storefront_gateway/internal/middleware"
	"storefront_gateway/internal/session"
)

type CartHandler struct {
	log *logrus.Logger
}

func NewCartHandler(logger *logrus.Logger) *CartHandler {
	return &CartHandler{log: logger}
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// GetCart loads the cart from the API unless the session already mirrors a
// confirmed one. A snapshot restored after a restart is shown while the API
// is unreachable.
func (h *CartHandler) GetCart(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetCart")
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	state := st.Cart.State()
	if state.Cart == nil || state.Restored || c.Query("refresh") == "1" {
		if err := st.Cart.Load(c.Request.Context()); err != nil {
			if state.Cart != nil {
				handlerLogger.Warnf("Serving cached cart, load failed: %v", err)
				h.respond(c, st, http.StatusOK, "")
				return
			}
			respondError(c, handlerLogger, err, "Failed to load cart. Please try again.")
			return
		}
	}
	h.respond(c, st, http.StatusOK, "")
}

func (h *CartHandler) AddItem(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "AddCartItem")
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	var req domain.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	if err := st.Cart.Add(c.Request.Context(), req.ProductID, req.Quantity); err != nil {
		respondError(c, handlerLogger, err, "Failed to add product to cart. Please try again.")
		return
	}
	h.respond(c, st, http.StatusOK, "Product added to cart")
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateCartItem")
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	productID, ok := paramID(c, handlerLogger, "product_id", "product")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	if err := st.Cart.Update(c.Request.Context(), productID, req.Quantity); err != nil {
		respondError(c, handlerLogger, err, "Failed to update cart. Please try again.")
		return
	}
	h.respond(c, st, http.StatusOK, "Cart updated")
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "RemoveCartItem")
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	productID, ok := paramID(c, handlerLogger, "product_id", "product")
	if !ok {
		return
	}
	if err := st.Cart.Remove(c.Request.Context(), productID); err != nil {
		respondError(c, handlerLogger, err, "Failed to remove product from cart. Please try again.")
		return
	}
	h.respond(c, st, http.StatusOK, "Product removed from cart")
}

// respond writes the envelope by hand: encoding/json would compact the
// mirrored bytes, and they must reach the browser exactly as the API sent them.
func (h *CartHandler) respond(c *gin.Context, st *session.State, status int, message string) {
	state := st.Cart.State()
	raw := state.Raw
	if raw == nil {
		raw = json.RawMessage("null")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	if message != "" {
		msg, _ := json.Marshal(message)
		buf.WriteString(`"message":`)
		buf.Write(msg)
		buf.WriteByte(',')
	}
	buf.WriteString(`"data":`)
	buf.Write(raw)
	if state.Restored {
		buf.WriteString(`,"restored":true`)
	}
	buf.WriteByte('}')
	c.Data(status, "application/json; charset=utf-8", buf.Bytes())
}
