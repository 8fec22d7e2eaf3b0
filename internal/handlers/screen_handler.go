package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/domain"
	"storefront_gateway/internal/listing"
	"storefront_gateway/internal/middleware"
)

// ScreenHandler exposes the session's list screens. Every route works on the
// controller kept in the browser session, so filters and page survive
// between requests.
type ScreenHandler struct {
	log *logrus.Logger
}

func NewScreenHandler(logger *logrus.Logger) *ScreenHandler {
	return &ScreenHandler{log: logger}
}

type FilterRequest struct {
	Value string `json:"value"`
}

type StatusChangeRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

// Register mounts the screen routes on rg. With a fixed name the group serves
// that screen only; otherwise the :screen path parameter picks one of allowed.
func (h *ScreenHandler) Register(rg *gin.RouterGroup, fixed string, allowed ...string) {
	resolve := func(c *gin.Context) (listing.Screen, bool) {
		name := fixed
		if name == "" {
			name = c.Param("screen")
			if !slices.Contains(allowed, name) {
				c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "Unknown screen: " + name})
				return nil, false
			}
		}
		st, ok := middleware.MustSession(c)
		if !ok {
			return nil, false
		}
		sc, ok := st.Screen(name)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "Unknown screen: " + name})
			return nil, false
		}
		return sc, true
	}
	with := func(fn func(*gin.Context, listing.Screen)) gin.HandlerFunc {
		return func(c *gin.Context) {
			if sc, ok := resolve(c); ok {
				fn(c, sc)
			}
		}
	}

	rg.GET("", with(h.View))
	rg.GET("/pages/:page", with(h.Page))
	rg.PUT("/filters/:field", with(h.SetFilter))
	rg.DELETE("/filters", with(h.ClearFilters))
	rg.POST("/items/:id/delete", with(h.RequestDelete))
	rg.POST("/items/:id/status", with(h.RequestStatusChange))
	rg.DELETE("/notification", with(h.DismissNotification))
}

// View returns the screen, loading page 1 on first visit.
func (h *ScreenHandler) View(c *gin.Context, sc listing.Screen) {
	handlerLogger := h.log.WithFields(logrus.Fields{"handler": "ScreenView", "screen": sc.Name()})
	if !sc.Loaded() {
		if err := sc.Load(c.Request.Context(), 1); err != nil {
			h.respondView(c, handlerLogger, sc, err)
			return
		}
	}
	c.JSON(http.StatusOK, sc.Snapshot())
}

func (h *ScreenHandler) Page(c *gin.Context, sc listing.Screen) {
	handlerLogger := h.log.WithFields(logrus.Fields{"handler": "ScreenPage", "screen": sc.Name()})
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		handlerLogger.Warnf("Invalid page parameter: %s", c.Param("page"))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid page number"})
		return
	}
	h.respondView(c, handlerLogger, sc, sc.Load(c.Request.Context(), page))
}

// SetFilter waits for the reload the change triggers. A search change that a
// newer one supersedes answers 202 with the current view.
func (h *ScreenHandler) SetFilter(c *gin.Context, sc listing.Screen) {
	handlerLogger := h.log.WithFields(logrus.Fields{"handler": "ScreenSetFilter", "screen": sc.Name()})
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}

	var err error
	select {
	case err = <-sc.SetFilter(c.Request.Context(), c.Param("field"), req.Value):
	case <-c.Request.Context().Done():
		handlerLogger.Debug("Client went away before the filtered load finished")
		return
	}
	if errors.Is(err, listing.ErrCanceled) {
		c.JSON(http.StatusAccepted, sc.Snapshot())
		return
	}
	h.respondView(c, handlerLogger, sc, err)
}

func (h *ScreenHandler) ClearFilters(c *gin.Context, sc listing.Screen) {
	handlerLogger := h.log.WithFields(logrus.Fields{"handler": "ScreenClearFilters", "screen": sc.Name()})
	h.respondView(c, handlerLogger, sc, sc.ClearFilters(c.Request.Context()))
}

// RequestDelete only registers the confirmation; nothing is deleted until it
// is confirmed.
func (h *ScreenHandler) RequestDelete(c *gin.Context, sc listing.Screen) {
	handlerLogger := h.log.WithFields(logrus.Fields{"handler": "ScreenRequestDelete", "screen": sc.Name()})
	id, ok := paramID(c, handlerLogger, "id", "item")
	if !ok {
		return
	}
	conf, err := sc.RequestDelete(id)
	if err != nil {
		respondError(c, handlerLogger, err, "Unable to delete this item")
		return
	}
	c.JSON(http.StatusAccepted, conf)
}

func (h *ScreenHandler) RequestStatusChange(c *gin.Context, sc listing.Screen) {
	handlerLogger := h.log.WithFields(logrus.Fields{"handler": "ScreenRequestStatusChange", "screen": sc.Name()})
	orders, ok := sc.(*listing.OrdersScreen)
	if !ok {
		respondError(c, handlerLogger, listing.ErrReadOnly, "Status changes are not supported here")
		return
	}
	id, ok := paramID(c, handlerLogger, "id", "order")
	if !ok {
		return
	}
	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	conf, err := orders.RequestStatusChange(id, req.Status)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to update order status. Please try again.")
		return
	}
	c.JSON(http.StatusAccepted, conf)
}

func (h *ScreenHandler) DismissNotification(c *gin.Context, sc listing.Screen) {
	sc.DismissNotification()
	c.JSON(http.StatusOK, sc.Snapshot())
}

// respondView answers with the screen snapshot. A failed load keeps the
// previous page in the snapshot and sets its error message.
func (h *ScreenHandler) respondView(c *gin.Context, logger logrus.FieldLogger, sc listing.Screen, err error) {
	if err == nil {
		c.JSON(http.StatusOK, sc.Snapshot())
		return
	}
	var filterErr *listing.FilterError
	if errors.As(err, &filterErr) {
		respondError(c, logger, err, "Invalid filter")
		return
	}
	status, body := statusFor(err, "")
	if status == http.StatusUnauthorized {
		respondError(c, logger, err, "")
		return
	}
	logger.Warnf("Screen load failed: %v", err)
	if body.Fields != nil {
		c.JSON(status, body)
		return
	}
	c.JSON(status, sc.Snapshot())
}

// ConfirmationHandler resolves the pending confirm-then-execute actions of a
// session.
type ConfirmationHandler struct {
	log *logrus.Logger
}

func NewConfirmationHandler(logger *logrus.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{log: logger}
}

func (h *ConfirmationHandler) List(c *gin.Context) {
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, domain.DataResponse[[]listing.Confirmation]{Data: st.Confirmations.Pending()})
}

func (h *ConfirmationHandler) Get(c *gin.Context) {
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	conf, found := st.Confirmations.Get(c.Param("id"))
	if !found {
		respondError(c, h.log.WithField("handler", "GetConfirmation"), listing.ErrConfirmationNotFound, "")
		return
	}
	c.JSON(http.StatusOK, conf)
}

type ConfirmResponse struct {
	Notification listing.Notification `json:"notification"`
}

// Confirm runs the action. Its notification is returned on failure too, with
// the status of the error.
func (h *ConfirmationHandler) Confirm(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Confirm")
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	n, err := st.Confirmations.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, listing.ErrConfirmationNotFound) {
			respondError(c, handlerLogger, err, "")
			return
		}
		status, _ := statusFor(err, n.Message)
		if status == http.StatusUnauthorized {
			respondError(c, handlerLogger, err, n.Message)
			return
		}
		handlerLogger.Warnf("Confirmed action failed: %v", err)
		c.JSON(status, ConfirmResponse{Notification: n})
		return
	}
	c.JSON(http.StatusOK, ConfirmResponse{Notification: n})
}

func (h *ConfirmationHandler) Cancel(c *gin.Context) {
	st, ok := middleware.MustSession(c)
	if !ok {
		return
	}
	if err := st.Confirmations.Cancel(c.Param("id")); err != nil {
		respondError(c, h.log.WithField("handler", "CancelConfirmation"), err, "")
		return
	}
	c.Status(http.StatusNoContent)
}
