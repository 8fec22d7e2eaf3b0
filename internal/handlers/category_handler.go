package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
)

// SelectorPageSize is how many categories filter selectors fetch at once.
const SelectorPageSize = 100

type CategoryHandler struct {
	catalogClient clients.CatalogClient
	log           *logrus.Logger
}

func NewCategoryHandler(cc clients.CatalogClient, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalogClient: cc,
		log:           logger,
	}
}

// ListCategories returns the categories for filter selectors and forms.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "ListCategories")
	params := domain.NewListParams()
	params.Set("per_page", strconv.Itoa(SelectorPageSize))
	resp, err := h.catalogClient.ListCategories(c.Request.Context(), params)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load categories. Please try again.")
		return
	}
	c.JSON(http.StatusOK, domain.DataResponse[[]domain.Category]{Data: resp.Data})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetCategory")
	id, ok := paramID(c, handlerLogger, "id", "category")
	if !ok {
		return
	}
	category, err := h.catalogClient.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load category data. Please try again.")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateCategory")
	var req domain.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	resp, err := h.catalogClient.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to create category. Please try again.")
		return
	}
	c.JSON(http.StatusCreated, domain.MessageResponse[domain.Category]{Message: "Category has been created successfully.", Data: resp.Data})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateCategory")
	id, ok := paramID(c, handlerLogger, "id", "category")
	if !ok {
		return
	}
	var req domain.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, handlerLogger, "Invalid request body: "+err.Error(), err)
		return
	}
	if req.ParentID != nil && *req.ParentID == id {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "A category cannot be its own parent",
			Fields: map[string][]string{"parent_id": {"A category cannot be its own parent."}},
		})
		return
	}
	resp, err := h.catalogClient.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to update category. Please try again.")
		return
	}
	c.JSON(http.StatusOK, domain.MessageResponse[domain.Category]{Message: "Category has been updated successfully.", Data: resp.Data})
}
