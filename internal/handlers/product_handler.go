package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
)

// MaxImageSize is the largest product image accepted for upload.
const MaxImageSize = 5 << 20

type ProductHandler struct {
	catalogClient clients.CatalogClient
	log           *logrus.Logger
}

func NewProductHandler(cc clients.CatalogClient, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		catalogClient: cc,
		log:           logger,
	}
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "GetProduct")
	id, ok := paramID(c, handlerLogger, "id", "product")
	if !ok {
		return
	}
	product, err := h.catalogClient.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to load product. Please try again.")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "CreateProduct")
	in, fields := parseProductForm(c, true)
	if len(fields) > 0 {
		handlerLogger.Warnf("Invalid product form: %v", fields)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Please correct the highlighted fields", Fields: fields})
		return
	}
	resp, err := h.catalogClient.CreateProduct(c.Request.Context(), in)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to save product. Please try again.")
		return
	}
	handlerLogger.Infof("Product %d created", resp.Data.ID)
	c.JSON(http.StatusCreated, domain.MessageResponse[domain.Product]{Message: "Product created successfully!", Data: resp.Data})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "UpdateProduct")
	id, ok := paramID(c, handlerLogger, "id", "product")
	if !ok {
		return
	}
	in, fields := parseProductForm(c, false)
	if len(fields) > 0 {
		handlerLogger.Warnf("Invalid product form: %v", fields)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Please correct the highlighted fields", Fields: fields})
		return
	}
	resp, err := h.catalogClient.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, handlerLogger, err, "Failed to save product. Please try again.")
		return
	}
	c.JSON(http.StatusOK, domain.MessageResponse[domain.Product]{Message: "Product updated successfully!", Data: resp.Data})
}

// parseProductForm reads the multipart product form. Fields left out of an
// update are not sent; on create name, price and stock are required.
func parseProductForm(c *gin.Context, create bool) (domain.ProductInput, map[string][]string) {
	var in domain.ProductInput
	fields := map[string][]string{}
	fail := func(name, msg string) { fields[name] = append(fields[name], msg) }

	if v, ok := c.GetPostForm("name"); ok {
		v = strings.TrimSpace(v)
		if len(v) < 2 {
			fail("name", "The name must be at least 2 characters.")
		}
		in.Name = &v
	} else if create {
		fail("name", "The name field is required.")
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil || price.IsNegative() {
			fail("price", "The price must be a positive number.")
		} else {
			in.Price = &price
		}
	} else if create {
		fail("price", "The price field is required.")
	}
	if v, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || stock < 0 {
			fail("stock", "The stock must be a whole number of at least 0.")
		} else {
			in.Stock = &stock
		}
	} else if create {
		fail("stock", "The stock field is required.")
	}

	ids := c.PostFormArray("category_ids[]")
	if len(ids) == 0 {
		ids = c.PostFormArray("category_ids")
	}
	for _, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			fail("category_ids", "Invalid category id: "+raw)
			continue
		}
		in.CategoryIDs = append(in.CategoryIDs, id)
	}

	if fh, err := c.FormFile("image"); err == nil {
		upload, msg := readUpload(fh)
		if msg != "" {
			fail("image", msg)
		} else {
			in.Image = upload
		}
	}
	return in, fields
}

func readUpload(fh *multipart.FileHeader) (*domain.Upload, string) {
	if fh.Size > MaxImageSize {
		return nil, "File Too Large. Image size must be less than 5MB"
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "Please select an image file (JPG, PNG, GIF, etc.)"
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "Unable to read the uploaded file"
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, "Unable to read the uploaded file"
	}
	if len(content) > MaxImageSize {
		return nil, "File Too Large. Image size must be less than 5MB"
	}
	return &domain.Upload{Filename: fh.Filename, ContentType: contentType, Content: content}, ""
}
