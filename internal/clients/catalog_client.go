package clients

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/domain"
)

// CatalogClient covers products and categories, public and admin endpoints.
type CatalogClient interface {
	ListProducts(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.Product], error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.MessageResponse[domain.Product], error)
	UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.MessageResponse[domain.Product], error)
	DeleteProduct(ctx context.Context, id int64) (string, error)

	ListCategories(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.Category], error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.MessageResponse[domain.Category], error)
	UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.MessageResponse[domain.Category], error)
	DeleteCategory(ctx context.Context, id int64) (string, error)
}

type catalogHTTPClient struct {
	api *API
	log *logrus.Logger
}

func NewCatalogHTTPClient(api *API) CatalogClient {
	return &catalogHTTPClient{api: api, log: api.log}
}

func (c *catalogHTTPClient) ListProducts(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.Product], error) {
	c.log.Debugf("CatalogClient: Calling ListProducts with %q", params.Encode())
	var resp domain.PaginatedResponse[domain.Product]
	if err := c.api.getJSON(ctx, "/products", params, &resp); err != nil {
		return nil, err
	}
	resp.Normalize()
	return &resp, nil
}

func (c *catalogHTTPClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	c.log.Debugf("CatalogClient: Calling GetProduct for ID %d", id)
	var resp domain.DataResponse[domain.Product]
	if err := c.api.getJSON(ctx, fmt.Sprintf("/products/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *catalogHTTPClient) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.MessageResponse[domain.Product], error) {
	c.log.Debugf("CatalogClient: Calling CreateProduct")
	return c.sendProduct(ctx, "/admin/products", in, false)
}

// UpdateProduct posts the form with a _method=PUT override, which is how the
// API accepts file uploads on update.
func (c *catalogHTTPClient) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.MessageResponse[domain.Product], error) {
	c.log.Debugf("CatalogClient: Calling UpdateProduct for ID %d", id)
	return c.sendProduct(ctx, fmt.Sprintf("/admin/products/%d", id), in, true)
}

func (c *catalogHTTPClient) sendProduct(ctx context.Context, path string, in domain.ProductInput, update bool) (*domain.MessageResponse[domain.Product], error) {
	body, contentType, err := encodeProductForm(in, update)
	if err != nil {
		c.log.Errorf("CatalogClient: Failed to encode product form: %v", err)
		return nil, fmt.Errorf("failed to encode product form: %w", err)
	}
	var resp domain.MessageResponse[domain.Product]
	err = c.api.do(ctx, request{method: http.MethodPost, path: path, body: body, contentType: contentType}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func encodeProductForm(in domain.ProductInput, update bool) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := make([][2]string, 0, 8)
	if update {
		fields = append(fields, [2]string{"_method", http.MethodPut})
	}
	if in.Name != nil {
		fields = append(fields, [2]string{"name", *in.Name})
	}
	if in.Description != nil {
		fields = append(fields, [2]string{"description", *in.Description})
	}
	if in.Price != nil {
		fields = append(fields, [2]string{"price", in.Price.String()})
	}
	if in.Stock != nil {
		fields = append(fields, [2]string{"stock", strconv.Itoa(*in.Stock)})
	}
	for i, id := range in.CategoryIDs {
		fields = append(fields, [2]string{fmt.Sprintf("category_ids[%d]", i), strconv.FormatInt(id, 10)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if in.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, in.Image.Filename))
		contentType := in.Image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(in.Image.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *catalogHTTPClient) DeleteProduct(ctx context.Context, id int64) (string, error) {
	c.log.Debugf("CatalogClient: Calling DeleteProduct for ID %d", id)
	return c.api.deleteWithMessage(ctx, fmt.Sprintf("/admin/products/%d", id), nil)
}

func (c *catalogHTTPClient) ListCategories(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[domain.Category], error) {
	c.log.Debugf("CatalogClient: Calling ListCategories with %q", params.Encode())
	var resp domain.PaginatedResponse[domain.Category]
	if err := c.api.getJSON(ctx, "/categories", params, &resp); err != nil {
		return nil, err
	}
	resp.Normalize()
	return &resp, nil
}

func (c *catalogHTTPClient) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	c.log.Debugf("CatalogClient: Calling GetCategory for ID %d", id)
	var resp domain.DataResponse[domain.Category]
	if err := c.api.getJSON(ctx, fmt.Sprintf("/categories/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *catalogHTTPClient) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.MessageResponse[domain.Category], error) {
	c.log.Debugf("CatalogClient: Calling CreateCategory %q", in.Name)
	var resp domain.MessageResponse[domain.Category]
	if err := c.api.sendJSON(ctx, http.MethodPost, "/admin/categories", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *catalogHTTPClient) UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.MessageResponse[domain.Category], error) {
	c.log.Debugf("CatalogClient: Calling UpdateCategory for ID %d", id)
	var resp domain.MessageResponse[domain.Category]
	if err := c.api.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/admin/categories/%d", id), in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *catalogHTTPClient) DeleteCategory(ctx context.Context, id int64) (string, error) {
	c.log.Debugf("CatalogClient: Calling DeleteCategory for ID %d", id)
	return c.api.deleteWithMessage(ctx, fmt.Sprintf("/admin/categories/%d", id), nil)
}
