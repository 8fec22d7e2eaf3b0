package clients

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_gateway/internal/domain"
)

func newTestAPI(t *testing.T, h http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewAPI(srv.URL, 2*time.Second, logger)
}

func TestOutgoingHooks(t *testing.T) {
	var got http.Header
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"id":1,"name":"Ann","email":"a@x.io","role":"user","has_verified_email":true}`))
	})

	ctx := WithRequestID(WithToken(context.Background(), "tok-123"), "req-9")
	user, err := NewAuthHTTPClient(api).Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "no-cache", got.Get("Cache-Control"))
	assert.Equal(t, "no-cache", got.Get("Pragma"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "req-9", got.Get("X-Request-ID"))
}

func TestNoTokenNoAuthorizationHeader(t *testing.T) {
	var auth string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[],"meta":{"current_page":1,"last_page":1,"per_page":6,"total":0}}`))
	})
	_, err := NewCatalogHTTPClient(api).ListProducts(context.Background(), domain.NewListParams())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestValidationErrorDecoding(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"The name field is required.","errors":{"name":["The name field is required."]}}`))
	})
	_, err := NewCatalogHTTPClient(api).CreateCategory(context.Background(), domain.CategoryInput{Name: "x"})
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, apiErr.Kind())
	assert.Equal(t, []string{"The name field is required."}, apiErr.Fields["name"])
	assert.Equal(t, "The name field is required.", UserMessage(err, "fallback"))
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindForbidden},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusInternalServerError, KindGeneric},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			_, err := NewCatalogHTTPClient(api).GetProduct(context.Background(), 7)
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestUserMessageFallbacks(t *testing.T) {
	assert.Equal(t, "fallback", UserMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(&APIError{StatusCode: 500, Message: "SQLSTATE"}, "fallback"))
	assert.Equal(t, "fallback", UserMessage(&APIError{Message: "dial tcp"}, "fallback"))
	assert.Equal(t, "fallback", UserMessage(&APIError{StatusCode: 404, Message: "Not Found"}, "fallback"))
	assert.Equal(t, "Product in use", UserMessage(&APIError{StatusCode: 409, Message: "Product in use"}, "fallback"))
}

func TestNetworkErrorIsGeneric(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	api := NewAPI("http://127.0.0.1:1", time.Second, logger)
	_, err := NewCatalogHTTPClient(api).GetProduct(context.Background(), 1)
	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, KindGeneric, apiErr.Kind())
}

func TestListProductsQueryOrder(t *testing.T) {
	var rawQuery string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[{"id":1,"name":"Shirt","price":"19.90","stock":4}],"meta":{"current_page":3,"last_page":1,"per_page":6,"total":1}}`))
	})
	p := domain.NewListParams()
	p.Set("search", "shirt")
	p.Set("category_id", "3")
	p.Set("page", "1")

	resp, err := NewCatalogHTTPClient(api).ListProducts(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "search=shirt&category_id=3&page=1", rawQuery)
	assert.Equal(t, 1, resp.Meta.CurrentPage)
	assert.True(t, resp.Data[0].Price.Equal(decimal.RequireFromString("19.90")))
}

func TestUpdateProductMultipart(t *testing.T) {
	var (
		method string
		form   *multipart.Form
	)
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		assert.NoError(t, err)
		form, err = multipart.NewReader(r.Body, params["boundary"]).ReadForm(1 << 20)
		assert.NoError(t, err)
		w.Write([]byte(`{"message":"Product updated","data":{"id":5,"name":"Cap","price":"5.00"}}`))
	})

	name := "Cap"
	price := decimal.RequireFromString("5.00")
	in := domain.ProductInput{
		Name:        &name,
		Price:       &price,
		CategoryIDs: []int64{2, 9},
		Image:       &domain.Upload{Filename: "cap.png", ContentType: "image/png", Content: []byte("png")},
	}
	resp, err := NewCatalogHTTPClient(api).UpdateProduct(context.Background(), 5, in)
	require.NoError(t, err)
	assert.Equal(t, "Product updated", resp.Message)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, []string{"PUT"}, form.Value["_method"])
	assert.Equal(t, []string{"Cap"}, form.Value["name"])
	assert.Equal(t, []string{"5"}, form.Value["price"])
	assert.Equal(t, []string{"2"}, form.Value["category_ids[0]"])
	assert.Equal(t, []string{"9"}, form.Value["category_ids[1]"])
	assert.NotContains(t, form.Value, "stock")
	require.Len(t, form.File["image"], 1)
	assert.Equal(t, "cap.png", form.File["image"][0].Filename)
}

func TestCartPayloadKeepsRawBytes(t *testing.T) {
	const data = `{"id":4,"items":[{"id":1,"product_id":7,"quantity":2,"subtotal":"39.80"}],"items_count":1,"total":"39.80"}`
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Added","data":` + data + `}`))
	})
	payload, err := NewCartHTTPClient(api).AddItem(context.Background(), domain.CartItemRequest{ProductID: 7, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, data, string(payload.Raw))
	require.NotNil(t, payload.Cart)
	assert.Equal(t, 1, payload.Cart.ItemsCount)
}

func TestGetCartWithoutCart(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Cart is empty"}`))
	})
	payload, err := NewCartHTTPClient(api).GetCart(context.Background())
	require.NoError(t, err)
	assert.Nil(t, payload.Cart)
	assert.Nil(t, payload.Raw)
	assert.Equal(t, "Cart is empty", payload.Message)
}

func TestRemoveItemUsesQuery(t *testing.T) {
	var method, query string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		method, query = r.Method, r.URL.RawQuery
		w.Write([]byte(`{"message":"Removed","data":{"id":4,"items":[],"items_count":0,"total":"0"}}`))
	})
	_, err := NewCartHTTPClient(api).RemoveItem(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "product_id=7", query)
}

func TestCheckoutProcessRejected(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.True(t, strings.Contains(string(body), `"notes":"leave at door"`))
		w.Write([]byte(`{"success":false,"message":"Some items are out of stock"}`))
	})
	notes := "leave at door"
	_, err := NewCheckoutHTTPClient(api).Process(context.Background(), domain.CheckoutRequest{Notes: &notes})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Some items are out of stock", UserMessage(err, "Checkout failed"))
}

func TestCheckoutVerifyPayment(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"Payment verified","data":{"order":{"id":31,"status":"paid"}}}`))
	})
	v, err := NewCheckoutHTTPClient(api).VerifyPayment(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.True(t, v.Success)
	require.NotNil(t, v.OrderID)
	assert.Equal(t, int64(31), *v.OrderID)
}

func TestLoginWithoutToken(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":1}}`))
	})
	_, err := NewAuthHTTPClient(api).Login(context.Background(), domain.LoginRequest{Email: "a@x.io", Password: "pw"})
	assert.ErrorIs(t, err, ErrNoToken)
}
