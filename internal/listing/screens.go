package listing

import (
	"context"
	"fmt"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
)

const (
	ScreenCatalog    = "catalog"
	ScreenProducts   = "products"
	ScreenCategories = "categories"
	ScreenOrders     = "orders"
	ScreenPayments   = "payments"
	ScreenUsers      = "users"
)

// AdminScreens lists the back-office list screens by URL name.
var AdminScreens = []string{ScreenProducts, ScreenCategories, ScreenOrders, ScreenPayments, ScreenUsers}

const (
	catalogPerPage = 6
	adminPerPage   = 15
)

func searchField() Field {
	return Field{Name: "search", Kind: FieldSearch}
}

func sortField(options ...string) Field {
	return Field{Name: "sort", Kind: FieldSort, Options: append([]string{DefaultValue}, options...)}
}

func dateRange() []Field {
	return []Field{
		{Name: "start_date", Kind: FieldDate},
		{Name: "end_date", Kind: FieldDate},
	}
}

func statusStrings[S ~string](in []S) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func translateStock(value string, p *domain.ListParams) {
	switch domain.StockLevel(value) {
	case domain.StockIn:
		p.Set("min_stock", "10")
	case domain.StockLow:
		p.Set("min_stock", "1")
		p.Set("max_stock", "9")
	case domain.StockOut:
		p.Set("max_stock", "0")
	}
}

func translateActive(value string, p *domain.ListParams) {
	if value == "active" {
		p.Set("is_active", "1")
	} else {
		p.Set("is_active", "0")
	}
}

func CatalogConfig() Config {
	return Config{
		Name:    ScreenCatalog,
		PerPage: catalogPerPage,
		Fields: []Field{
			searchField(),
			{Name: "category_id", Kind: FieldEnum},
			{Name: "min_price", Kind: FieldNumber},
			{Name: "max_price", Kind: FieldNumber},
			sortField("price_asc", "price_desc", "name_asc", "name_desc", "created_at_asc", "created_at_desc"),
		},
		ReadOnly:    true,
		LoadFailure: "Failed to load products. Please try again.",
	}
}

func ProductsConfig() Config {
	return Config{
		Name:    ScreenProducts,
		PerPage: adminPerPage,
		Fields: []Field{
			searchField(),
			{Name: "category", Kind: FieldEnum, Param: "category_id"},
			{Name: "min_price", Kind: FieldNumber},
			{Name: "max_price", Kind: FieldNumber},
			{Name: "status", Kind: FieldEnum, Options: []string{AllValue, "active", "inactive"}, Translate: translateActive},
			{Name: "stock", Kind: FieldEnum, Options: []string{AllValue, string(domain.StockIn), string(domain.StockLow), string(domain.StockOut)}, Translate: translateStock},
			sortField("name_asc", "name_desc", "price_asc", "price_desc", "stock_asc", "stock_desc", "created_at_asc", "created_at_desc"),
		},
		LoadFailure: "Failed to load products. Please try again.",
	}
}

func CategoriesConfig() Config {
	return Config{
		Name:    ScreenCategories,
		PerPage: adminPerPage,
		Fields: []Field{
			searchField(),
			sortField("name_asc", "name_desc", "created_at_asc", "created_at_desc"),
		},
		LoadFailure: "Failed to load categories. Please try again.",
	}
}

func OrdersConfig() Config {
	fields := []Field{
		searchField(),
		{Name: "status", Kind: FieldEnum, Options: append([]string{AllValue}, statusStrings(domain.OrderStatuses)...)},
	}
	fields = append(fields, dateRange()...)
	fields = append(fields, sortField("total_asc", "total_desc", "created_at_asc", "created_at_desc"))
	return Config{
		Name:        ScreenOrders,
		PerPage:     adminPerPage,
		Fields:      fields,
		LoadFailure: "Failed to load orders. Please try again.",
	}
}

func PaymentsConfig() Config {
	fields := []Field{
		{Name: "search", Kind: FieldSearch, Param: "order_id", Numeric: true},
		{Name: "status", Kind: FieldEnum, Options: append([]string{AllValue}, statusStrings(domain.PaymentStatuses)...)},
		{Name: "payment_method", Kind: FieldEnum, Options: append([]string{AllValue}, statusStrings(domain.PaymentMethods)...)},
	}
	fields = append(fields, dateRange()...)
	fields = append(fields, sortField("amount_asc", "amount_desc", "created_at_asc", "created_at_desc"))
	return Config{
		Name:        ScreenPayments,
		PerPage:     adminPerPage,
		Fields:      fields,
		ReadOnly:    true,
		LoadFailure: "Failed to load payments. Please try again.",
	}
}

func UsersConfig() Config {
	return Config{
		Name:    ScreenUsers,
		PerPage: adminPerPage,
		Fields: []Field{
			searchField(),
			{Name: "role", Kind: FieldEnum, Options: append([]string{AllValue}, statusStrings(domain.Roles)...)},
			sortField("name_asc", "name_desc", "email_asc", "email_desc", "created_at_asc", "created_at_desc"),
		},
		LoadFailure: "Failed to load users. Please try again.",
	}
}

type productAdapter struct{ api clients.CatalogClient }

func (a productAdapter) List(ctx context.Context, p *domain.ListParams) (*domain.PaginatedResponse[domain.Product], error) {
	return a.api.ListProducts(ctx, p)
}

func (a productAdapter) Delete(ctx context.Context, id int64) (string, error) {
	return a.api.DeleteProduct(ctx, id)
}

func (a productAdapter) Describe(p domain.Product) Subject {
	return Subject{ID: p.ID, Noun: "product", Ref: fmt.Sprintf("%q", p.Name), Display: fmt.Sprintf("Product %q", p.Name)}
}

type categoryAdapter struct{ api clients.CatalogClient }

func (a categoryAdapter) List(ctx context.Context, p *domain.ListParams) (*domain.PaginatedResponse[domain.Category], error) {
	return a.api.ListCategories(ctx, p)
}

func (a categoryAdapter) Delete(ctx context.Context, id int64) (string, error) {
	return a.api.DeleteCategory(ctx, id)
}

func (a categoryAdapter) Describe(c domain.Category) Subject {
	return Subject{ID: c.ID, Noun: "category", Ref: fmt.Sprintf("category %q", c.Name), Display: fmt.Sprintf("Category %q", c.Name)}
}

type orderAdapter struct{ api clients.OrderClient }

func (a orderAdapter) List(ctx context.Context, p *domain.ListParams) (*domain.PaginatedResponse[domain.Order], error) {
	return a.api.ListOrders(ctx, p)
}

func (a orderAdapter) Delete(ctx context.Context, id int64) (string, error) {
	return a.api.DeleteOrder(ctx, id)
}

func (a orderAdapter) Describe(o domain.Order) Subject {
	return Subject{ID: o.ID, Noun: "order", Ref: fmt.Sprintf("order #%d", o.ID), Display: fmt.Sprintf("Order #%d", o.ID)}
}

type paymentAdapter struct{ api clients.OrderClient }

func (a paymentAdapter) List(ctx context.Context, p *domain.ListParams) (*domain.PaginatedResponse[domain.Payment], error) {
	return a.api.ListPayments(ctx, p)
}

func (paymentAdapter) Delete(context.Context, int64) (string, error) {
	return "", ErrReadOnly
}

func (paymentAdapter) Describe(p domain.Payment) Subject {
	return Subject{ID: p.ID, Noun: "payment", Ref: fmt.Sprintf("payment #%d", p.ID), Display: fmt.Sprintf("Payment #%d", p.ID)}
}

type userAdapter struct{ api clients.UserClient }

func (a userAdapter) List(ctx context.Context, p *domain.ListParams) (*domain.PaginatedResponse[domain.User], error) {
	return a.api.ListUsers(ctx, p)
}

func (a userAdapter) Delete(ctx context.Context, id int64) (string, error) {
	return a.api.DeleteUser(ctx, id)
}

func (a userAdapter) Describe(u domain.User) Subject {
	return Subject{ID: u.ID, Noun: "user", Ref: fmt.Sprintf("user %q", u.Name), Display: fmt.Sprintf("User %q", u.Name)}
}

// APIs groups the clients the screens read from.
type APIs struct {
	Catalog clients.CatalogClient
	Orders  clients.OrderClient
	Users   clients.UserClient
}

// OrdersScreen adds the status change action to the orders controller.
type OrdersScreen struct {
	*Controller[domain.Order]
	api clients.OrderClient
}

// RequestStatusChange registers a confirmation that moves the order to status.
func (s *OrdersScreen) RequestStatusChange(id int64, status domain.OrderStatus) (Confirmation, error) {
	if !status.Valid() {
		return Confirmation{}, &FilterError{Field: "status", Value: string(status), Reason: "unknown order status"}
	}
	return s.RequestAction(id, Action[domain.Order]{
		Title:       "Update Order Status",
		ConfirmText: "Update",
		Prompt: func(Subject) string {
			return fmt.Sprintf("Are you sure you want to change the order status to %q?", status)
		},
		Run: func(ctx context.Context, o domain.Order) (string, error) {
			resp, err := s.api.UpdateOrderStatus(ctx, o.ID, status)
			if err != nil {
				return "", err
			}
			return resp.Message, nil
		},
		Success: func(sub Subject) string {
			return fmt.Sprintf("%s status has been updated to %s.", sub.Display, status)
		},
		Failure: "Failed to update order status. Please try again.",
	})
}

// NewScreen builds the controller for a screen name, or false when the name
// is unknown.
func NewScreen(name string, apis APIs, confirms *Confirmations, opts Options) (Screen, bool) {
	switch name {
	case ScreenCatalog:
		return NewController[domain.Product](CatalogConfig(), productAdapter{apis.Catalog}, confirms, opts), true
	case ScreenProducts:
		return NewController[domain.Product](ProductsConfig(), productAdapter{apis.Catalog}, confirms, opts), true
	case ScreenCategories:
		return NewController[domain.Category](CategoriesConfig(), categoryAdapter{apis.Catalog}, confirms, opts), true
	case ScreenOrders:
		return &OrdersScreen{
			Controller: NewController[domain.Order](OrdersConfig(), orderAdapter{apis.Orders}, confirms, opts),
			api:        apis.Orders,
		}, true
	case ScreenPayments:
		return NewController[domain.Payment](PaymentsConfig(), paymentAdapter{apis.Orders}, confirms, opts), true
	case ScreenUsers:
		return NewController[domain.User](UsersConfig(), userAdapter{apis.Users}, confirms, opts), true
	}
	return nil, false
}
