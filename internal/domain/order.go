package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCancelled}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCancelled:
		return true
	default:
		return false
	}
}

// OrderItem is the line snapshot taken at purchase time.
type OrderItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt *string         `json:"created_at"`
	UpdatedAt *string         `json:"updated_at"`
}

type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	User       *User           `json:"user,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Status     OrderStatus     `json:"status"`
	Items      []OrderItem     `json:"items,omitempty"`
	ItemsCount *int            `json:"items_count,omitempty"`
	CreatedAt  *string         `json:"created_at"`
	UpdatedAt  *string         `json:"updated_at"`
}

type UpdateOrderRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}
