package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Product   *Product        `json:"product"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt *string         `json:"created_at"`
	UpdatedAt *string         `json:"updated_at"`
}

// Cart totals are computed by the server; the gateway only mirrors them.
type Cart struct {
	ID         int64           `json:"id"`
	UserID     *int64          `json:"user_id"`
	Items      []CartItem      `json:"items"`
	ItemsCount int             `json:"items_count"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  *string         `json:"created_at"`
	UpdatedAt  *string         `json:"updated_at"`
}

type CartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// Item returns the line for productID, if present.
func (c *Cart) Item(productID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}
