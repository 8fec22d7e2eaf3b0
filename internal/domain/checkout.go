package domain

import "github.com/shopspring/decimal"

type CheckoutItem struct {
	ProductID      int64           `json:"product_id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
	InStock        bool            `json:"in_stock"`
	AvailableStock int             `json:"available_stock"`
}

type CheckoutSummary struct {
	Items []CheckoutItem  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Purchasable reports whether every line is in stock.
func (s CheckoutSummary) Purchasable() bool {
	if len(s.Items) == 0 {
		return false
	}
	for _, it := range s.Items {
		if !it.InStock {
			return false
		}
	}
	return true
}

type CheckoutRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// CheckoutSession is what the API returns when an order intent is accepted.
type CheckoutSession struct {
	OrderID    int64           `json:"order_id"`
	PaymentURL string          `json:"payment_url"`
	Total      decimal.Decimal `json:"total"`
}

type PaymentVerification struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID *int64 `json:"order_id,omitempty"`
}
