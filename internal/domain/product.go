package domain

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description"`
	ParentID      *int64     `json:"parent_id"`
	Children      []Category `json:"children,omitempty"`
	ProductsCount *int       `json:"products_count,omitempty"`
	CreatedAt     *string    `json:"created_at"`
	UpdatedAt     *string    `json:"updated_at"`
}

type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Image        *string         `json:"image"`
	IsActive     int             `json:"is_active"`
	Categories   []Category      `json:"categories"`
	MainCategory *Category       `json:"main_category"`
	CreatedAt    *string         `json:"created_at"`
	UpdatedAt    *string         `json:"updated_at"`
}

type StockLevel string

const (
	StockIn  StockLevel = "in-stock"
	StockLow StockLevel = "low-stock"
	StockOut StockLevel = "out-of-stock"
)

// LowStockThreshold is the first stock count considered fully in stock.
const LowStockThreshold = 10

func (p Product) Active() bool {
	return p.IsActive == 1
}

func (p Product) StockLevel() StockLevel {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock < LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// ProductInput carries the admin product form. Nil fields are not sent.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryIDs []int64
	Image       *Upload
}

// Upload is a file received from the browser and forwarded as multipart.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

type CategoryInput struct {
	Name        string  `json:"name" binding:"required,min=2"`
	Description *string `json:"description"`
	ParentID    *int64  `json:"parent_id"`
}
