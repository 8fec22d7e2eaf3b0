package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type DashboardUserStats struct {
	Total     int `json:"total"`
	Admins    int `json:"admins"`
	Customers int `json:"customers"`
	NewToday  int `json:"new_today"`
}

type DashboardProductStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Inactive   int `json:"inactive"`
	OutOfStock int `json:"out_of_stock"`
	LowStock   int `json:"low_stock"`
}

type DashboardOrderStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Paid      int `json:"paid"`
	Shipped   int `json:"shipped"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Today     int `json:"today"`
	ThisMonth int `json:"this_month"`
}

type DashboardRevenueStats struct {
	Total     decimal.Decimal `json:"total"`
	Today     decimal.Decimal `json:"today"`
	ThisWeek  decimal.Decimal `json:"this_week"`
	ThisMonth decimal.Decimal `json:"this_month"`
}

type DashboardStatistics struct {
	Users        DashboardUserStats    `json:"users"`
	Products     DashboardProductStats `json:"products"`
	Orders       DashboardOrderStats   `json:"orders"`
	Revenue      DashboardRevenueStats `json:"revenue"`
	RecentOrders json.RawMessage       `json:"recent_orders"`
}
