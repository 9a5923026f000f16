package dto

import (
	"encoding/json"

	"github.com/boutique/storefront/internal/application/dashboard"
)

// RevenueResponse is the all-time revenue figure
type RevenueResponse struct {
	TotalRevenue json.Number `json:"totalRevenue" swaggertype:"number"`
}

// MonthlyRevenueResponse is one bar of the revenue chart
type MonthlyRevenueResponse struct {
	Month      string      `json:"month" example:"Jan 2026"`
	Year       int         `json:"year"`
	MonthIndex int         `json:"monthIndex"`
	Revenue    json.Number `json:"revenue" swaggertype:"number"`
	Orders     int64       `json:"orders"`
}

// PerformanceResponse summarises fulfillment
type PerformanceResponse struct {
	TotalOrders       int64       `json:"totalOrders"`
	DeliveredOrders   int64       `json:"deliveredOrders"`
	CancelledOrders   int64       `json:"cancelledOrders"`
	PendingOrders     int64       `json:"pendingOrders"`
	FulfillmentRate   json.Number `json:"fulfillmentRate" swaggertype:"number"`
	CancellationRate  json.Number `json:"cancellationRate" swaggertype:"number"`
	AverageOrderValue json.Number `json:"averageOrderValue" swaggertype:"number"`
}

// TrendResponse compares two trailing windows
type TrendResponse struct {
	Current  json.Number `json:"current" swaggertype:"number"`
	Previous json.Number `json:"previous" swaggertype:"number"`
	Trend    json.Number `json:"trend" swaggertype:"number"`
}

// TrendsResponse holds the dashboard trend cards
type TrendsResponse struct {
	Revenue           TrendResponse `json:"revenue"`
	Orders            TrendResponse `json:"orders"`
	AverageOrderValue TrendResponse `json:"averageOrderValue"`
}

// ToRevenueResponse converts the revenue summary
func ToRevenueResponse(r dashboard.RevenueSummary) RevenueResponse {
	return RevenueResponse{TotalRevenue: Money(r.TotalRevenue)}
}

// ToRevenueChartResponse converts the monthly revenue series
func ToRevenueChartResponse(months []dashboard.MonthlyRevenue) []MonthlyRevenueResponse {
	out := make([]MonthlyRevenueResponse, len(months))
	for i, m := range months {
		out[i] = MonthlyRevenueResponse{
			Month:      m.Month,
			Year:       m.Year,
			MonthIndex: m.MonthIndex,
			Revenue:    Money(m.Revenue),
			Orders:     m.Orders,
		}
	}
	return out
}

// ToPerformanceResponse converts the performance summary
func ToPerformanceResponse(p dashboard.Performance) PerformanceResponse {
	return PerformanceResponse{
		TotalOrders:       p.TotalOrders,
		DeliveredOrders:   p.DeliveredOrders,
		CancelledOrders:   p.CancelledOrders,
		PendingOrders:     p.PendingOrders,
		FulfillmentRate:   Money(p.FulfillmentRate),
		CancellationRate:  Money(p.CancellationRate),
		AverageOrderValue: Money(p.AverageOrderValue),
	}
}

// ToTrendsResponse converts the trend cards. Order counts are rendered without decimals.
func ToTrendsResponse(t dashboard.Trends) TrendsResponse {
	return TrendsResponse{
		Revenue:           toTrendResponse(t.Revenue, 2),
		Orders:            toTrendResponse(t.Orders, 0),
		AverageOrderValue: toTrendResponse(t.AverageOrderValue, 2),
	}
}

func toTrendResponse(t dashboard.Trend, places int32) TrendResponse {
	return TrendResponse{
		Current:  json.Number(t.Current.StringFixed(places)),
		Previous: json.Number(t.Previous.StringFixed(places)),
		Trend:    Money(t.Trend),
	}
}
