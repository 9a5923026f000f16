package dashboard

import "github.com/shopspring/decimal"

// RevenueSummary is the all-time revenue of non-cancelled orders
type RevenueSummary struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// MonthlyRevenue is one month of the revenue chart. MonthIndex is zero-based (January = 0).
type MonthlyRevenue struct {
	Month      string          `json:"month"`
	Year       int             `json:"year"`
	MonthIndex int             `json:"monthIndex"`
	Revenue    decimal.Decimal `json:"revenue"`
	Orders     int64           `json:"orders"`
}

// Performance summarises fulfillment over all orders. Rates are percentages.
type Performance struct {
	TotalOrders       int64           `json:"totalOrders"`
	DeliveredOrders   int64           `json:"deliveredOrders"`
	CancelledOrders   int64           `json:"cancelledOrders"`
	PendingOrders     int64           `json:"pendingOrders"`
	FulfillmentRate   decimal.Decimal `json:"fulfillmentRate"`
	CancellationRate  decimal.Decimal `json:"cancellationRate"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

// Trend compares a metric over the trailing window with the window before it
type Trend struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Trend    decimal.Decimal `json:"trend"`
}

// Trends holds the trailing-window comparisons shown on the dashboard
type Trends struct {
	Revenue           Trend `json:"revenue"`
	Orders            Trend `json:"orders"`
	AverageOrderValue Trend `json:"averageOrderValue"`
}
