package dashboard

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CalculateTrend returns the percentage change from previous to current, rounded to
// two places. With no previous value the trend is 100 when current is nonzero, else 0.
func CalculateTrend(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// percentage returns part as a share of whole in percent, 0 for an empty whole
func percentage(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(2)
}

// average returns total / count rounded to two places, 0 when count is 0
func average(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(count)).Round(2)
}
