package service

import (
	"github.com/shopspring/decimal"

	"github.com/eventloom/eventloom/internal/model"
)

// ComputeTotal sums unit price times quantity over all line items. Pure and
// deterministic; no rounding beyond the currency's fixed 2-decimal precision
// already carried by the prices.
func ComputeTotal(tickets []model.TicketSelection, lookup map[string]model.TicketType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tickets {
		price := lookup[t.TicketTypeID].Price
		total = total.Add(price.Mul(decimal.NewFromInt(int64(t.Quantity))))
	}
	return total
}

// ComputeSplit divides a total between platform fee and organizer revenue.
// The fee is rounded to 2 decimals; revenue is the exact remainder rather
// than an independently rounded figure, so fee + revenue == total always
// holds with no penny drift.
func ComputeSplit(total, feePercent decimal.Decimal) (fee, revenue decimal.Decimal) {
	fee = total.Mul(feePercent).Div(decimal.NewFromInt(100)).Round(2)
	revenue = total.Sub(fee)
	return fee, revenue
}
