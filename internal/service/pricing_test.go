package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/eventloom/eventloom/internal/model"
)

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTotal(t *testing.T) {
	lookup := map[string]model.TicketType{
		"general": {ID: "general", Name: "General", Price: money("20.00")},
		"vip":     {ID: "vip", Name: "VIP", Price: money("50.00")},
	}
	tickets := []model.TicketSelection{
		{TicketTypeID: "general", Quantity: 2},
		{TicketTypeID: "vip", Quantity: 1},
	}

	total := ComputeTotal(tickets, lookup)

	assert.True(t, total.Equal(money("90.00")), "got %s", total)
}

func TestComputeTotal_Empty(t *testing.T) {
	total := ComputeTotal(nil, nil)
	assert.True(t, total.IsZero())
}

func TestComputeSplit(t *testing.T) {
	fee, revenue := ComputeSplit(money("90.00"), money("10"))

	assert.True(t, fee.Equal(money("9.00")), "fee %s", fee)
	assert.True(t, revenue.Equal(money("81.00")), "revenue %s", revenue)
	assert.True(t, fee.Add(revenue).Equal(money("90.00")))
}

// Revenue is the remainder after the rounded fee, so fee + revenue always
// reconstructs the total exactly even when the raw fee has a repeating
// fraction.
func TestComputeSplit_NoPennyDrift(t *testing.T) {
	cases := []struct {
		total   string
		percent string
	}{
		{"10.01", "3"},
		{"0.01", "10"},
		{"99.99", "7.5"},
		{"33.33", "33"},
		{"19.99", "2.9"},
	}

	for _, tc := range cases {
		fee, revenue := ComputeSplit(money(tc.total), money(tc.percent))

		assert.True(t, fee.Add(revenue).Equal(money(tc.total)),
			"total=%s percent=%s: fee %s + revenue %s != total",
			tc.total, tc.percent, fee, revenue)
		assert.True(t, fee.Equal(fee.Round(2)), "fee %s not 2-decimal", fee)
	}
}

func TestComputeSplit_ZeroPercent(t *testing.T) {
	fee, revenue := ComputeSplit(money("50.00"), decimal.Zero)

	assert.True(t, fee.IsZero())
	assert.True(t, revenue.Equal(money("50.00")))
}
