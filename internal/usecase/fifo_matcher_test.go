package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/trade_analyzer/internal/domain"
	"github.com/vitos/trade_analyzer/internal/usecase"
)

var t0 = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func order(row int, symbol string, side domain.OrderSide, qty, price float64, offset time.Duration, commission ...float64) *domain.RawOrder {
	o := &domain.RawOrder{
		RowNumber:   row,
		Symbol:      symbol,
		Side:        side,
		Quantity:    qty,
		FillPrice:   price,
		PlacingTime: t0.Add(offset),
	}
	if len(commission) > 0 {
		c := commission[0]
		o.Commission = &c
	}
	return o
}

func TestMatchOrders_LongRoundTrip(t *testing.T) {
	orders := []*domain.RawOrder{
		order(2, "BTCUSDT", domain.OrderSideBuy, 1.0, 42500, 0, 12.50),
		order(3, "BTCUSDT", domain.OrderSideSell, 1.0, 43200, time.Hour, 12.50),
	}

	res := usecase.MatchOrders(orders)
	require.Len(t, res.Matched, 1)
	assert.Empty(t, res.Unmatched)

	trade := res.Matched[0]
	assert.Equal(t, domain.SideLong, trade.Side)
	assert.InDelta(t, 700.0, trade.GrossPnL, 1e-9)
	assert.InDelta(t, 675.0, trade.NetPnL, 1e-9)
	assert.InDelta(t, 25.0, trade.TotalCommission, 1e-9)
	assert.InDelta(t, 1.647, trade.PnLPercent, 0.001)
	assert.Equal(t, 2, trade.EntryOrder.RowNumber)
	assert.Equal(t, 3, trade.ExitOrder.RowNumber)
}

func TestMatchOrders_ShortRoundTrip(t *testing.T) {
	orders := []*domain.RawOrder{
		order(2, "GBPUSD", domain.OrderSideSell, 100000, 1.27850, 0),
		order(3, "GBPUSD", domain.OrderSideBuy, 100000, 1.27650, 30*time.Minute),
	}

	res := usecase.MatchOrders(orders)
	require.Len(t, res.Matched, 1)

	trade := res.Matched[0]
	assert.Equal(t, domain.SideShort, trade.Side)
	assert.Equal(t, 1.27850, trade.EntryPrice)
	assert.Equal(t, 1.27650, trade.ExitPrice)
	assert.InDelta(t, 200.0, trade.GrossPnL, 1e-6)
	assert.InDelta(t, trade.GrossPnL, trade.NetPnL, 1e-12)
}

func TestMatchOrders_LoneOrderUnmatched(t *testing.T) {
	orders := []*domain.RawOrder{
		order(2, "ETHUSDT", domain.OrderSideBuy, 2, 2300, 0),
		order(3, "BTCUSDT", domain.OrderSideBuy, 1, 42000, time.Minute),
		order(4, "BTCUSDT", domain.OrderSideSell, 1, 42100, 2*time.Minute),
	}

	res := usecase.MatchOrders(orders)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "BTCUSDT", res.Matched[0].Symbol)
	require.Len(t, res.Unmatched, 1)
	assert.Equal(t, "ETHUSDT", res.Unmatched[0].Symbol)
}

func TestMatchOrders_FIFOAndSorting(t *testing.T) {
	// Input is out of order on purpose; the earliest buy must close first.
	orders := []*domain.RawOrder{
		order(5, "SOL", domain.OrderSideSell, 10, 120, 3*time.Hour),
		order(3, "SOL", domain.OrderSideBuy, 10, 110, time.Hour),
		order(2, "SOL", domain.OrderSideBuy, 10, 100, 0),
		order(4, "SOL", domain.OrderSideSell, 10, 115, 2*time.Hour),
	}

	res := usecase.MatchOrders(orders)
	require.Len(t, res.Matched, 2)
	assert.Empty(t, res.Unmatched)

	assert.Equal(t, 100.0, res.Matched[0].EntryPrice)
	assert.Equal(t, 115.0, res.Matched[0].ExitPrice)
	assert.Equal(t, 110.0, res.Matched[1].EntryPrice)
	assert.Equal(t, 120.0, res.Matched[1].ExitPrice)

	for _, trade := range res.Matched {
		assert.False(t, trade.ExitTime.Before(trade.EntryTime))
	}
	assert.True(t, res.Matched[0].EntryTime.Before(res.Matched[1].EntryTime))

	// caller's slice untouched
	assert.Equal(t, 5, orders[0].RowNumber)
}

func TestMatchOrders_QuantityTolerance(t *testing.T) {
	orders := []*domain.RawOrder{
		order(2, "BTC", domain.OrderSideBuy, 1.0, 100, 0),
		order(3, "BTC", domain.OrderSideSell, 0.5, 110, time.Minute),
		order(4, "BTC", domain.OrderSideSell, 1.00005, 120, 2*time.Minute),
	}

	res := usecase.MatchOrders(orders)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, 120.0, res.Matched[0].ExitPrice)
	assert.InDelta(t, 1.000025, res.Matched[0].Quantity, 1e-12)

	require.Len(t, res.Unmatched, 1)
	assert.Equal(t, 3, res.Unmatched[0].RowNumber)
}

func TestMatchOrders_ConservesOrders(t *testing.T) {
	orders := []*domain.RawOrder{
		order(2, "A", domain.OrderSideBuy, 1, 10, 0),
		order(3, "A", domain.OrderSideBuy, 2, 10, time.Minute),
		order(4, "B", domain.OrderSideSell, 1, 10, 2*time.Minute),
		order(5, "A", domain.OrderSideSell, 1, 11, 3*time.Minute),
		order(6, "B", domain.OrderSideBuy, 1, 9, 4*time.Minute),
		order(7, "A", domain.OrderSideSell, 3, 12, 5*time.Minute),
	}

	res := usecase.MatchOrders(orders)
	assert.Equal(t, len(orders), 2*len(res.Matched)+len(res.Unmatched))
	assert.Len(t, res.Matched, 2)
	assert.Len(t, res.Unmatched, 2)
}

func TestMatchOrders_Empty(t *testing.T) {
	res := usecase.MatchOrders(nil)
	assert.NotNil(t, res.Matched)
	assert.NotNil(t, res.Unmatched)
	assert.Empty(t, res.Matched)
}

func TestQuantitiesMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"equal", 1, 1, true},
		{"at tolerance", 1, 1.0001, true},
		{"outside tolerance", 1, 1.001, false},
		{"zero", 0, 0, false},
		{"negative leg", -1, 1, false},
		{"relative to smaller leg", 100, 100.0100005, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.QuantitiesMatch(tt.a, tt.b))
			assert.Equal(t, tt.want, usecase.QuantitiesMatch(tt.b, tt.a), "argument order")
		})
	}
}

func TestMatchOrders_ToleranceIndependentOfLegOrder(t *testing.T) {
	// 0.0100005 apart: within tolerance of the larger leg, outside of the smaller.
	tests := []struct {
		name      string
		firstQty  float64
		secondQty float64
	}{
		{"larger leg first", 100.0100005, 100},
		{"smaller leg first", 100, 100.0100005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := usecase.MatchOrders([]*domain.RawOrder{
				order(2, "X", domain.OrderSideBuy, tt.firstQty, 10, 0),
				order(3, "X", domain.OrderSideSell, tt.secondQty, 11, time.Hour),
			})
			assert.Empty(t, res.Matched)
			assert.Len(t, res.Unmatched, 2)
		})
	}
}

func TestBuildTrade_EntryIsEarlierLeg(t *testing.T) {
	buy := order(2, "X", domain.OrderSideBuy, 1, 100, time.Hour)
	sell := order(3, "X", domain.OrderSideSell, 1, 90, 0)

	trade := usecase.BuildTrade(buy, sell)
	assert.Equal(t, domain.SideShort, trade.Side)
	assert.Equal(t, 90.0, trade.EntryPrice)
	assert.InDelta(t, -10.0, trade.GrossPnL, 1e-12)
	assert.Same(t, sell, trade.EntryOrder)
}
