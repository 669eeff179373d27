package usecase

import (
	"math"
	"sort"

	"github.com/vitos/trade_analyzer/internal/domain"
)

// QuantityTolerance is the relative quantity gap allowed between two legs.
const QuantityTolerance = 0.0001

// MatchResult is the FIFO matcher output.
type MatchResult struct {
	Matched   []*domain.MatchedTrade
	Unmatched []*domain.RawOrder
}

// symbolBook holds the pending legs of one symbol.
type symbolBook struct {
	buys  []*domain.RawOrder
	sells []*domain.RawOrder
}

// MatchOrders pairs buy and sell orders of the same symbol into round trips.
//
// Orders are sorted globally by placing time (stable), then walked per symbol.
// Each order takes the earliest pending opposite-side order whose quantity is
// within QuantityTolerance of its own; otherwise it waits in its own queue.
// This is greedy first-fit, not an optimal assignment: a later pairing that
// would have matched more volume is never considered.
//
// The input slice is not modified.
func MatchOrders(orders []*domain.RawOrder) MatchResult {
	result := MatchResult{
		Matched:   []*domain.MatchedTrade{},
		Unmatched: []*domain.RawOrder{},
	}
	if len(orders) == 0 {
		return result
	}

	sorted := make([]*domain.RawOrder, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlacingTime.Before(sorted[j].PlacingTime)
	})

	var symbols []string
	bySymbol := make(map[string][]*domain.RawOrder)
	for _, o := range sorted {
		if _, ok := bySymbol[o.Symbol]; !ok {
			symbols = append(symbols, o.Symbol)
		}
		bySymbol[o.Symbol] = append(bySymbol[o.Symbol], o)
	}

	for _, symbol := range symbols {
		matched, unmatched := matchSymbol(bySymbol[symbol])
		result.Matched = append(result.Matched, matched...)
		result.Unmatched = append(result.Unmatched, unmatched...)
	}

	sort.SliceStable(result.Matched, func(i, j int) bool {
		return result.Matched[i].EntryTime.Before(result.Matched[j].EntryTime)
	})

	return result
}

func matchSymbol(orders []*domain.RawOrder) ([]*domain.MatchedTrade, []*domain.RawOrder) {
	book := &symbolBook{}
	var matched []*domain.MatchedTrade

	for _, o := range orders {
		own, opposite := &book.buys, &book.sells
		if o.Side == domain.OrderSideSell {
			own, opposite = &book.sells, &book.buys
		}

		idx := firstWithinTolerance(*opposite, o.Quantity)
		if idx < 0 {
			*own = append(*own, o)
			continue
		}

		counter := (*opposite)[idx]
		*opposite = append((*opposite)[:idx:idx], (*opposite)[idx+1:]...)
		matched = append(matched, BuildTrade(counter, o))
	}

	// Leftovers keep chronological order.
	unmatched := make([]*domain.RawOrder, 0, len(book.buys)+len(book.sells))
	unmatched = append(unmatched, book.buys...)
	unmatched = append(unmatched, book.sells...)
	sort.SliceStable(unmatched, func(i, j int) bool {
		return unmatched[i].PlacingTime.Before(unmatched[j].PlacingTime)
	})

	return matched, unmatched
}

func firstWithinTolerance(queue []*domain.RawOrder, qty float64) int {
	for i, c := range queue {
		if QuantitiesMatch(qty, c.Quantity) {
			return i
		}
	}
	return -1
}

// QuantitiesMatch reports whether two quantities are within QuantityTolerance
// of each other, measured relative to the smaller one. The result does not
// depend on argument order.
func QuantitiesMatch(qty, candidate float64) bool {
	smaller := math.Min(qty, candidate)
	if smaller <= 0 {
		return false
	}
	return math.Abs(qty-candidate)/smaller <= QuantityTolerance
}

// BuildTrade turns two opposite legs into a MatchedTrade. The earlier leg is
// the entry regardless of argument order; on equal timestamps a is the entry.
func BuildTrade(a, b *domain.RawOrder) *domain.MatchedTrade {
	entry, exit := a, b
	if b.PlacingTime.Before(a.PlacingTime) {
		entry, exit = b, a
	}

	side := domain.SideLong
	if entry.Side == domain.OrderSideSell {
		side = domain.SideShort
	}

	qty := (entry.Quantity + exit.Quantity) / 2

	var gross float64
	if side == domain.SideLong {
		gross = (exit.FillPrice - entry.FillPrice) * qty
	} else {
		gross = (entry.FillPrice - exit.FillPrice) * qty
	}

	entryComm := entry.CommissionOrZero()
	exitComm := exit.CommissionOrZero()
	totalComm := entryComm + exitComm

	var pct float64
	if notional := entry.FillPrice * qty; notional != 0 {
		pct = gross / notional * 100
	}

	return &domain.MatchedTrade{
		Symbol:          entry.Symbol,
		Side:            side,
		EntryPrice:      entry.FillPrice,
		ExitPrice:       exit.FillPrice,
		Quantity:        qty,
		EntryTime:       entry.PlacingTime,
		ExitTime:        exit.PlacingTime,
		EntryCommission: entryComm,
		ExitCommission:  exitComm,
		TotalCommission: totalComm,
		GrossPnL:        gross,
		NetPnL:          gross - totalComm,
		PnLPercent:      pct,
		EntryOrder:      entry,
		ExitOrder:       exit,
	}
}
