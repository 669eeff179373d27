package domain

import "time"

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// RawOrder is one validated CSV row.
type RawOrder struct {
	RowNumber   int               `json:"row_number"`
	Symbol      string            `json:"symbol"`
	Side        OrderSide         `json:"side"`
	Quantity    float64           `json:"quantity"`
	FillPrice   float64           `json:"fill_price"`
	PlacingTime time.Time         `json:"placing_time"`
	ClosingTime *time.Time        `json:"closing_time,omitempty"`
	Commission  *float64          `json:"commission,omitempty"`
	Leverage    *float64          `json:"leverage,omitempty"`
	Margin      *float64          `json:"margin,omitempty"`
	OrderID     string            `json:"order_id,omitempty"`
	OrderType   string            `json:"order_type,omitempty"`
	Raw         map[string]string `json:"raw"`
}

// CommissionOrZero returns the order commission, treating a missing value as 0.
func (o *RawOrder) CommissionOrZero() float64 {
	if o.Commission == nil {
		return 0
	}
	return *o.Commission
}

type SkippedRow struct {
	RowNumber int    `json:"row_number"`
	Reason    string `json:"reason"`
}

// ParseResult is the output of the row parser.
type ParseResult struct {
	Orders         []*RawOrder       `json:"orders"`
	SkippedRows    []SkippedRow      `json:"skipped_rows"`
	FieldMappings  map[string]string `json:"field_mappings"` // header -> canonical field
	DetectedFields []string          `json:"detected_fields"`
	DataRows       int               `json:"data_rows"`
}
