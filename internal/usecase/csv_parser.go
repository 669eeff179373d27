package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/trade_analyzer/internal/domain"
)

var sideAliases = map[string]domain.OrderSide{
	"buy":   domain.OrderSideBuy,
	"b":     domain.OrderSideBuy,
	"long":  domain.OrderSideBuy,
	"l":     domain.OrderSideBuy,
	"bid":   domain.OrderSideBuy,
	"sell":  domain.OrderSideSell,
	"s":     domain.OrderSideSell,
	"short": domain.OrderSideSell,
	"sh":    domain.OrderSideSell,
	"ask":   domain.OrderSideSell,
	"close": domain.OrderSideSell,
}

// NormalizeSide maps a raw side value to buy/sell. ok is false for anything else.
func NormalizeSide(raw string) (domain.OrderSide, bool) {
	side, ok := sideAliases[strings.ToLower(strings.TrimSpace(raw))]
	return side, ok
}

var numberNoise = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "", "₿", "", "₹", "",
	",", "", " ", "", "\t", "", "\u00a0", "",
)

// ParseNumber strips currency symbols, thousands separators and whitespace
// and parses the remainder. It returns nil when nothing numeric is left.
func ParseNumber(raw string) *float64 {
	cleaned := numberNoise.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123Z,
	time.RFC1123,
}

var (
	dayFirstPattern  = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{4})(?:[ T,]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
	yearFirstPattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:[ T]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)
)

// ParseTime parses a placing/closing time. Accepted forms, in order: UNIX
// timestamp (seconds up to 1e12, milliseconds above), ISO-8601 layouts,
// DD.MM.YYYY and DD/MM/YYYY, MM/DD/YYYY, YYYY-MM-DD and YYYY/MM/DD, each with an
// optional HH:MM[:SS]. Times without a zone are UTC.
func ParseTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n <= 0 {
			return time.Time{}, false
		}
		if n <= 1e12 {
			sec := int64(n)
			nsec := int64((n - float64(sec)) * 1e9)
			return time.Unix(sec, nsec).UTC(), true
		}
		return time.UnixMilli(int64(n)).UTC(), true
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		// DD.MM / DD/MM first, MM/DD when the day-first reading is not a date.
		if t, ok := buildDate(year, second, first, m[4], m[5], m[6]); ok {
			return t, true
		}
		if !strings.Contains(s, ".") {
			if t, ok := buildDate(year, first, second, m[4], m[5], m[6]); ok {
				return t, true
			}
		}
		return time.Time{}, false
	}

	if m := yearFirstPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return buildDate(year, month, day, m[4], m[5], m[6])
	}

	return time.Time{}, false
}

func buildDate(year, month, day int, hh, mm, ss string) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	hour, minute, sec := 0, 0, 0
	if hh != "" {
		hour, _ = strconv.Atoi(hh)
		minute, _ = strconv.Atoi(mm)
	}
	if ss != "" {
		sec, _ = strconv.Atoi(ss)
	}
	if hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	// time.Date normalizes 31.02 into March; reject that.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// ParseOrders turns CSV text into validated orders. Structural problems (no
// data rows, malformed CSV) fail the whole call; everything else, including a
// header with no recognizable columns, becomes an itemized skip.
func ParseOrders(text string) (*domain.ParseResult, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrNotEnoughLines
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	type dataRow struct {
		line   int
		record []string
	}
	var rows []dataRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, dataRow{line: line, record: record})
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotEnoughLines
	}

	mappings := MapFields(header)
	detected := DetectedFields(mappings)

	fieldIndex := make(map[string]int, len(mappings))
	for i, h := range header {
		if f, ok := mappings[h]; ok {
			if _, dup := fieldIndex[f]; !dup {
				fieldIndex[f] = i
			}
		}
	}

	result := &domain.ParseResult{
		Orders:         []*domain.RawOrder{},
		SkippedRows:    []domain.SkippedRow{},
		FieldMappings:  mappings,
		DetectedFields: detected,
		DataRows:       len(rows),
	}

	for _, row := range rows {
		order, reason := parseRow(row.line, header, row.record, fieldIndex)
		if reason != "" {
			result.SkippedRows = append(result.SkippedRows, domain.SkippedRow{RowNumber: row.line, Reason: reason})
			continue
		}
		result.Orders = append(result.Orders, order)
	}

	return result, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(line int, header, record []string, fieldIndex map[string]int) (*domain.RawOrder, string) {
	value := func(field string) string {
		i, ok := fieldIndex[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	symbol := strings.ToUpper(value(FieldSymbol))
	if symbol == "" {
		return nil, "missing symbol"
	}

	rawSide := value(FieldSide)
	side, ok := NormalizeSide(rawSide)
	if !ok {
		if rawSide == "" {
			return nil, "missing side"
		}
		return nil, fmt.Sprintf("invalid side %q", rawSide)
	}

	qty := ParseNumber(value(FieldQuantity))
	if qty == nil || *qty <= 0 {
		return nil, fmt.Sprintf("invalid quantity %q", value(FieldQuantity))
	}

	price := ParseNumber(value(FieldFillPrice))
	if price == nil || *price <= 0 {
		return nil, fmt.Sprintf("invalid fill price %q", value(FieldFillPrice))
	}

	placed, ok := ParseTime(value(FieldPlacingTime))
	if !ok {
		return nil, fmt.Sprintf("invalid placing time %q", value(FieldPlacingTime))
	}

	order := &domain.RawOrder{
		RowNumber:   line,
		Symbol:      symbol,
		Side:        side,
		Quantity:    *qty,
		FillPrice:   *price,
		PlacingTime: placed,
		Commission:  ParseNumber(value(FieldCommission)),
		Leverage:    ParseNumber(value(FieldLeverage)),
		Margin:      ParseNumber(value(FieldMargin)),
		OrderID:     value(FieldOrderID),
		OrderType:   value(FieldOrderType),
		Raw:         make(map[string]string, len(header)),
	}
	if closed, ok := ParseTime(value(FieldClosingTime)); ok {
		order.ClosingTime = &closed
	}
	for i, h := range header {
		if i < len(record) {
			order.Raw[h] = record[i]
		}
	}

	return order, ""
}
