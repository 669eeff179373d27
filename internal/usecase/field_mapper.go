package usecase

import "strings"

// Canonical order fields.
const (
	FieldSymbol      = "symbol"
	FieldSide        = "side"
	FieldQuantity    = "quantity"
	FieldFillPrice   = "fill_price"
	FieldPlacingTime = "placing_time"
	FieldClosingTime = "closing_time"
	FieldCommission  = "commission"
	FieldLeverage    = "leverage"
	FieldMargin      = "margin"
	FieldOrderID     = "order_id"
	FieldOrderType   = "order_type"
)

// CanonicalFields is the resolution order: when a header could match several
// fields, the earlier one wins.
var CanonicalFields = []string{
	FieldSymbol,
	FieldSide,
	FieldQuantity,
	FieldFillPrice,
	FieldPlacingTime,
	FieldClosingTime,
	FieldCommission,
	FieldLeverage,
	FieldMargin,
	FieldOrderID,
	FieldOrderType,
}

// RequiredFields must all resolve for a row to be accepted.
var RequiredFields = []string{FieldSymbol, FieldSide, FieldQuantity, FieldFillPrice, FieldPlacingTime}

// FieldAliases maps each canonical field to normalized header spellings seen
// in broker and exchange exports.
var FieldAliases = map[string][]string{
	FieldSymbol: {
		"symbol", "ticker", "pair", "tradingpair", "instrument", "market",
		"contract", "asset", "coin", "security",
	},
	FieldSide: {
		"side", "direction", "buysell", "action", "tradeside", "orderside",
		"positionside", "bs",
	},
	FieldQuantity: {
		"quantity", "qty", "amount", "size", "volume", "filledqty", "executedqty",
		"filled", "filledquantity", "execqty", "shares", "lots", "units", "contractsize",
	},
	FieldFillPrice: {
		"fillprice", "price", "avgprice", "averageprice", "avgfillprice",
		"executionprice", "execprice", "filledprice", "tradeprice", "dealprice",
		"orderprice",
	},
	FieldPlacingTime: {
		"placingtime", "time", "date", "datetime", "timestamp", "createdat",
		"created", "createtime", "ordertime", "opentime", "tradetime",
		"executiontime", "exectime", "filltime", "placedat", "dateutc", "timeutc",
	},
	FieldClosingTime: {
		"closingtime", "closetime", "closedat", "closeddate", "exittime",
		"updatetime", "updatedat", "finishtime", "completedat",
	},
	FieldCommission: {
		"commission", "fee", "fees", "tradingfee", "comm", "feeamount",
		"execfee", "transactionfee",
	},
	FieldLeverage: {
		"leverage", "lev", "multiplier",
	},
	FieldMargin: {
		"margin", "marginused", "initialmargin",
	},
	FieldOrderID: {
		"orderid", "id", "tradeid", "orderno", "ordernumber", "execid",
		"executionid", "transactionid", "txid", "dealid",
	},
	FieldOrderType: {
		"ordertype", "type", "kind", "exectype",
	},
}

const minSubstringLen = 3

// NormalizeHeader lower-cases s and strips whitespace and the separators - _ . /
func NormalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '\r', '\n', '-', '_', '.', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MapFields resolves CSV headers to canonical field names. It returns
// header -> field for every header that matched. A header maps to at most one
// field and a field is claimed by at most one header. Exact alias matches are
// resolved for every header before any substring matching is attempted.
func MapFields(headers []string) map[string]string {
	mappings := make(map[string]string)
	claimed := make(map[string]bool)

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	// Phase 1: exact
	for i, h := range headers {
		if normalized[i] == "" {
			continue
		}
		if _, ok := mappings[h]; ok {
			continue
		}
		for _, field := range CanonicalFields {
			if claimed[field] {
				continue
			}
			if matchesExact(normalized[i], FieldAliases[field]) {
				mappings[h] = field
				claimed[field] = true
				break
			}
		}
	}

	// Phase 2: substring containment in either direction
	for i, h := range headers {
		if _, ok := mappings[h]; ok {
			continue
		}
		if len(normalized[i]) < minSubstringLen {
			continue
		}
		for _, field := range CanonicalFields {
			if claimed[field] {
				continue
			}
			if matchesSubstring(normalized[i], FieldAliases[field]) {
				mappings[h] = field
				claimed[field] = true
				break
			}
		}
	}

	return mappings
}

func matchesExact(header string, aliases []string) bool {
	for _, a := range aliases {
		if header == NormalizeHeader(a) {
			return true
		}
	}
	return false
}

func matchesSubstring(header string, aliases []string) bool {
	for _, a := range aliases {
		alias := NormalizeHeader(a)
		if len(alias) < minSubstringLen {
			continue
		}
		if strings.Contains(header, alias) || strings.Contains(alias, header) {
			return true
		}
	}
	return false
}

// DetectedFields lists the canonical fields present in mappings, in canonical order.
func DetectedFields(mappings map[string]string) []string {
	present := make(map[string]bool, len(mappings))
	for _, f := range mappings {
		present[f] = true
	}
	var fields []string
	for _, f := range CanonicalFields {
		if present[f] {
			fields = append(fields, f)
		}
	}
	return fields
}
