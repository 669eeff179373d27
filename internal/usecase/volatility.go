package usecase

import (
	"regexp"
	"strings"

	"github.com/vitos/trade_analyzer/internal/domain"
)

// Default daily volatility by asset class.
const (
	VolMajorCrypto = 0.025
	VolAltCrypto   = 0.04
	VolMemeCrypto  = 0.05
	VolStock       = 0.015
	VolForex       = 0.008
	VolFutures     = 0.02
	VolDefault     = 0.03
)

var quoteSuffixes = []string{"-PERP", "PERP", "-USDT", "/USDT", "USDT", "-USD", "/USD", "USD"}

var forexPairPattern = regexp.MustCompile(`^[A-Z]{6}$`)

type VolatilityTable struct {
	bySymbol map[string]float64
}

// cryptoVolatility is keyed by base asset.
var cryptoVolatility = map[string]float64{
	// majors
	"BTC": 0.02,
	"ETH": 0.025,
	"BNB": 0.03,
	"SOL": 0.03,
	"XRP": 0.03,
	// alts
	"ADA":   VolAltCrypto,
	"AVAX":  VolAltCrypto,
	"DOT":   VolAltCrypto,
	"LINK":  VolAltCrypto,
	"MATIC": VolAltCrypto,
	"LTC":   VolAltCrypto,
	"ATOM":  VolAltCrypto,
	"NEAR":  VolAltCrypto,
	"UNI":   VolAltCrypto,
	"ARB":   VolAltCrypto,
	"OP":    VolAltCrypto,
	"TRX":   VolAltCrypto,
	"TON":   VolAltCrypto,
	// meme / small caps
	"DOGE":  VolMemeCrypto,
	"SHIB":  VolMemeCrypto,
	"PEPE":  VolMemeCrypto,
	"BONK":  VolMemeCrypto,
	"WIF":   VolMemeCrypto,
	"FLOKI": VolMemeCrypto,
}

func DefaultVolatilityTable() *VolatilityTable {
	bySymbol := make(map[string]float64, len(cryptoVolatility))
	for k, v := range cryptoVolatility {
		bySymbol[k] = v
	}
	return &VolatilityTable{bySymbol: bySymbol}
}

// NormalizeSymbol upper-cases the symbol and strips quote/contract suffixes
// such as USDT, -USD, /USD and PERP.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for changed := true; changed; {
		changed = false
		for _, suffix := range quoteSuffixes {
			if len(s) > len(suffix) && strings.HasSuffix(s, suffix) {
				s = strings.TrimSuffix(s, suffix)
				changed = true
				break
			}
		}
	}
	return strings.TrimRight(s, "-/")
}

// Volatility resolves a symbol's daily volatility: known symbol first, then the
// asset class default, then a class inferred from the symbol shape.
func (v *VolatilityTable) Volatility(symbol string, class domain.AssetClass) float64 {
	if vol, ok := v.bySymbol[NormalizeSymbol(symbol)]; ok && class != domain.AssetClassStock && class != domain.AssetClassForex {
		return vol
	}
	if class == "" {
		class = InferAssetClass(symbol)
	}
	switch class {
	case domain.AssetClassCrypto:
		return VolAltCrypto
	case domain.AssetClassStock:
		return VolStock
	case domain.AssetClassForex:
		return VolForex
	case domain.AssetClassFutures:
		return VolFutures
	}
	return VolDefault
}

// InferAssetClass guesses an asset class when none is stored. Known crypto
// bases win over the six-letter forex shape, so BTCUSD stays crypto.
func InferAssetClass(symbol string) domain.AssetClass {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	_, knownCrypto := cryptoVolatility[NormalizeSymbol(s)]
	switch {
	case strings.HasSuffix(s, "USDT"), strings.HasSuffix(s, "PERP"), knownCrypto:
		return domain.AssetClassCrypto
	case forexPairPattern.MatchString(s):
		return domain.AssetClassForex
	}
	return ""
}
