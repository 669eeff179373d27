package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vitos/trade_analyzer/internal/domain"
)

const (
	BybitBaseURL = "https://api.bybit.com"

	// Bybit returns at most 1000 klines per request.
	bybitMaxKlines = 1000
)

type BybitAdapter struct {
	apiKey    string
	apiSecret string
	baseURL   string
	category  string
	pageSize  int
	client    *http.Client
}

func NewBybitAdapter(apiKey, apiSecret, baseURL, category string) *BybitAdapter {
	if baseURL == "" {
		baseURL = BybitBaseURL
	}
	if category == "" {
		category = "linear"
	}
	return &BybitAdapter{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		category:  category,
		pageSize:  bybitMaxKlines,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// --- REST API ---

func (b *BybitAdapter) sign(params string, timestamp int64, recvWindow int) string {
	// timestamp + apiKey + recvWindow + params
	toSign := fmt.Sprintf("%d%s%d%s", timestamp, b.apiKey, recvWindow, params)
	h := hmac.New(sha256.New, []byte(b.apiSecret))
	h.Write([]byte(toSign))
	return hex.EncodeToString(h.Sum(nil))
}

func (b *BybitAdapter) sendRequest(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bytes.NewBuffer(nil))
	if err != nil {
		return nil, err
	}

	// Market data is public; sign only when credentials are configured.
	if b.apiKey != "" {
		timestamp := time.Now().UnixMilli()
		recvWindow := 5000
		var paramsStr string
		if idx := strings.Index(path, "?"); idx != -1 {
			paramsStr = path[idx+1:]
		}
		req.Header.Set("X-BAPI-API-KEY", b.apiKey)
		req.Header.Set("X-BAPI-TIMESTAMP", strconv.FormatInt(timestamp, 10))
		req.Header.Set("X-BAPI-SIGN", b.sign(paramsStr, timestamp, recvWindow))
		req.Header.Set("X-BAPI-RECV-WINDOW", strconv.Itoa(recvWindow))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", string(respBody))
	}

	return respBody, nil
}

// GetDailyCandles returns daily klines whose start falls within the UTC days
// [from, to], oldest first. Bybit pages newest first, so windows longer than
// one page are walked backward by moving end below the oldest kline seen.
func (b *BybitAdapter) GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.Candle, error) {
	start := from.UTC().UnixMilli()
	end := to.UTC().Add(24*time.Hour - time.Millisecond).UnixMilli()

	byTime := make(map[int64]domain.Candle)
	for pageEnd := end; pageEnd >= start; {
		path := fmt.Sprintf("/v5/market/kline?category=%s&symbol=%s&interval=D&start=%d&end=%d&limit=%d",
			b.category, BybitSymbol(symbol), start, pageEnd, b.pageSize)
		resp, err := b.sendRequest(ctx, http.MethodGet, path)
		if err != nil {
			return nil, err
		}

		page, rows, err := decodeKlines(resp)
		if err != nil {
			return nil, err
		}

		oldest := pageEnd + 1
		for _, c := range page {
			byTime[c.Time] = c
			if ms := c.Time * 1000; ms < oldest {
				oldest = ms
			}
		}

		if rows < b.pageSize || oldest > pageEnd {
			break
		}
		pageEnd = oldest - 1
	}

	return klinesInWindow(byTime, start/1000, end/1000), nil
}

// decodeKlines returns the well-formed klines of one response in response
// order, plus the number of rows Bybit sent.
func decodeKlines(body []byte) ([]domain.Candle, int, error) {
	var result struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List [][]string `json:"list"`
		} `json:"result"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, 0, err
	}

	if result.RetCode != 0 {
		return nil, 0, fmt.Errorf("bybit kline error: %d %s", result.RetCode, result.RetMsg)
	}

	candles := make([]domain.Candle, 0, len(result.Result.List))
	for _, raw := range result.Result.List {
		// Format: [startTime, open, high, low, close, volume, turnover]
		if len(raw) < 6 {
			continue
		}

		ts, _ := strconv.ParseInt(raw[0], 10, 64)
		open, _ := strconv.ParseFloat(raw[1], 64)
		high, _ := strconv.ParseFloat(raw[2], 64)
		low, _ := strconv.ParseFloat(raw[3], 64)
		closePrice, _ := strconv.ParseFloat(raw[4], 64)
		volume, _ := strconv.ParseFloat(raw[5], 64)

		candles = append(candles, domain.Candle{
			Time:   ts / 1000,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return candles, len(result.Result.List), nil
}

func klinesInWindow(byTime map[int64]domain.Candle, startSec, endSec int64) []domain.Candle {
	var candles []domain.Candle
	for sec, c := range byTime {
		if sec < startSec || sec > endSec {
			continue
		}
		candles = append(candles, c)
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })
	return candles
}

// BybitSymbol converts stored symbols such as BTC/USDT, BTC-USD or BTC-PERP to
// Bybit's concatenated USDT form.
func BybitSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.NewReplacer("-", "", "/", "", "_", "").Replace(s)
	s = strings.TrimSuffix(s, "PERP")
	if strings.HasSuffix(s, "USD") {
		s += "T"
	}
	if !strings.HasSuffix(s, "USDT") && !strings.HasSuffix(s, "USDC") {
		s += "USDT"
	}
	return s
}
