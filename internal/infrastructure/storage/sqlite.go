package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/trade_analyzer/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS positions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			entry_price REAL NOT NULL,
			exit_price REAL NOT NULL DEFAULT 0,
			entry_time DATETIME NOT NULL,
			exit_time DATETIME,
			quantity REAL NOT NULL,
			realized_pnl REAL NOT NULL DEFAULT 0,
			fees REAL NOT NULL DEFAULT 0,
			asset_class TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL DEFAULT '',
			is_open BOOLEAN NOT NULL DEFAULT 0,
			exchange_verified BOOLEAN NOT NULL DEFAULT 0,
			mae REAL,
			mfe REAL,
			r_multiple REAL,
			estimated_risk REAL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_positions_user ON positions(user_id, is_open);`,
		`CREATE TABLE IF NOT EXISTS trading_metrics (
			user_id TEXT PRIMARY KEY,
			total_verified_trades INTEGER NOT NULL DEFAULT 0,
			qualifying_trades INTEGER NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			breakeven INTEGER NOT NULL DEFAULT 0,
			win_rate REAL NOT NULL DEFAULT 0,
			avg_r_multiple REAL NOT NULL DEFAULT 0,
			total_r_multiple REAL NOT NULL DEFAULT 0,
			positive_r_percent REAL NOT NULL DEFAULT 0,
			r_multiple_variance REAL NOT NULL DEFAULT 0,
			accuracy_score REAL,
			is_verified BOOLEAN NOT NULL DEFAULT 0,
			last_sync_at DATETIME,
			api_connection_status TEXT NOT NULL DEFAULT 'none',
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS exchange_connections (
			user_id TEXT NOT NULL,
			exchange TEXT NOT NULL,
			status TEXT NOT NULL,
			last_sync_at DATETIME,
			PRIMARY KEY (user_id, exchange)
		);`,
		`CREATE TABLE IF NOT EXISTS price_cache (
			symbol TEXT NOT NULL,
			from_date TEXT NOT NULL,
			to_date TEXT NOT NULL,
			candles TEXT NOT NULL,
			fetched_at DATETIME NOT NULL,
			PRIMARY KEY (symbol, from_date, to_date)
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

// PositionRepository Implementation

const positionColumns = `id, user_id, symbol, side, entry_price, exit_price, entry_time, exit_time, quantity,
	realized_pnl, fees, asset_class, platform, is_open, exchange_verified, mae, mfe, r_multiple, estimated_risk, created_at`

func (s *SQLiteStore) SavePosition(ctx context.Context, pos *domain.Position) error {
	query := `INSERT INTO positions (` + positionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		pos.ID, pos.UserID, pos.Symbol, string(pos.Side), pos.EntryPrice, pos.ExitPrice,
		pos.EntryTime.UTC(), nullTime(pos.ExitTime), pos.Quantity,
		pos.RealizedPnL, pos.Fees, string(pos.AssetClass), pos.Platform, pos.IsOpen, pos.ExchangeVerified,
		nullFloat(pos.MAE), nullFloat(pos.MFE), nullFloat(pos.RMultiple), nullFloat(pos.EstimatedRisk),
		pos.CreatedAt.UTC())
	return err
}

func (s *SQLiteStore) GetPosition(ctx context.Context, id string) (*domain.Position, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = ?`, id)
	pos, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return pos, err
}

func (s *SQLiteStore) ListPositions(ctx context.Context, userID string) ([]*domain.Position, error) {
	return s.queryPositions(ctx, `SELECT `+positionColumns+` FROM positions WHERE user_id = ? ORDER BY entry_time, id`, userID)
}

func (s *SQLiteStore) ListClosedPositions(ctx context.Context, userID string) ([]*domain.Position, error) {
	return s.queryPositions(ctx, `SELECT `+positionColumns+` FROM positions WHERE user_id = ? AND is_open = 0 ORDER BY entry_time, id`, userID)
}

func (s *SQLiteStore) ListPositionSignatures(ctx context.Context, userID string) (map[domain.PositionSignature]bool, error) {
	positions, err := s.ListPositions(ctx, userID)
	if err != nil {
		return nil, err
	}
	sigs := make(map[domain.PositionSignature]bool, len(positions))
	for _, p := range positions {
		sigs[p.Signature()] = true
	}
	return sigs, nil
}

func (s *SQLiteStore) UpdatePositionRisk(ctx context.Context, u domain.RiskUpdate) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE positions SET mae = ?, mfe = ?, r_multiple = ?, estimated_risk = ? WHERE id = ?`,
		nullFloat(u.MAE), nullFloat(u.MFE), u.RMultiple, u.EstimatedRisk, u.PositionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM positions ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) queryPositions(ctx context.Context, query string, args ...interface{}) ([]*domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row scanner) (*domain.Position, error) {
	var (
		p                 domain.Position
		side, assetClass  string
		exitTime          sql.NullTime
		mae, mfe, r, risk sql.NullFloat64
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Symbol, &side, &p.EntryPrice, &p.ExitPrice, &p.EntryTime, &exitTime,
		&p.Quantity, &p.RealizedPnL, &p.Fees, &assetClass, &p.Platform, &p.IsOpen, &p.ExchangeVerified,
		&mae, &mfe, &r, &risk, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Side = domain.Side(side)
	p.AssetClass = domain.AssetClass(assetClass)
	p.EntryTime = p.EntryTime.UTC()
	if exitTime.Valid {
		t := exitTime.Time.UTC()
		p.ExitTime = &t
	}
	p.MAE = floatPtr(mae)
	p.MFE = floatPtr(mfe)
	p.RMultiple = floatPtr(r)
	p.EstimatedRisk = floatPtr(risk)
	return &p, nil
}

// MetricsRepository Implementation

func (s *SQLiteStore) UpsertTradingMetrics(ctx context.Context, m *domain.TradingMetrics) error {
	query := `INSERT INTO trading_metrics (user_id, total_verified_trades, qualifying_trades, wins, losses, breakeven,
				win_rate, avg_r_multiple, total_r_multiple, positive_r_percent, r_multiple_variance, accuracy_score,
				is_verified, last_sync_at, api_connection_status, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(user_id) DO UPDATE SET
			  total_verified_trades=excluded.total_verified_trades,
			  qualifying_trades=excluded.qualifying_trades,
			  wins=excluded.wins,
			  losses=excluded.losses,
			  breakeven=excluded.breakeven,
			  win_rate=excluded.win_rate,
			  avg_r_multiple=excluded.avg_r_multiple,
			  total_r_multiple=excluded.total_r_multiple,
			  positive_r_percent=excluded.positive_r_percent,
			  r_multiple_variance=excluded.r_multiple_variance,
			  accuracy_score=excluded.accuracy_score,
			  is_verified=excluded.is_verified,
			  last_sync_at=excluded.last_sync_at,
			  api_connection_status=excluded.api_connection_status,
			  updated_at=excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		m.UserID, m.TotalVerifiedTrades, m.QualifyingTrades, m.Wins, m.Losses, m.Breakeven,
		m.WinRate, m.AvgRMultiple, m.TotalRMultiple, m.PositiveRPercent, m.RMultipleVariance, nullFloat(m.AccuracyScore),
		m.IsVerified, nullTime(m.LastSyncAt), m.APIConnectionStatus, m.UpdatedAt.UTC())
	return err
}

func (s *SQLiteStore) GetTradingMetrics(ctx context.Context, userID string) (*domain.TradingMetrics, error) {
	query := `SELECT user_id, total_verified_trades, qualifying_trades, wins, losses, breakeven, win_rate,
				avg_r_multiple, total_r_multiple, positive_r_percent, r_multiple_variance, accuracy_score,
				is_verified, last_sync_at, api_connection_status, updated_at
			  FROM trading_metrics WHERE user_id = ?`
	row := s.db.QueryRowContext(ctx, query, userID)

	var (
		m        domain.TradingMetrics
		score    sql.NullFloat64
		lastSync sql.NullTime
	)
	err := row.Scan(&m.UserID, &m.TotalVerifiedTrades, &m.QualifyingTrades, &m.Wins, &m.Losses, &m.Breakeven,
		&m.WinRate, &m.AvgRMultiple, &m.TotalRMultiple, &m.PositiveRPercent, &m.RMultipleVariance, &score,
		&m.IsVerified, &lastSync, &m.APIConnectionStatus, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.AccuracyScore = floatPtr(score)
	if lastSync.Valid {
		t := lastSync.Time.UTC()
		m.LastSyncAt = &t
	}
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}

// ConnectionRepository Implementation

func (s *SQLiteStore) SaveConnection(ctx context.Context, c *domain.ExchangeConnection) error {
	query := `INSERT INTO exchange_connections (user_id, exchange, status, last_sync_at)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT(user_id, exchange) DO UPDATE SET
			  status=excluded.status,
			  last_sync_at=excluded.last_sync_at`
	_, err := s.db.ExecContext(ctx, query, c.UserID, c.Exchange, c.Status, nullTime(c.LastSyncAt))
	return err
}

func (s *SQLiteStore) ListConnections(ctx context.Context, userID string) ([]*domain.ExchangeConnection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, exchange, status, last_sync_at FROM exchange_connections WHERE user_id = ? ORDER BY exchange`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []*domain.ExchangeConnection
	for rows.Next() {
		var (
			c        domain.ExchangeConnection
			lastSync sql.NullTime
		)
		if err := rows.Scan(&c.UserID, &c.Exchange, &c.Status, &lastSync); err != nil {
			return nil, err
		}
		if lastSync.Valid {
			t := lastSync.Time.UTC()
			c.LastSyncAt = &t
		}
		conns = append(conns, &c)
	}
	return conns, rows.Err()
}

// CandleCache Implementation

func (s *SQLiteStore) GetCachedCandles(ctx context.Context, symbol, from, to string) ([]domain.Candle, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT candles FROM price_cache WHERE symbol = ? AND from_date = ? AND to_date = ?`,
		symbol, from, to).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var candles []domain.Candle
	if err := json.Unmarshal([]byte(raw), &candles); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached candles: %w", err)
	}
	return candles, true, nil
}

func (s *SQLiteStore) SaveCachedCandles(ctx context.Context, symbol, from, to string, candles []domain.Candle) error {
	raw, err := json.Marshal(candles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO price_cache (symbol, from_date, to_date, candles, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(symbol, from_date, to_date) DO UPDATE SET
		 candles=excluded.candles,
		 fetched_at=excluded.fetched_at`,
		symbol, from, to, string(raw), time.Now().UTC())
	return err
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
