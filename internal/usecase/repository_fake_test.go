package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/vitos/trade_analyzer/internal/domain"
)

// memoryStore is an in-memory repository for service tests.
type memoryStore struct {
	mu          sync.Mutex
	positions   map[string]*domain.Position
	metrics     map[string]*domain.TradingMetrics
	connections map[string][]*domain.ExchangeConnection
	failUpdate  map[string]bool
	saveErr     error
	upserts     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		positions:   make(map[string]*domain.Position),
		metrics:     make(map[string]*domain.TradingMetrics),
		connections: make(map[string][]*domain.ExchangeConnection),
		failUpdate:  make(map[string]bool),
	}
}

func (m *memoryStore) SavePosition(ctx context.Context, pos *domain.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *pos
	m.positions[pos.ID] = &cp
	return nil
}

func (m *memoryStore) GetPosition(ctx context.Context, id string) (*domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryStore) list(userID string, closedOnly bool) []*domain.Position {
	var out []*domain.Position
	for _, p := range m.positions {
		if p.UserID != userID || (closedOnly && p.IsOpen) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryStore) ListPositions(ctx context.Context, userID string) ([]*domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(userID, false), nil
}

func (m *memoryStore) ListClosedPositions(ctx context.Context, userID string) ([]*domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(userID, true), nil
}

func (m *memoryStore) ListPositionSignatures(ctx context.Context, userID string) (map[domain.PositionSignature]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sigs := make(map[domain.PositionSignature]bool)
	for _, p := range m.list(userID, false) {
		sigs[p.Signature()] = true
	}
	return sigs, nil
}

func (m *memoryStore) UpdatePositionRisk(ctx context.Context, u domain.RiskUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate[u.PositionID] {
		return errors.New("disk full")
	}
	p, ok := m.positions[u.PositionID]
	if !ok {
		return domain.ErrNotFound
	}
	r, risk := u.RMultiple, u.EstimatedRisk
	p.MAE, p.MFE = u.MAE, u.MFE
	p.RMultiple, p.EstimatedRisk = &r, &risk
	return nil
}

func (m *memoryStore) ListUserIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for _, p := range m.positions {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryStore) UpsertTradingMetrics(ctx context.Context, tm *domain.TradingMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tm
	m.metrics[tm.UserID] = &cp
	m.upserts++
	return nil
}

func (m *memoryStore) GetTradingMetrics(ctx context.Context, userID string) (*domain.TradingMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tm, ok := m.metrics[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *tm
	return &cp, nil
}

func (m *memoryStore) SaveConnection(ctx context.Context, c *domain.ExchangeConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[c.UserID] = append(m.connections[c.UserID], c)
	return nil
}

func (m *memoryStore) ListConnections(ctx context.Context, userID string) ([]*domain.ExchangeConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connections[userID], nil
}
