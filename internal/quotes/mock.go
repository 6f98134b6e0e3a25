package quotes

import (
	"context"
	"errors"
	"sync"
)

// ErrUnknownSymbol is returned by the mock for symbols without a canned price.
var ErrUnknownSymbol = errors.New("no quote for symbol")

// Mock serves canned quotes for tests and offline runs.
type Mock struct {
	mu     sync.RWMutex
	prices map[string]float64
	err    error
}

// NewMock returns a mock provider seeded with the given prices.
func NewMock(prices map[string]float64) *Mock {
	cloned := make(map[string]float64, len(prices))
	for k, v := range prices {
		cloned[k] = v
	}
	return &Mock{prices: cloned}
}

// SetPrice updates the canned price for a symbol.
func (m *Mock) SetPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

// Fail makes every subsequent GetQuote return err (nil restores normal
// behavior).
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetQuote returns the canned price for a symbol.
func (m *Mock) GetQuote(_ context.Context, symbol string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return 0, m.err
	}
	price, ok := m.prices[symbol]
	if !ok {
		return 0, ErrUnknownSymbol
	}
	return price, nil
}

var _ Provider = (*Mock)(nil)
